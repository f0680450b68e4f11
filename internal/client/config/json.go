package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL    string `json:"server_url"`
	DatabasePath string `json:"database_path"`
	LogLevel     string `json:"log_level"`
	LogFormat    string `json:"log_format"`
	ExportDir    string `json:"export_dir"`
}

// parseJson overlays cfg with the non-empty values found in the JSON file.
func parseJson(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay := func(v string, dst *string) {
		if v != "" {
			*dst = v
		}
	}
	overlay(jc.ServerURL, &cfg.ServerURL)
	overlay(jc.DatabasePath, &cfg.DatabasePath)
	overlay(jc.LogLevel, &cfg.LogLevel)
	overlay(jc.LogFormat, &cfg.LogFormat)
	overlay(jc.ExportDir, &cfg.ExportDir)
	return nil
}
