package config

import "github.com/urfave/cli/v2"

// Flag names shared by the command line and LoadConfig.
const (
	FlagConfig    = "config"
	FlagServer    = "server"
	FlagDatabase  = "db"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
	FlagExportDir = "export-dir"
)

// FlagSource is the part of *cli.Context that LoadConfig reads.
type FlagSource interface {
	IsSet(name string) bool
	String(name string) string
}

// Flags returns the global flags of the bitacora command. Defaults are left
// empty on purpose: only values the user sets override the JSON file.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagConfig,
			Aliases: []string{"c"},
			Usage:   "path to a JSON config file",
			EnvVars: []string{"BITACORA_CONFIG"},
		},
		&cli.StringFlag{
			Name:    FlagServer,
			Aliases: []string{"s"},
			Usage:   "base URL of the Bitácora server (default http://127.0.0.1:8000)",
			EnvVars: []string{"BITACORA_SERVER"},
		},
		&cli.StringFlag{
			Name:    FlagDatabase,
			Usage:   "local session database (default bitacora.db)",
			EnvVars: []string{"BITACORA_DB"},
		},
		&cli.StringFlag{
			Name:    FlagLogLevel,
			Usage:   "debug, info, warn or error (default info)",
			EnvVars: []string{"BITACORA_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    FlagLogFormat,
			Usage:   "text or json (default text)",
			EnvVars: []string{"BITACORA_LOG_FORMAT"},
		},
		&cli.StringFlag{
			Name:    FlagExportDir,
			Usage:   "directory for PDF exports and downloads (default exports)",
			EnvVars: []string{"BITACORA_EXPORT_DIR"},
		},
	}
}

// parseFlags overlays cfg with every flag the user actually set.
func parseFlags(cfg *Config, src FlagSource) {
	overlay := func(name string, dst *string) {
		if src.IsSet(name) {
			*dst = src.String(name)
		}
	}
	overlay(FlagServer, &cfg.ServerURL)
	overlay(FlagDatabase, &cfg.DatabasePath)
	overlay(FlagLogLevel, &cfg.LogLevel)
	overlay(FlagLogFormat, &cfg.LogFormat)
	overlay(FlagExportDir, &cfg.ExportDir)
}
