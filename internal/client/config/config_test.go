package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFlags is a FlagSource backed by a map; present keys count as set.
type fakeFlags map[string]string

func (f fakeFlags) IsSet(name string) bool     { _, ok := f[name]; return ok }
func (f fakeFlags) String(name string) string { return f[name] }

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8000", c.ServerURL)
	assert.Equal(t, "bitacora.db", c.DatabasePath)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, "exports", c.ExportDir)
}

func TestLoadConfig_NoSourcesGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(fakeFlags{})
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"server_url":    "https://bitacora.example",
		"database_path": "/var/lib/bitacora/session.db",
		"log_level":     "warn",
	})

	cfg, err := LoadConfig(fakeFlags{
		FlagConfig:    path,
		FlagLogLevel:  "debug",
		FlagExportDir: "/tmp/out",
	})
	require.NoError(t, err)

	want := &Config{
		ServerURL:    "https://bitacora.example",
		DatabasePath: "/var/lib/bitacora/session.db",
		LogLevel:     "debug",
		LogFormat:    "text",
		ExportDir:    "/tmp/out",
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadConfig_MissingJSONIsAnError(t *testing.T) {
	_, err := LoadConfig(fakeFlags{FlagConfig: "/does/not/exist.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestFlags_DeclareEveryName(t *testing.T) {
	names := map[string]bool{}
	for _, f := range Flags() {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	for _, n := range []string{FlagConfig, "c", FlagServer, "s", FlagDatabase, FlagLogLevel, FlagLogFormat, FlagExportDir} {
		assert.True(t, names[n], "flag %q not declared", n)
	}
}
