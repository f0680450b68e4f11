package config

// Config holds runtime settings for the Bitácora CLI.
//
// Fields:
//   - ServerURL: scheme://host:port of the server; the API lives under /api/.
//   - DatabasePath: sqlite file holding the persisted session.
//   - LogLevel / LogFormat: see logging.New.
//   - ExportDir: where PDF exports and downloaded documents are written.
type Config struct {
	ServerURL    string
	DatabasePath string
	LogLevel     string
	LogFormat    string
	ExportDir    string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.DatabasePath = "bitacora.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.ExportDir = "exports"
}

// LoadConfig builds a Config from defaults, then the JSON file named by the
// config flag (if any), then explicitly set flags and environment variables.
func LoadConfig(src FlagSource) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := src.String(FlagConfig); path != "" {
		if err := parseJson(cfg, path); err != nil {
			return nil, err
		}
	}
	parseFlags(cfg, src)
	return cfg, nil
}
