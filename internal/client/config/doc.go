// Package config loads runtime configuration for the Bitácora CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c / --config.
//  3. Environment variables and command-line flags, which override earlier values.
//
// Supported flags
//
//	--server, -s     base URL of the Bitácora server   (BITACORA_SERVER)
//	--db             path of the local session database (BITACORA_DB)
//	--log-level      debug | info | warn | error        (BITACORA_LOG_LEVEL)
//	--log-format     text | json                        (BITACORA_LOG_FORMAT)
//	--export-dir     directory for PDF exports/downloads (BITACORA_EXPORT_DIR)
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "database_path": "bitacora.db",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "export_dir": "exports"
//	}
//
// Empty JSON values leave the previous value in place.
package config
