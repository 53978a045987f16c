// Package config loads runtime configuration for the ridegate client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c/-config or $RIDEGATE_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the REST API
//	-s string   token store path
//	-d string   token store driver: sqlite, badger, memory
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "server_base_url": "http://localhost:8000/api",
//	  "store_driver": "sqlite",
//	  "store_path": "session.db",
//	  "log_level": "info"
//	}
package config
