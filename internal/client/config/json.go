package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/ridegate/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Empty fields
// leave the corresponding Config value untouched.
type JsonConfig struct {
	ServerBaseURL string `json:"server_base_url"`
	StoreDriver   string `json:"store_driver"`
	StorePath     string `json:"store_path"`
	LogLevel      string `json:"log_level"`
}

// parseJson overlays Config with values loaded from the file named by
// -c/-config (or $RIDEGATE_CONFIG). Without a path it does nothing; read or
// unmarshal errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.ServerBaseURL, jc.ServerBaseURL)
	overlay(&cfg.StoreDriver, jc.StoreDriver)
	overlay(&cfg.StorePath, jc.StorePath)
	overlay(&cfg.LogLevel, jc.LogLevel)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
