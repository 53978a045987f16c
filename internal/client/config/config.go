package config

import (
	"fmt"
	"net/url"
	"os"
)

// Store drivers understood by tokenstore.Open.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverBadger = "badger"
	StoreDriverMemory = "memory"
)

// Config holds runtime settings for the ridegate terminal client.
//
// Fields:
//   - ServerBaseURL: base URL every REST path is resolved against.
//   - StoreDriver: token store backend (sqlite, badger or memory).
//   - StorePath: file (sqlite) or directory (badger) holding the credential.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerBaseURL string
	StoreDriver   string
	StorePath     string
	LogLevel      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8000/api"
	c.StoreDriver = StoreDriverSQLite
	c.StorePath = "session.db"
	c.LogLevel = "info"
}

// Validate reports settings the client cannot start with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server base url %q", c.ServerBaseURL)
	}

	switch c.StoreDriver {
	case StoreDriverSQLite, StoreDriverBadger:
		if c.StorePath == "" {
			return fmt.Errorf("store path is required for driver %q", c.StoreDriver)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
