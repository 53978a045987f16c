package config

import (
	"flag"

	"github.com/dmitrijs2005/ridegate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the REST API
//	-s string   token store path
//	-d string   token store driver (sqlite, badger, memory)
//	-l string   log level
//
// Only these flags are picked out of args (see flagx.FilterArgs), so the
// config flags -c/-config do not disturb parsing.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the REST API")
	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "token store path")
	fs.StringVar(&cfg.StoreDriver, "d", cfg.StoreDriver, "token store driver: sqlite, badger or memory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
