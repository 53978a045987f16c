package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/ridegate/internal/client/cli"
	"github.com/dmitrijs2005/ridegate/internal/client/config"
	"github.com/dmitrijs2005/ridegate/internal/logging"
)

func main() {

	ctx := context.Background()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "client stopped", "error", err)
		os.Exit(1)
	}

}
