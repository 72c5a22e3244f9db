package main

import (
	"context"
	"flag"
	"os"

	"github.com/Temutjin2k/campus-ride/config"
	"github.com/Temutjin2k/campus-ride/internal/app"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
)

func main() {
	flag.Parse()
	if config.HelpRequested() {
		config.PrintHelp()
		return
	}

	level := os.Getenv("LOG_LEVEL")
	if !logger.ValidateLogLevel(level) {
		level = logger.LevelDebug
	}

	ctx := context.Background()
	log := logger.InitLogger("", level)

	cfg, err := config.NewConfig(config.ConfigPath())
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		os.Exit(1)
	}

	log = logger.InitLogger(string(cfg.Mode), level)
	metrics.SetServiceLabel(string(cfg.Mode))

	// Printing configuration
	config.PrintConfig(ctx, cfg, log)

	// Creating application
	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	// Running the apllication
	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}
