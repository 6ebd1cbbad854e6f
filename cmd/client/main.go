package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/rackaudit/internal/buildinfo"
	"github.com/dmitrijs2005/rackaudit/internal/client/cli"
	"github.com/dmitrijs2005/rackaudit/internal/client/config"
	"github.com/dmitrijs2005/rackaudit/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closeLog := logging.New(cfg.LogLevel, cfg.LogFile)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx, os.Stdin); err != nil {
		logger.Error(ctx, "client stopped", "error", err)
	}
}
