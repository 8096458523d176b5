package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"reelhound/internal/app/catalog"
	"reelhound/internal/app/preferences"
	"reelhound/internal/config"
	"reelhound/internal/logging"
	"reelhound/internal/mediaapi"
)

const usage = `Usage: reelhound [serve|browse]

  serve   run the HTTP API (default)
  browse  browse the catalog from the terminal`

func main() {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if command != "serve" && command != "browse" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(command); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(command string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}
	if command == "browse" {
		// Keep the terminal for the browser; logs go to stderr or the log file.
		logCfg.Output = os.Stderr
		if cfg.Logging.Level == "info" {
			logCfg.Level = "warn"
		}
	}
	logger := logging.New(logCfg)
	logging.SetGlobalLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error().Err(err).Msg("close storage")
		}
	}()

	prefs := preferences.New(kv, logger)
	prefs.Load(ctx)

	catalogSvc := newCatalog(cfg, logger)

	switch command {
	case "browse":
		return runBrowse(ctx, os.Stdin, os.Stdout, catalogSvc, prefs, logger)
	default:
		return runServer(ctx, cfg, catalogSvc, prefs, logger)
	}
}

func newCatalog(cfg *config.Config, logger zerolog.Logger) catalog.Service {
	client := mediaapi.NewClient(mediaapi.Config{
		BaseURL: cfg.TMDB.BaseURL,
		APIKey:  cfg.TMDB.APIKey,
		Timeout: cfg.TMDB.Timeout,
	})
	return catalog.New(client, logger)
}
