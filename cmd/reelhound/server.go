package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"reelhound/internal/app/catalog"
	"reelhound/internal/app/preferences"
	"reelhound/internal/config"
	"reelhound/internal/http/middleware"
	"reelhound/internal/httpapi"
)

const shutdownTimeout = 30 * time.Second

func runServer(ctx context.Context, cfg *config.Config, catalogSvc catalog.Service, prefs *preferences.Store, logger zerolog.Logger) error {
	handler := middleware.CORS(cfg.CORS.AllowedOrigins)(httpapi.New(catalogSvc, prefs, logger).Routes())

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("storage", cfg.Storage.Backend).
			Msg("API server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("Server exited")
	return nil
}
