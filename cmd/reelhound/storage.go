package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"reelhound/internal/config"
	"reelhound/internal/store"
	"reelhound/internal/store/migrations"
)

// openStorage opens the key-value backend selected by cfg. SQL backends are
// migrated before use.
func openStorage(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (store.KV, error) {
	logger.Info().Str("backend", cfg.Backend).Msg("opening preference storage")

	switch cfg.Backend {
	case config.StorageMemory:
		return store.NewMemoryStore(), nil
	case config.StorageFile:
		return store.NewFileStore(afero.NewOsFs(), filepath.Join(cfg.DataDir, "preferences"))
	case config.StorageSQLite, config.StoragePGX, config.StoragePostgres:
		if cfg.Backend == config.StorageSQLite && cfg.DatabaseURL == "" {
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		db, err := openDatabase(ctx, cfg.Backend, cfg.DSN(), logger)
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(db, cfg.Backend); err != nil {
			_ = db.Close()
			return nil, err
		}
		return store.NewSQLStore(db), nil
	default:
		return store.OpenBadger(filepath.Join(cfg.DataDir, "badger"))
	}
}

// openDatabase establishes a database connection and retries until the
// instance responds. The backend name doubles as the database/sql driver.
func openDatabase(ctx context.Context, driver, dsn string, logger zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == config.StorageSQLite {
		// A single connection serializes writers.
		db.SetMaxOpenConns(1)
	}

	const (
		pingTimeout    = 5 * time.Second
		attempts       = 8
		initialBackoff = 500 * time.Millisecond
		maxBackoff     = 5 * time.Second
	)

	err = retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()
			return db.PingContext(pingCtx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(initialBackoff),
		retry.MaxDelay(maxBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn().Err(err).Uint("attempt", n+1).Msg("database not ready, retrying")
		}),
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
