package main

import (
	"database/sql"
	"errors"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog/log"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"reelhound/internal/config"
	"reelhound/internal/logging"
	"reelhound/internal/store/migrations"
)

func main() {
	if len(os.Args) != 2 || (os.Args[1] != "up" && os.Args[1] != "down") {
		log.Fatal().Msg("Usage: migrate [up|down]")
	}

	cfg, err := config.Parse()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.SetGlobalLogger(logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}))

	dialect := cfg.Storage.Backend
	switch dialect {
	case config.StoragePGX, config.StoragePostgres, config.StorageSQLite:
	default:
		log.Fatal().Str("backend", dialect).Msg("REELHOUND_STORAGE must name a SQL backend: sqlite, pgx or postgres")
	}
	dsn := cfg.Storage.DSN()
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	if dialect == config.StorageSQLite && cfg.Storage.DatabaseURL == "" {
		if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
			log.Fatal().Err(err).Msg("Failed to create data directory")
		}
	}

	db, err := sql.Open(dialect, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	m, err := migrations.New(db, dialect)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrate instance")
	}

	if os.Args[1] == "up" {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Migrations applied successfully")
		return
	}

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Msg("Failed to roll back migrations")
	}
	log.Info().Msg("Migrations rolled back successfully")
}
