package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read, when present, before the environment is parsed.
// Variables already set in the environment take precedence.
const DefaultEnvFile = "config/local.env"

// Storage backends accepted by REELHOUND_STORAGE.
const (
	StorageBadger   = "badger"
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePGX      = "pgx"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Upstream catalog API
	TMDB TMDBConfig

	// Preference persistence
	Storage StorageConfig

	// HTTP server
	Server ServerConfig

	// CORS configuration
	CORS CORSConfig

	// Logging configuration
	Logging LoggingConfig
}

// TMDBConfig holds upstream API settings
type TMDBConfig struct {
	APIKey  string        `env:"REELHOUND_TMDB_API_KEY"`
	BaseURL string        `env:"REELHOUND_TMDB_BASE_URL" envDefault:"https://api.themoviedb.org/3"`
	Timeout time.Duration `env:"REELHOUND_TMDB_TIMEOUT" envDefault:"0s"`
}

// StorageConfig selects and locates the preference backend
type StorageConfig struct {
	Backend     string `env:"REELHOUND_STORAGE" envDefault:"badger"`
	DataDir     string `env:"REELHOUND_DATA_DIR" envDefault:"data"`
	DatabaseURL string `env:"DATABASE_URL"`
}

// DSN returns the data source for the SQL backends. SQLite falls back to a
// database file in the data directory.
func (c StorageConfig) DSN() string {
	if c.DatabaseURL != "" || c.Backend != StorageSQLite {
		return c.DatabaseURL
	}
	return filepath.Join(c.DataDir, "reelhound.db")
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int    `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173,http://localhost:8080"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`  // debug, info, warn, error
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json, text
	File   string `env:"REELHOUND_LOG_FILE"`
}

// Load reads the optional env file and the environment, then validates the
// result.
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Parse reads configuration without validating it. Tools that need only a
// subset of the settings use it directly.
func Parse() (*Config, error) {
	if err := godotenv.Load(envFile()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func envFile() string {
	if path := os.Getenv("REELHOUND_ENV_FILE"); path != "" {
		return path
	}
	return DefaultEnvFile
}

func (c *Config) normalize() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)

	origins := c.CORS.AllowedOrigins[:0]
	for _, origin := range c.CORS.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.CORS.AllowedOrigins = origins
}

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	var errs []string

	if c.TMDB.APIKey == "" {
		errs = append(errs, "REELHOUND_TMDB_API_KEY is required")
	}
	if c.TMDB.BaseURL == "" {
		errs = append(errs, "REELHOUND_TMDB_BASE_URL must not be empty")
	}
	if c.TMDB.Timeout < 0 {
		errs = append(errs, "REELHOUND_TMDB_TIMEOUT must not be negative")
	}

	switch c.Storage.Backend {
	case StorageBadger, StorageFile:
		if c.Storage.DataDir == "" {
			errs = append(errs, "REELHOUND_DATA_DIR is required for the "+c.Storage.Backend+" backend")
		}
	case StorageSQLite, StorageMemory:
	case StoragePGX, StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required for the "+c.Storage.Backend+" backend")
		}
	default:
		errs = append(errs, "REELHOUND_STORAGE must be one of: badger, file, sqlite, pgx, postgres, memory")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "PORT must be between 1 and 65535")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errs = append(errs, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errs = append(errs, "LOG_FORMAT must be one of: json, text")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
