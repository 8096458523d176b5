package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("REELHOUND_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{
		"REELHOUND_TMDB_API_KEY", "REELHOUND_TMDB_BASE_URL", "REELHOUND_TMDB_TIMEOUT",
		"REELHOUND_STORAGE", "REELHOUND_DATA_DIR", "DATABASE_URL", "PORT", "HOST",
		"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "REELHOUND_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("REELHOUND_TMDB_API_KEY", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Fatalf("unexpected base url %q", cfg.TMDB.BaseURL)
	}
	if cfg.TMDB.Timeout != 0 {
		t.Fatalf("expected no timeout, got %v", cfg.TMDB.Timeout)
	}
	if cfg.Storage.Backend != StorageBadger || cfg.Storage.DataDir != "data" {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr())
	}
	if len(cfg.CORS.AllowedOrigins) != 3 {
		t.Fatalf("expected default origins, got %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("REELHOUND_TMDB_API_KEY", " key ")
	t.Setenv("REELHOUND_TMDB_BASE_URL", "http://localhost:9999/3/")
	t.Setenv("REELHOUND_TMDB_TIMEOUT", "7s")
	t.Setenv("REELHOUND_STORAGE", "PGX")
	t.Setenv("DATABASE_URL", "postgres://localhost/reelhound")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.TMDB.APIKey != "key" || cfg.TMDB.BaseURL != "http://localhost:9999/3" {
		t.Fatalf("unexpected tmdb config %+v", cfg.TMDB)
	}
	if cfg.TMDB.Timeout != 7*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.TMDB.Timeout)
	}
	if cfg.Storage.Backend != StoragePGX {
		t.Fatalf("unexpected backend %q", cfg.Storage.Backend)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("unexpected port %d", cfg.Server.Port)
	}
	if got := strings.Join(cfg.CORS.AllowedOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Fatalf("unexpected origins %q", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected level %q", cfg.Logging.Level)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{Backend: StoragePostgres},
		Server:  ServerConfig{Port: 0},
		Logging: LoggingConfig{Level: "verbose", Format: "xml"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	for _, want := range []string{
		"REELHOUND_TMDB_API_KEY is required",
		"DATABASE_URL is required for the postgres backend",
		"PORT must be between 1 and 65535",
		"LOG_LEVEL must be one of",
		"LOG_FORMAT must be one of",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := &Config{
		TMDB:    TMDBConfig{APIKey: "k", BaseURL: "http://x"},
		Storage: StorageConfig{Backend: "redis"},
		Server:  ServerConfig{Port: 8080},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "REELHOUND_STORAGE") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestParseReadsEnvFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "local.env")
	if err := os.WriteFile(path, []byte("REELHOUND_TEST_ONLY_UNUSED=1\nREELHOUND_LOG_FILE=/tmp/reelhound.log\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("REELHOUND_ENV_FILE", path)
	t.Cleanup(func() { os.Unsetenv("REELHOUND_TEST_ONLY_UNUSED") })

	// Variables already present in the environment win over the file.
	t.Setenv("REELHOUND_LOG_FILE", "/var/log/reelhound.log")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Logging.File != "/var/log/reelhound.log" {
		t.Fatalf("environment should take precedence, got %q", cfg.Logging.File)
	}
	if os.Getenv("REELHOUND_TEST_ONLY_UNUSED") != "1" {
		t.Fatal("expected env file to be loaded")
	}
}

func TestStorageDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  StorageConfig
		want string
	}{
		{"sqlite default file", StorageConfig{Backend: StorageSQLite, DataDir: "data"}, filepath.Join("data", "reelhound.db")},
		{"sqlite explicit url", StorageConfig{Backend: StorageSQLite, DataDir: "data", DatabaseURL: "file:prefs.db"}, "file:prefs.db"},
		{"postgres url", StorageConfig{Backend: StoragePGX, DatabaseURL: "postgres://db/reelhound"}, "postgres://db/reelhound"},
		{"postgres without url", StorageConfig{Backend: StoragePostgres, DataDir: "data"}, ""},
	}
	for _, tt := range tests {
		if got := tt.cfg.DSN(); got != tt.want {
			t.Fatalf("%s: DSN() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
