package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLStore persists values in the preferences table. The statements are
// portable between Postgres and SQLite.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore sets up a SQLStore using the provided database handle. The
// schema is expected to be migrated already.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT pref_value
		FROM preferences
		WHERE pref_key = $1
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select preference %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (pref_key, pref_value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (pref_key)
		DO UPDATE SET pref_value = excluded.pref_value, updated_at = excluded.updated_at
	`, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert preference %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM preferences
		WHERE pref_key = $1
	`, key); err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
