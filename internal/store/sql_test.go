package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSQLStoreGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewSQLStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT pref_value
		FROM preferences
		WHERE pref_key = $1
	`)).
		WithArgs("ratings").
		WillReturnRows(sqlmock.NewRows([]string{"pref_value"}).AddRow(`{"42":3.5}`))

	got, err := s.Get(context.Background(), "ratings")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != `{"42":3.5}` {
		t.Fatalf("unexpected value %q", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStoreGetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewSQLStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT pref_value`)).
		WithArgs("favorites").
		WillReturnError(sql.ErrNoRows)

	if _, err := s.Get(context.Background(), "favorites"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStoreSetUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewSQLStore(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO preferences (pref_key, pref_value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (pref_key)
		DO UPDATE SET pref_value = excluded.pref_value, updated_at = excluded.updated_at
	`)).
		WithArgs("favorites", `[]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Set(context.Background(), "favorites", []byte(`[]`)); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStoreSetPropagatesErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewSQLStore(db)
	boom := errors.New("disk full")

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO preferences`)).
		WillReturnError(boom)

	if err := s.Set(context.Background(), "ratings", []byte(`{}`)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestSQLStoreDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewSQLStore(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM preferences`)).
		WithArgs("ratings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Delete(context.Background(), "ratings"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStoreRejectsInvalidKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	if _, err := NewSQLStore(db).Get(context.Background(), "bad key"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query should be issued: %v", err)
	}
}
