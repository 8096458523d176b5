package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrNotFound signals that no value is stored under the key.
	ErrNotFound = errors.New("key not found")
	// ErrInvalidKey rejects keys outside [A-Za-z0-9_.-].
	ErrInvalidKey = errors.New("invalid key")
)

// KV is the durable key-value storage the preference store writes through.
// Values are opaque byte slices; callers own the encoding.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
