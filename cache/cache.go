package cache

import (
	"context"
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 1024

// Sentinel errors for cache operations.
var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
	ErrNilFactory = errors.New("cache: factory is nil")
	ErrClosed     = errors.New("cache: cache is closed")
)

// Closer is implemented by cached values that hold resources which must be
// released when the cache is torn down.
type Closer interface {
	Close(ctx context.Context) error
}

// Factory constructs the value for a key.
//
// The context passed to a Factory is not the caller's context: it carries the
// caller's values but is bounded only by the cache's build timeout and
// lifetime, so one caller giving up never aborts a construction other callers
// are waiting on.
type Factory[V any] func(ctx context.Context) (V, error)

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

func closeValue(ctx context.Context, v any) error {
	if c, ok := v.(Closer); ok {
		return c.Close(ctx)
	}
	return nil
}
