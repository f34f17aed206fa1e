package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	// MaxKeyLength bounds a key. Session ids are transport supplied, so
	// the bound is enforced rather than assumed.
	MaxKeyLength = 512

	// SessionKeyPrefix namespaces cached session records.
	SessionKeyPrefix = "session:"
)

var (
	// ErrInvalidKey indicates an empty key or one containing a line break.
	ErrInvalidKey = errors.New("cache: key is invalid")

	// ErrKeyTooLong indicates a key longer than MaxKeyLength.
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Cache holds serialized records for a bounded time.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get never errors; a backend failure is reported as a miss.
type Cache interface {
	// Get retrieves a cached value. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL. TTL<=0 stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a cached value. Idempotent.
	Delete(ctx context.Context, key string) error
}

// SessionKey returns the cache key for a session id.
func SessionKey(sessionID string) string {
	return SessionKeyPrefix + sessionID
}

// ValidateKey reports whether key may be stored. A session key whose id
// part is blank is invalid.
func ValidateKey(key string) error {
	switch {
	case len(key) > MaxKeyLength:
		return ErrKeyTooLong
	case strings.TrimSpace(strings.TrimPrefix(key, SessionKeyPrefix)) == "",
		strings.ContainsAny(key, "\r\n"):
		return ErrInvalidKey
	}
	return nil
}
