package tokenstore

import (
	"context"
	"time"
)

// KV is the external key-value store holding credential records.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods must honor cancellation/deadlines.
// - Errors: a missing key is ("", false, nil) from Get, never an error. A
//   key whose value cannot be read as a string yields ErrMalformedRecord.
// - Atomicity: Delete with several keys removes all of them in one operation.
type KV interface {
	// List returns every key that starts with prefix, in no particular order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Get returns the value stored at key.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put stores value at key. A ttl of zero means no expiry.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes keys and returns how many existed.
	Delete(ctx context.Context, keys ...string) (int, error)
}
