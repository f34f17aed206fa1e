package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/toolgate/observe"
)

// PurgeScope selects which records DeleteAll removes.
type PurgeScope int

const (
	// PurgeAll removes every record in every namespace, whoever it belongs
	// to. This is the documented behavior of the credential purge.
	PurgeAll PurgeScope = iota

	// PurgeUser removes only records whose userId matches. Refresh records
	// are removed only when they are JSON objects naming the same userId.
	PurgeUser
)

// ParsePurgeScope maps "all" and "user" to a scope.
func ParsePurgeScope(s string) (PurgeScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return PurgeAll, nil
	case "user":
		return PurgeUser, nil
	default:
		return PurgeAll, fmt.Errorf("tokenstore: unknown purge scope %q", s)
	}
}

func (s PurgeScope) String() string {
	if s == PurgeUser {
		return "user"
	}
	return "all"
}

// Option configures a Store.
type Option func(*Store)

// WithPurgeScope sets the DeleteAll scope. Defaults to PurgeAll.
func WithPurgeScope(scope PurgeScope) Option {
	return func(s *Store) {
		s.scope = scope
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l observe.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store reads and purges credential records.
type Store struct {
	kv     KV
	scope  PurgeScope
	logger observe.Logger
}

// New creates a Store over kv.
func New(kv KV, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, ErrNilKV
	}
	s := &Store{
		kv:     kv,
		scope:  PurgeAll,
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scope returns the configured purge scope.
func (s *Store) Scope() PurgeScope {
	return s.scope
}

// Find returns the credential record for userID. The preferred namespace
// is consulted before the legacy one. Within a namespace the record keyed
// by the user id is tried first, then every other key is scanned and
// filtered by its userId field.
func (s *Store) Find(ctx context.Context, userID string) (*Record, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	for _, prefix := range lookupOrder {
		rec, err := s.get(ctx, prefix, prefix+userID)
		if err != nil {
			return nil, err
		}
		if rec != nil && rec.UserID == userID && rec.HasToken() {
			return rec, nil
		}

		keys, err := s.kv.List(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: %v", ErrStoreUnavailable, prefix, err)
		}
		slices.Sort(keys)

		for _, key := range keys {
			if key == prefix+userID {
				continue
			}
			rec, err := s.get(ctx, prefix, key)
			if err != nil {
				return nil, err
			}
			if rec == nil || rec.UserID != userID {
				continue
			}
			if !rec.HasToken() {
				s.logger.Debug(ctx, "skipping credential record without token", observe.F("key", key))
				continue
			}
			return rec, nil
		}
	}

	return nil, ErrNotFound
}

// get loads and parses one key. Missing keys and malformed records both
// yield (nil, nil); only store failures are errors.
func (s *Store) get(ctx context.Context, prefix, key string) (*Record, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrMalformedRecord) {
		s.logger.Debug(ctx, "skipping unreadable credential key",
			observe.F("key", key),
			observe.F("error", err),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, key, err)
	}
	if !ok {
		return nil, nil
	}
	rec, err := ParseRecord([]byte(raw))
	if err != nil {
		s.logger.Debug(ctx, "skipping malformed credential record",
			observe.F("key", key),
			observe.F("error", err),
		)
		return nil, nil
	}
	rec.Key = key
	rec.Prefix = prefix
	return rec, nil
}

// DeleteAll removes credential records in every namespace and returns how
// many were deleted. Keys are collected from all namespaces before any
// deletion; if any namespace cannot be listed nothing is removed. An empty
// store yields (0, nil) without issuing a delete.
func (s *Store) DeleteAll(ctx context.Context, userID string) (int, error) {
	if s.scope == PurgeUser && userID == "" {
		return 0, ErrMissingUserID
	}

	perPrefix := make([][]string, len(Prefixes))
	g, gctx := errgroup.WithContext(ctx)
	for i, prefix := range Prefixes {
		g.Go(func() error {
			keys, err := s.kv.List(gctx, prefix)
			if err != nil {
				return fmt.Errorf("%w: list %s: %v", ErrStoreUnavailable, prefix, err)
			}
			if s.scope == PurgeUser {
				keys, err = s.ownedBy(gctx, prefix, keys, userID)
				if err != nil {
					return err
				}
			}
			perPrefix[i] = keys
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var keys []string
	for _, k := range perPrefix {
		keys = append(keys, k...)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	n, err := s.kv.Delete(ctx, keys...)
	if err != nil {
		return 0, fmt.Errorf("%w: delete: %v", ErrStoreUnavailable, err)
	}

	s.logger.Info(ctx, "purged credential records",
		observe.F("user_id", userID),
		observe.F("scope", s.scope.String()),
		observe.F("removed", n),
	)
	return n, nil
}

// ownedBy filters keys down to records belonging to userID. Values that do
// not parse are kept out of the purge.
func (s *Store) ownedBy(ctx context.Context, prefix string, keys []string, userID string) ([]string, error) {
	var owned []string
	for _, key := range keys {
		rec, err := s.get(ctx, prefix, key)
		if err != nil {
			return nil, err
		}
		if rec != nil && rec.UserID == userID {
			owned = append(owned, key)
		}
	}
	return owned, nil
}

// Put writes rec under prefix+rec.UserID. The gate itself never writes;
// this serves the OAuth exchange and seeding.
func (s *Store) Put(ctx context.Context, prefix string, rec Record, ttl time.Duration) error {
	if rec.UserID == "" {
		return ErrMissingUserID
	}
	if !slices.Contains(Prefixes, prefix) {
		return fmt.Errorf("%w: %q", ErrUnknownPrefix, prefix)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, prefix+rec.UserID, string(data), ttl); err != nil {
		return fmt.Errorf("%w: put: %v", ErrStoreUnavailable, err)
	}
	return nil
}
