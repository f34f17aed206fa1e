package registry

import (
	"context"
	"encoding/json"

	"github.com/jonwraymond/toolgate/cache"
	"github.com/jonwraymond/toolgate/observe"
	"github.com/jonwraymond/toolgate/permission"
)

// CachedLookup is a read-through cache in front of Client.Get. Writes made
// through it invalidate the affected entries; writes made elsewhere become
// visible once the entry expires. A zero policy TTL disables caching and
// every call goes to the registry.
type CachedLookup struct {
	client *Client
	cache  cache.Cache
	policy cache.Policy
	logger observe.Logger
}

// NewCachedLookup wraps client. A nil cache disables caching.
func NewCachedLookup(client *Client, c cache.Cache, policy cache.Policy) *CachedLookup {
	return &CachedLookup{
		client: client,
		cache:  c,
		policy: policy,
		logger: client.logger,
	}
}

func (l *CachedLookup) enabled() bool {
	return l.cache != nil && l.policy.ShouldCache()
}

// Get returns the cached record when present, otherwise fetches and caches
// it. Failures are never cached.
func (l *CachedLookup) Get(ctx context.Context, sessionID string) SessionResult {
	if sessionID == "" || !l.enabled() {
		return l.client.Get(ctx, sessionID)
	}

	key := cache.SessionKey(sessionID)
	if data, hit := l.cache.Get(ctx, key); hit {
		var sess Session
		if err := json.Unmarshal(data, &sess); err == nil {
			return SessionResult{Result: ok(), Session: &sess}
		}
		_ = l.cache.Delete(ctx, key)
	}

	res := l.client.Get(ctx, sessionID)
	if res.Success && res.Session != nil {
		l.store(ctx, res.Session)
	}
	return res
}

// Register creates the record and caches it.
func (l *CachedLookup) Register(ctx context.Context, sessionID, userID string, clientInfo map[string]any) SessionResult {
	res := l.client.Register(ctx, sessionID, userID, clientInfo)
	if res.Success && res.Session != nil && l.enabled() {
		l.store(ctx, res.Session)
	}
	return res
}

// Touch only bumps activity and leaves the cached entry in place.
func (l *CachedLookup) Touch(ctx context.Context, sessionID string) Result {
	return l.client.Touch(ctx, sessionID)
}

// SetEnabled updates the record and drops the cached entry.
func (l *CachedLookup) SetEnabled(ctx context.Context, sessionID string, enabled bool) Result {
	res := l.client.SetEnabled(ctx, sessionID, enabled)
	l.invalidate(ctx, sessionID)
	return res
}

// SetPermissions updates the record and drops the cached entry.
func (l *CachedLookup) SetPermissions(ctx context.Context, sessionID string, set *permission.Set) Result {
	res := l.client.SetPermissions(ctx, sessionID, set)
	l.invalidate(ctx, sessionID)
	return res
}

// ListActive always asks the registry.
func (l *CachedLookup) ListActive(ctx context.Context) ListResult {
	return l.client.ListActive(ctx)
}

// RevokeAllForUser revokes and drops the entries of every reported session.
func (l *CachedLookup) RevokeAllForUser(ctx context.Context, userID string) RevokeResult {
	res := l.client.RevokeAllForUser(ctx, userID)
	for _, id := range res.SessionIDs {
		l.invalidate(ctx, id)
	}
	return res
}

func (l *CachedLookup) store(ctx context.Context, sess *Session) {
	data, err := json.Marshal(sess)
	if err != nil {
		return
	}
	if err := l.cache.Set(ctx, cache.SessionKey(sess.SessionID), data, l.policy.EffectiveTTL(0)); err != nil {
		l.logger.Debug(ctx, "session cache write failed",
			observe.F("session_id", sess.SessionID),
			observe.F("error", err),
		)
	}
}

func (l *CachedLookup) invalidate(ctx context.Context, sessionID string) {
	if sessionID == "" || l.cache == nil {
		return
	}
	_ = l.cache.Delete(ctx, cache.SessionKey(sessionID))
}
