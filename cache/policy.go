package cache

import "time"

// Policy configures how long session records stay cached.
type Policy struct {
	// DefaultTTL is used when no override is given. Zero disables caching.
	DefaultTTL time.Duration

	// MaxTTL clamps every TTL. Zero means no maximum.
	MaxTTL time.Duration
}

// DefaultPolicy keeps records briefly: a registry change made elsewhere
// becomes visible within DefaultTTL.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 15 * time.Second,
		MaxTTL:     5 * time.Minute,
	}
}

// NoCachePolicy disables caching.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache reports whether the policy caches anything by default.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL applies the default to non-positive overrides and clamps to MaxTTL.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
