package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache shared between gate instances through Redis.
// Keys are stored under an optional namespace.
type RedisCache struct {
	client    redis.UniversalClient
	namespace string
	policy    Policy
}

// NewRedisCache wraps client. namespace is prepended to every key.
func NewRedisCache(client redis.UniversalClient, namespace string, policy Policy) *RedisCache {
	return &RedisCache{client: client, namespace: namespace, policy: policy}
}

// Get returns (nil, false) on a miss or a Redis failure.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, c.namespace+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores value with SET EX.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if c.policy.MaxTTL > 0 && ttl > c.policy.MaxTTL {
		ttl = c.policy.MaxTTL
	}
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.namespace+key, value, ttl).Err()
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.namespace+key).Err()
}

var _ Cache = (*RedisCache)(nil)
