package cache

import (
	"context"
	"time"
)

// Cache is the contract of the shared cache layer.
// Implementations: Redis (shared across instances) and an in-process LRU.
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found=false on a miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value (JSON encoded) with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes keys matching a glob pattern ("places:*").
	DeletePattern(ctx context.Context, pattern string) error

	Ping(ctx context.Context) error

	// Counter helpers used by the rate limiter.
	Increment(ctx context.Context, key string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}
