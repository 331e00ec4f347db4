package repository

import (
	"context"
	"time"
)

// CacheRepository is a string key/value store with per-key expiry.
// A ttl of 0 keeps the key until it is deleted.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
