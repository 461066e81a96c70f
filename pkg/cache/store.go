package cache

import (
	"context"
	"time"
)

// Store is a key/value backend. Every call is atomic on its own; Incr is the
// only read-modify-write operation.
type Store interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// DelPrefix removes every key starting with prefix and reports how many.
	DelPrefix(ctx context.Context, prefix string) (int, error)
	// Incr adds one to the integer at key. The ttl is applied when the
	// increment creates the key.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
