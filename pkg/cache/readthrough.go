package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// ReadThrough returns the cached T at key or computes it with fetch.
//
// A hit that decodes is returned as is. A miss, an undecodable entry or an
// unavailable backend all fall through to fetch; the fresh value is then
// written back in the background and a failed write never fails the read.
// Errors from fetch are returned unchanged and nothing is cached.
func ReadThrough[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	if raw, ok := c.Get(ctx, key); ok {
		var v T
		err := json.Unmarshal(raw, &v)
		if err == nil {
			return v, nil
		}
		c.log.WarnContext(ctx, "discarding undecodable cache entry",
			logger.CacheKey(key), logger.Error(err))
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		c.log.WarnContext(ctx, "value not cacheable",
			logger.CacheKey(key), logger.Error(err), slog.String("type", fmt.Sprintf("%T", v)))
		return v, nil
	}
	c.setAsync(ctx, key, raw, ttl)

	return v, nil
}

// GetJSON decodes the value at key into T. It reports false on miss, backend
// failure or decode failure.
func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var v T
	raw, ok := c.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false
	}
	return v, true
}

// SetJSON encodes v and stores it synchronously.
func SetJSON[T any](ctx context.Context, c *Cache, key string, v T, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.WarnContext(ctx, "value not cacheable", logger.CacheKey(key), logger.Error(err))
		return
	}
	c.Set(ctx, key, raw, ttl)
}
