package cache

import (
	"log/slog"
	"time"
)

// Option configures a Cache.
type Option func(*Cache)

func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCircuitBreaker sets how many consecutive backend failures open the
// circuit and how long it stays open before a probe is let through.
func WithCircuitBreaker(failures int, recovery time.Duration) Option {
	return func(c *Cache) {
		c.failureThreshold = failures
		c.recovery = recovery
	}
}

// WithOpTimeout bounds every backend call.
func WithOpTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.opTimeout = d
		}
	}
}

// WithAsyncTimeout bounds background writes issued by ReadThrough.
func WithAsyncTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.asyncTimeout = d
		}
	}
}
