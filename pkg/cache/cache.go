package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/retry"
)

// Cache wraps a Store so that no caller ever sees a backend failure: reads
// degrade to a miss, writes and deletes become no-ops and Incr returns 0.
// After repeated failures the backend is skipped entirely until the circuit
// breaker lets a probe through.
type Cache struct {
	store   Store
	breaker *retry.CircuitBreaker
	log     *slog.Logger

	failureThreshold int
	recovery         time.Duration
	opTimeout        time.Duration
	asyncTimeout     time.Duration

	pending sync.WaitGroup
}

func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:            store,
		log:              slog.Default(),
		failureThreshold: 3,
		recovery:         5 * time.Second,
		opTimeout:        250 * time.Millisecond,
		asyncTimeout:     2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = retry.NewCircuitBreaker(c.failureThreshold, 1, c.recovery)
	return c
}

// Get returns the stored bytes and true on a hit. Misses and backend failures
// both return false.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	var val []byte
	err := c.do(ctx, "get", key, func(ctx context.Context) error {
		var err error
		val, err = c.store.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	_ = c.do(ctx, "set", key, func(ctx context.Context) error {
		return c.store.Set(ctx, key, value, ttl)
	})
}

// Del removes keys. Write paths call it synchronously after their own write succeeds.
func (c *Cache) Del(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	_ = c.do(ctx, "del", keys[0], func(ctx context.Context) error {
		return c.store.Del(ctx, keys...)
	})
}

// DelPrefix removes a key family and returns the number of removed keys.
func (c *Cache) DelPrefix(ctx context.Context, prefix string) int {
	var n int
	_ = c.do(ctx, "del_prefix", prefix, func(ctx context.Context) error {
		var err error
		n, err = c.store.DelPrefix(ctx, prefix)
		return err
	})
	return n
}

// Incr bumps an advisory counter. It returns 0 when the backend is unavailable.
func (c *Cache) Incr(ctx context.Context, key string, ttl time.Duration) int64 {
	var n int64
	err := c.do(ctx, "incr", key, func(ctx context.Context) error {
		var err error
		n, err = c.store.Incr(ctx, key, ttl)
		return err
	})
	if err != nil {
		return 0
	}
	return n
}

// Available reports whether the circuit currently admits backend calls.
func (c *Cache) Available() bool {
	return c.breaker.State() != retry.CircuitOpen
}

// Wait blocks until background writes started by ReadThrough have finished.
func (c *Cache) Wait() {
	c.pending.Wait()
}

// setAsync stores value off the request path. It outlives the caller's
// context but not the async timeout.
func (c *Cache) setAsync(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.asyncTimeout)
		defer cancel()
		c.Set(bg, key, value, ttl)
	}()
}

// do runs op against the backend through the breaker. ErrNotFound is a
// healthy answer and never trips the circuit.
func (c *Cache) do(ctx context.Context, op, key string, fn func(ctx context.Context) error) error {
	if !c.breaker.Allow() {
		return ErrCircuitOpen
	}

	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	err := fn(opCtx)
	switch {
	case err == nil, errors.Is(err, ErrNotFound):
		c.breaker.RecordSuccess()
	case errors.Is(err, ErrNotInteger):
		c.breaker.RecordSuccess()
		c.log.WarnContext(ctx, "cache value is not a counter",
			slog.String("op", op), logger.CacheKey(key))
	default:
		c.breaker.RecordFailure()
		c.log.WarnContext(ctx, "cache backend unavailable, degrading",
			slog.String("op", op),
			logger.CacheKey(key),
			slog.String("circuit", c.breaker.State().String()),
			logger.Error(err),
		)
	}
	return err
}
