package cache_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/cache"
)

func newRedisStore(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisStore(client), mr
}

func TestRedisStore_GetSet(t *testing.T) {
	t.Parallel()

	s, mr := newRedisStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte(`{"a":1}`), time.Minute))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(time.Minute)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRedisStore_Incr(t *testing.T) {
	t.Parallel()

	s, mr := newRedisStore(t)
	ctx := context.Background()
	key := cache.AnalyticsKey(cache.MetricLikes, "POST", "p1")

	n, err := s.Incr(ctx, key, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 30*24*time.Hour, mr.TTL(key))

	mr.FastForward(time.Hour)
	n, err = s.Incr(ctx, key, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 30*24*time.Hour-time.Hour, mr.TTL(key), "expiry is set on creation only")

	require.NoError(t, mr.Set("word", "abc"))
	_, err = s.Incr(ctx, "word", 0)
	assert.ErrorIs(t, err, cache.ErrNotInteger)
}

func TestRedisStore_DelPrefix(t *testing.T) {
	t.Parallel()

	s, mr := newRedisStore(t)
	ctx := context.Background()

	for i := range 450 {
		require.NoError(t, mr.Set(cache.FollowStatsKey("u"+strconv.Itoa(i)), "x"))
	}
	require.NoError(t, mr.Set("follow:followers:u1", "x"))

	n, err := s.DelPrefix(ctx, "follow:stats:")
	require.NoError(t, err)
	assert.Equal(t, 450, n)
	assert.True(t, mr.Exists("follow:followers:u1"))
}

func TestRedisStore_BackendDown(t *testing.T) {
	t.Parallel()

	s, mr := newRedisStore(t)
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, cache.ErrBackendFailure)
	assert.ErrorIs(t, s.Set(context.Background(), "k", nil, 0), cache.ErrBackendFailure)
}
