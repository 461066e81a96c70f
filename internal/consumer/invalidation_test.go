package consumer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/internal/consumer"
	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/pkg/cache"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

func TestInvalidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.New(cache.NewMemoryStore(100), cache.WithLogger(logger.Discard()))
	inv := consumer.NewInvalidation(c, consumer.WithLogger(logger.Discard()))

	seed := []string{
		"profile:alice",
		"profile:bob",
		"analytics:likes:post:p1",
		"analytics:likes:post:p2",
		"analytics:views:post:p1",
		cache.FollowStatsKey("alice"),
		cache.FollowStatsKey("bob"),
		cache.FollowersKey("bob"),
	}
	for _, k := range seed {
		c.Set(ctx, k, []byte("1"), time.Minute)
	}
	cached := func(k string) bool {
		_, ok := c.Get(ctx, k)
		return ok
	}

	msg, _ := message(t, event.CacheInvalidate{
		Keys:     []string{"profile:alice"},
		Prefixes: []string{cache.AnalyticsPrefix(cache.MetricLikes), ""},
	})
	require.NoError(t, inv.Handle(ctx, msg))

	assert.False(t, cached("profile:alice"))
	assert.True(t, cached("profile:bob"))
	assert.False(t, cached("analytics:likes:post:p1"))
	assert.False(t, cached("analytics:likes:post:p2"))
	assert.True(t, cached("analytics:views:post:p1"))

	msg, _ = message(t, event.UserFollowed{FollowerID: "alice", FollowingID: "bob", Username: "alice"})
	require.NoError(t, inv.Handle(ctx, msg))

	assert.False(t, cached(cache.FollowStatsKey("alice")))
	assert.False(t, cached(cache.FollowStatsKey("bob")))
	assert.False(t, cached(cache.FollowersKey("bob")))
	assert.True(t, cached("analytics:views:post:p1"))
}
