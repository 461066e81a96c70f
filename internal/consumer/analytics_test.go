package consumer_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/internal/consumer"
	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/pkg/cache"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

func newRedisCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(cache.NewRedisStore(client), cache.WithLogger(logger.Discard())), mr
}

func TestAnalytics_Counters(t *testing.T) {
	t.Parallel()

	c, mr := newRedisCache(t)
	a := consumer.NewAnalytics(c,
		consumer.WithLogger(logger.Discard()),
		consumer.WithCounterTTL(30*24*time.Hour, 8*24*time.Hour))
	ctx := context.Background()

	eng := func(target, id string) event.Engagement {
		return event.Engagement{UserID: "carol", TargetType: target, TargetID: id, OwnerID: "alice"}
	}
	payloads := []event.Payload{
		event.PostLiked{Engagement: eng("post", "p1")},
		event.PostLiked{Engagement: eng("post", "p1")},
		event.ReelLiked{Engagement: eng("REEL", "r1")},
		event.CommentCreated{Engagement: eng("post", "p1"), CommentID: "c1"},
		event.PostViewed{Engagement: eng("post", "p1")},
		event.ReelViewed{Engagement: eng("", "r1")},
		event.UserFollowed{FollowerID: "carol", FollowingID: "alice"},
	}
	var day time.Time
	for _, p := range payloads {
		msg, env := message(t, p)
		day = env.Time()
		require.NoError(t, a.Handle(ctx, msg))
	}

	counters := map[string]string{
		"analytics:likes:post:p1":    "2",
		"analytics:likes:reel:r1":    "1",
		"analytics:comments:post:p1": "1",
		"analytics:views:post:p1":    "1",
		"analytics:views:reel:r1":    "1",
	}
	for key, want := range counters {
		got, err := mr.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
		assert.Equal(t, 30*24*time.Hour, mr.TTL(key), key)
	}

	daily := cache.DailyKey(cache.MetricLikes, day)
	assert.Equal(t, "analytics:likes:daily:2026-05-04", daily)
	got, err := mr.Get(daily)
	require.NoError(t, err)
	assert.Equal(t, "3", got)
	assert.Equal(t, 8*24*time.Hour, mr.TTL(daily))

	views, err := mr.Get(cache.DailyKey(cache.MetricViews, day))
	require.NoError(t, err)
	assert.Equal(t, "2", views)
}

func TestAnalytics_CacheDownIsHarmless(t *testing.T) {
	t.Parallel()

	c, mr := newRedisCache(t)
	mr.Close()

	a := consumer.NewAnalytics(c, consumer.WithLogger(logger.Discard()))
	msg, _ := message(t, event.PostLiked{Engagement: event.Engagement{UserID: "u", TargetType: "post", TargetID: "p", OwnerID: "o"}})
	assert.NoError(t, a.Handle(context.Background(), msg))
}
