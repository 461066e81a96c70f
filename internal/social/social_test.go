package social_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/internal/producer"
	"github.com/dmitrymomot/notifyhub/internal/social"
	"github.com/dmitrymomot/notifyhub/pkg/cache"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

type published struct {
	topic string
	env   event.Envelope
}

type fakeLog struct {
	mu   sync.Mutex
	down bool
	got  []published
}

func (f *fakeLog) Publish(_ context.Context, topic, _ string, payload []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false
	}
	env, err := event.Decode(payload)
	if err != nil {
		return false
	}
	f.got = append(f.got, published{topic: topic, env: env})
	return true
}

func (f *fakeLog) types() []event.Type {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]event.Type, 0, len(f.got))
	for _, p := range f.got {
		out = append(out, p.env.Type)
	}
	return out
}

func newService(t *testing.T) (*social.Service, *fakeLog, *cache.Cache) {
	t.Helper()
	log := &fakeLog{}
	c := cache.New(cache.NewMemoryStore(100), cache.WithLogger(logger.Discard()))
	t.Cleanup(c.Wait)
	svc := social.NewService(social.NewGraph(), c,
		producer.New(log, producer.WithLogger(logger.Discard())),
		social.WithLogger(logger.Discard()),
		social.WithStatsTTL(time.Minute))
	return svc, log, c
}

var (
	alice = social.User{ID: "alice", Username: "alice"}
	bob   = social.User{ID: "bob", Username: "bob"}
)

func TestFollow_InvalidatesSynchronously(t *testing.T) {
	t.Parallel()

	svc, log, c := newService(t)
	ctx := context.Background()

	_, err := svc.FollowStats(ctx, "bob")
	require.NoError(t, err)
	_, err = svc.Followers(ctx, "bob")
	require.NoError(t, err)
	c.Wait()

	require.NoError(t, svc.Follow(ctx, alice, "bob"))

	for _, key := range []string{cache.FollowStatsKey("bob"), cache.FollowStatsKey("alice"), cache.FollowersKey("bob")} {
		_, ok := c.Get(ctx, key)
		assert.False(t, ok, key)
	}

	stats, err := svc.FollowStats(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, social.Stats{Followers: 1}, stats)

	mine, err := svc.FollowStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, social.Stats{Following: 1}, mine)

	followers, err := svc.Followers(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, followers)

	assert.Equal(t, []event.Type{event.TypeUserFollowed}, log.types())
}

func TestCurrentFollowers_BypassesCache(t *testing.T) {
	t.Parallel()

	svc, _, c := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, alice, "bob"))
	c.Set(ctx, cache.FollowersKey("bob"), []byte(`["ghost"]`), time.Minute)

	cached, err := svc.Followers(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, cached)

	current, err := svc.CurrentFollowers(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, current)
}

func TestFollow_Rules(t *testing.T) {
	t.Parallel()

	svc, log, _ := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Follow(ctx, alice, "alice"), social.ErrSelfFollow)
	assert.ErrorIs(t, svc.Follow(ctx, social.User{}, "bob"), social.ErrMissingUser)

	require.NoError(t, svc.Follow(ctx, alice, "bob"))
	require.NoError(t, svc.Follow(ctx, alice, "bob"))
	require.NoError(t, svc.Unfollow(ctx, alice, "bob"))
	require.NoError(t, svc.Unfollow(ctx, alice, "bob"))

	assert.Equal(t, []event.Type{event.TypeUserFollowed, event.TypeUserUnfollowed}, log.types())
}

func TestWritesSurvivePublishFailure(t *testing.T) {
	t.Parallel()

	svc, log, _ := newService(t)
	log.down = true
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, alice, "bob"))
	stats, err := svc.FollowStats(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Followers)

	post, err := svc.CreatePost(ctx, bob, false)
	require.NoError(t, err)
	require.NoError(t, svc.Like(ctx, alice, event.TargetPost, post.ID))
	_, err = svc.Comment(ctx, alice, event.TargetPost, post.ID, "hi")
	require.NoError(t, err)
}

func TestContentEvents(t *testing.T) {
	t.Parallel()

	svc, log, _ := newService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, bob, false)
	require.NoError(t, err)
	reel, err := svc.UploadReel(ctx, bob, true)
	require.NoError(t, err)
	assert.True(t, reel.IsAnonymous)

	require.NoError(t, svc.Like(ctx, alice, "POST", post.ID))
	require.NoError(t, svc.Like(ctx, alice, event.TargetPost, post.ID))
	require.NoError(t, svc.Like(ctx, alice, event.TargetReel, reel.ID))
	cm, err := svc.Comment(ctx, alice, event.TargetReel, reel.ID, "  nice  ")
	require.NoError(t, err)
	assert.Equal(t, "nice", cm.Text)
	require.NoError(t, svc.View(ctx, alice, event.TargetPost, post.ID))
	require.NoError(t, svc.View(ctx, alice, event.TargetReel, reel.ID))

	assert.Equal(t, []event.Type{
		event.TypePostCreated,
		event.TypeReelUploaded,
		event.TypePostLiked,
		event.TypeReelLiked,
		event.TypeCommentCreated,
		event.TypePostViewed,
		event.TypeReelViewed,
	}, log.types())

	log.mu.Lock()
	like := log.got[2]
	log.mu.Unlock()
	assert.Equal(t, event.TopicEngagement, like.topic)
	assert.Equal(t, "bob", like.env.PartitionKey, "keyed by the content owner")
}

func TestContentErrors(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, bob, false)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Like(ctx, alice, "story", post.ID), social.ErrInvalidTarget)
	assert.ErrorIs(t, svc.Like(ctx, alice, event.TargetReel, post.ID), social.ErrContentNotFound)
	assert.ErrorIs(t, svc.Like(ctx, alice, event.TargetPost, "missing"), social.ErrContentNotFound)
	assert.ErrorIs(t, svc.Like(ctx, social.User{}, event.TargetPost, post.ID), social.ErrMissingUser)
	_, err = svc.Comment(ctx, alice, event.TargetPost, post.ID, "   ")
	assert.ErrorIs(t, err, social.ErrEmptyComment)
	_, err = svc.CreatePost(ctx, social.User{}, false)
	assert.ErrorIs(t, err, social.ErrMissingUser)
}
