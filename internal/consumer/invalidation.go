package consumer

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/pkg/cache"
	"github.com/dmitrymomot/notifyhub/pkg/eventlog"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// InvalidationTopics are the topics the invalidation group reads.
var InvalidationTopics = []string{event.TopicCacheInvalidation, event.TopicUserLifecycle}

// Invalidation drops cache entries on behalf of other instances. The write
// path already deletes synchronously; this covers caches it cannot reach.
type Invalidation struct {
	cache *cache.Cache
	opts  options
}

func NewInvalidation(c *cache.Cache, opts ...Option) *Invalidation {
	o := defaultOptions(GroupInvalidation)
	for _, opt := range opts {
		opt(&o)
	}
	return &Invalidation{cache: c, opts: o}
}

func (i *Invalidation) Group() string { return i.opts.group }

func (i *Invalidation) Run(ctx context.Context, l *eventlog.Log) error {
	return l.Consume(ctx, l.Subscribe(i.opts.group, InvalidationTopics...), i.Handle)
}

func (i *Invalidation) Handle(ctx context.Context, msg eventlog.Message) error {
	return dispatch(ctx, i.opts.log, i.opts.group, msg, i)
}

func (i *Invalidation) VisitCacheInvalidate(ctx context.Context, env event.Envelope, p event.CacheInvalidate) error {
	if len(p.Keys) > 0 {
		i.cache.Del(ctx, p.Keys...)
	}
	removed := 0
	for _, prefix := range p.Prefixes {
		if prefix == "" {
			continue
		}
		removed += i.cache.DelPrefix(ctx, prefix)
	}
	i.opts.log.DebugContext(ctx, "cache invalidated",
		logger.EventID(env.ID),
		slog.Int("keys", len(p.Keys)),
		slog.Int("prefix_matches", removed))
	return nil
}

func (i *Invalidation) VisitUserFollowed(ctx context.Context, _ event.Envelope, p event.UserFollowed) error {
	i.dropFollowGraph(ctx, p.FollowerID, p.FollowingID)
	return nil
}

func (i *Invalidation) VisitUserUnfollowed(ctx context.Context, _ event.Envelope, p event.UserUnfollowed) error {
	i.dropFollowGraph(ctx, p.FollowerID, p.FollowingID)
	return nil
}

func (i *Invalidation) dropFollowGraph(ctx context.Context, followerID, followingID string) {
	i.cache.Del(ctx,
		cache.FollowStatsKey(followerID),
		cache.FollowStatsKey(followingID),
		cache.FollowersKey(followingID),
	)
}

func (i *Invalidation) VisitPostCreated(context.Context, event.Envelope, event.PostCreated) error {
	return nil
}

func (i *Invalidation) VisitReelUploaded(context.Context, event.Envelope, event.ReelUploaded) error {
	return nil
}

func (i *Invalidation) VisitPostLiked(context.Context, event.Envelope, event.PostLiked) error {
	return nil
}

func (i *Invalidation) VisitReelLiked(context.Context, event.Envelope, event.ReelLiked) error {
	return nil
}

func (i *Invalidation) VisitCommentCreated(context.Context, event.Envelope, event.CommentCreated) error {
	return nil
}

func (i *Invalidation) VisitPostViewed(context.Context, event.Envelope, event.PostViewed) error {
	return nil
}

func (i *Invalidation) VisitReelViewed(context.Context, event.Envelope, event.ReelViewed) error {
	return nil
}
