package consumer

import (
	"context"

	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/pkg/cache"
	"github.com/dmitrymomot/notifyhub/pkg/eventlog"
)

// AnalyticsTopics are the topics the analytics group reads.
var AnalyticsTopics = []string{event.TopicEngagement, event.TopicAnalytics}

// Analytics keeps per-target and per-day engagement counters in the cache.
// Counters are approximate: a redelivered record is counted twice.
type Analytics struct {
	cache *cache.Cache
	opts  options
}

func NewAnalytics(c *cache.Cache, opts ...Option) *Analytics {
	o := defaultOptions(GroupAnalytics)
	for _, opt := range opts {
		opt(&o)
	}
	return &Analytics{cache: c, opts: o}
}

func (a *Analytics) Group() string { return a.opts.group }

func (a *Analytics) Run(ctx context.Context, l *eventlog.Log) error {
	return l.Consume(ctx, l.Subscribe(a.opts.group, AnalyticsTopics...), a.Handle)
}

// Handle never fails: counters are best effort and the cache degrades on its own.
func (a *Analytics) Handle(ctx context.Context, msg eventlog.Message) error {
	return dispatch(ctx, a.opts.log, a.opts.group, msg, a)
}

func (a *Analytics) count(ctx context.Context, env event.Envelope, metric, fallbackType string, e event.Engagement) error {
	if e.TargetID == "" {
		return nil
	}
	target := e.TargetType
	if target == "" {
		target = fallbackType
	}
	a.cache.Incr(ctx, cache.AnalyticsKey(metric, target, e.TargetID), a.opts.targetTTL)
	a.cache.Incr(ctx, cache.DailyKey(metric, env.Time()), a.opts.dailyTTL)
	return nil
}

func (a *Analytics) VisitPostLiked(ctx context.Context, env event.Envelope, p event.PostLiked) error {
	return a.count(ctx, env, cache.MetricLikes, event.TargetPost, p.Engagement)
}

func (a *Analytics) VisitReelLiked(ctx context.Context, env event.Envelope, p event.ReelLiked) error {
	return a.count(ctx, env, cache.MetricLikes, event.TargetReel, p.Engagement)
}

func (a *Analytics) VisitCommentCreated(ctx context.Context, env event.Envelope, p event.CommentCreated) error {
	return a.count(ctx, env, cache.MetricComments, event.TargetPost, p.Engagement)
}

func (a *Analytics) VisitPostViewed(ctx context.Context, env event.Envelope, p event.PostViewed) error {
	return a.count(ctx, env, cache.MetricViews, event.TargetPost, p.Engagement)
}

func (a *Analytics) VisitReelViewed(ctx context.Context, env event.Envelope, p event.ReelViewed) error {
	return a.count(ctx, env, cache.MetricViews, event.TargetReel, p.Engagement)
}

func (a *Analytics) VisitPostCreated(context.Context, event.Envelope, event.PostCreated) error {
	return nil
}

func (a *Analytics) VisitReelUploaded(context.Context, event.Envelope, event.ReelUploaded) error {
	return nil
}

func (a *Analytics) VisitUserFollowed(context.Context, event.Envelope, event.UserFollowed) error {
	return nil
}

func (a *Analytics) VisitUserUnfollowed(context.Context, event.Envelope, event.UserUnfollowed) error {
	return nil
}

func (a *Analytics) VisitCacheInvalidate(context.Context, event.Envelope, event.CacheInvalidate) error {
	return nil
}
