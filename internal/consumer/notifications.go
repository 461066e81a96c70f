package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifyhub/internal/delivery"
	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/internal/notification"
	"github.com/dmitrymomot/notifyhub/internal/push"
	"github.com/dmitrymomot/notifyhub/pkg/eventlog"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/retry"
)

// NotificationTopics are the topics the notification group reads.
var NotificationTopics = []string{
	event.TopicUserLifecycle,
	event.TopicNotificationDelivery,
	event.TopicEngagement,
}

// Persister stores notification rows and returns the ones that were new.
type Persister interface {
	Persist(ctx context.Context, rows []notification.Notification) ([]notification.Notification, error)
}

// LiveDeliverer pushes a notification to connected sessions.
type LiveDeliverer interface {
	Deliver(ctx context.Context, n notification.Notification) delivery.Result
}

// PushDeliverer sends a push payload to a recipient's subscriptions.
type PushDeliverer interface {
	Deliver(ctx context.Context, recipientID string, p push.Payload) push.Report
}

// Notifications is the notification consumer group.
type Notifications struct {
	store     Persister
	followers FollowerSource
	live      LiveDeliverer
	push      PushDeliverer
	opts      options

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewNotifications builds the consumer. live and push may be nil, in which
// case that channel is skipped.
func NewNotifications(store Persister, followers FollowerSource, live LiveDeliverer, pusher PushDeliverer, opts ...Option) *Notifications {
	o := defaultOptions(GroupNotifications)
	for _, opt := range opts {
		opt(&o)
	}
	return &Notifications{
		store:     store,
		followers: followers,
		live:      live,
		push:      pusher,
		opts:      o,
		sem:       make(chan struct{}, o.fanoutLimit),
	}
}

func (c *Notifications) Group() string { return c.opts.group }

// Run consumes the notification topics until ctx is done.
func (c *Notifications) Run(ctx context.Context, l *eventlog.Log) error {
	return l.Consume(ctx, l.Subscribe(c.opts.group, NotificationTopics...), c.Handle)
}

// Handle processes one record. It returns an error only when recipients
// could not be resolved or nothing could be stored, so the record is
// delivered again. Events missing the ids a notification needs are logged
// and acknowledged.
func (c *Notifications) Handle(ctx context.Context, msg eventlog.Message) error {
	return dispatch(ctx, c.opts.log, c.opts.group, msg, c)
}

// Wait blocks until every fan-out started so far has finished.
func (c *Notifications) Wait() {
	c.wg.Wait()
}

func (c *Notifications) VisitUserFollowed(ctx context.Context, env event.Envelope, p event.UserFollowed) error {
	if p.FollowerID == "" || p.FollowingID == "" {
		return c.invalid(ctx, env, "followerId and followingId are required")
	}
	if p.FollowerID == p.FollowingID {
		return nil
	}
	return c.persist(ctx, env, []notification.Notification{c.row(env, p.FollowingID, notification.Notification{
		Type:            notification.TypeFollow,
		Message:         followMessage(p.Username),
		RelatedUserID:   p.FollowerID,
		RelatedUsername: p.Username,
	})})
}

func (c *Notifications) VisitUserUnfollowed(context.Context, event.Envelope, event.UserUnfollowed) error {
	return nil
}

func (c *Notifications) VisitPostCreated(ctx context.Context, env event.Envelope, p event.PostCreated) error {
	if p.IsAnonymous {
		return nil
	}
	if p.UserID == "" || p.PostID == "" {
		return c.invalid(ctx, env, "userId and postId are required")
	}
	return c.toFollowers(ctx, env, p.UserID, notification.Notification{
		Type:            notification.TypeNewPost,
		Message:         newPostMessage(p.Username),
		RelatedUserID:   p.UserID,
		RelatedUsername: p.Username,
		RelatedPostID:   p.PostID,
	})
}

func (c *Notifications) VisitReelUploaded(ctx context.Context, env event.Envelope, p event.ReelUploaded) error {
	if p.IsAnonymous {
		return nil
	}
	if p.UserID == "" || p.ReelID == "" {
		return c.invalid(ctx, env, "userId and reelId are required")
	}
	return c.toFollowers(ctx, env, p.UserID, notification.Notification{
		Type:            notification.TypeNewReel,
		Message:         newReelMessage(p.Username),
		RelatedUserID:   p.UserID,
		RelatedUsername: p.Username,
		RelatedReelID:   p.ReelID,
	})
}

func (c *Notifications) VisitPostLiked(ctx context.Context, env event.Envelope, p event.PostLiked) error {
	return c.toOwner(ctx, env, p.Engagement, event.TargetPost, notification.TypeLike, likeMessage(p.Username, event.TargetPost))
}

func (c *Notifications) VisitReelLiked(ctx context.Context, env event.Envelope, p event.ReelLiked) error {
	return c.toOwner(ctx, env, p.Engagement, event.TargetReel, notification.TypeLike, likeMessage(p.Username, event.TargetReel))
}

func (c *Notifications) VisitCommentCreated(ctx context.Context, env event.Envelope, p event.CommentCreated) error {
	target := p.TargetType
	if target == "" {
		target = event.TargetPost
	}
	return c.toOwner(ctx, env, p.Engagement, target, notification.TypeComment, commentMessage(p.Username, target, p.Text))
}

func (c *Notifications) VisitPostViewed(context.Context, event.Envelope, event.PostViewed) error {
	return nil
}

func (c *Notifications) VisitReelViewed(context.Context, event.Envelope, event.ReelViewed) error {
	return nil
}

func (c *Notifications) VisitCacheInvalidate(context.Context, event.Envelope, event.CacheInvalidate) error {
	return nil
}

func (c *Notifications) toOwner(ctx context.Context, env event.Envelope, e event.Engagement, target string, typ notification.Type, msg string) error {
	if e.OwnerID == "" || e.OwnerID == e.UserID {
		return nil
	}
	if e.UserID == "" || e.TargetID == "" {
		return c.invalid(ctx, env, "userId and targetId are required")
	}
	tmpl := notification.Notification{
		Type:            typ,
		Message:         msg,
		RelatedUserID:   e.UserID,
		RelatedUsername: e.Username,
	}
	if targetNoun(target) == "reel" {
		tmpl.RelatedReelID = e.TargetID
	} else {
		tmpl.RelatedPostID = e.TargetID
	}
	return c.persist(ctx, env, []notification.Notification{c.row(env, e.OwnerID, tmpl)})
}

// toFollowers addresses tmpl to the followers of actorID as they are now.
func (c *Notifications) toFollowers(ctx context.Context, env event.Envelope, actorID string, tmpl notification.Notification) error {
	followers, err := c.followers.Followers(ctx, actorID)
	if err != nil {
		return fmt.Errorf("resolve followers of %s: %w", actorID, err)
	}

	seen := make(map[string]struct{}, len(followers))
	rows := make([]notification.Notification, 0, len(followers))
	for _, id := range followers {
		if id == "" || id == actorID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, c.row(env, id, tmpl))
	}
	return c.persist(ctx, env, rows)
}

func (c *Notifications) row(env event.Envelope, recipient string, tmpl notification.Notification) notification.Notification {
	n := tmpl
	n.ID = uuid.NewString()
	n.RecipientID = recipient
	n.EventID = env.ID
	n.CreatedAt = c.opts.now().UTC()
	return n
}

func (c *Notifications) persist(ctx context.Context, env event.Envelope, rows []notification.Notification) error {
	if len(rows) == 0 {
		return nil
	}

	created, err := c.store.Persist(ctx, rows)
	if errors.Is(err, notification.ErrInvalidRows) {
		return retry.Permanent(err)
	}
	if err != nil {
		return err
	}

	c.opts.log.DebugContext(ctx, "notifications stored",
		logger.EventID(env.ID),
		logger.EventType(env.Type.String()),
		slog.Int("rows", len(rows)),
		slog.Int("new", len(created)),
	)
	c.fanOut(ctx, created)
	return nil
}

// invalid logs an event that can never produce a notification and lets it
// be acknowledged.
func (c *Notifications) invalid(ctx context.Context, env event.Envelope, reason string) error {
	c.opts.log.WarnContext(ctx, "skipping invalid event",
		logger.ConsumerGroup(c.opts.group),
		logger.EventID(env.ID),
		logger.EventType(env.Type.String()),
		slog.String("reason", reason),
	)
	return nil
}

// fanOut starts delivery of every row without waiting for it. The number of
// deliveries in flight is bounded; when the bound is reached the consumer
// waits for a slot.
func (c *Notifications) fanOut(ctx context.Context, rows []notification.Notification) {
	if c.live == nil && c.push == nil {
		return
	}
	detached := context.WithoutCancel(ctx)

	for _, n := range rows {
		select {
		case c.sem <- struct{}{}:
		case <-ctx.Done():
			c.opts.log.WarnContext(detached, "fan-out skipped on shutdown",
				logger.NotificationID(n.ID), logger.RecipientID(n.RecipientID))
			continue
		}

		c.wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					c.opts.log.ErrorContext(detached, "fan-out panicked",
						logger.NotificationID(n.ID), slog.Any("panic", r))
				}
				<-c.sem
				c.wg.Done()
			}()

			dctx, cancel := context.WithTimeout(detached, c.opts.fanoutTimeout)
			defer cancel()
			c.deliver(dctx, n)
		}()
	}
}

// deliver runs both channels concurrently; neither waits on the other's outcome.
func (c *Notifications) deliver(ctx context.Context, n notification.Notification) {
	var (
		wg      sync.WaitGroup
		results [2]delivery.Result
	)
	if c.live != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[0] = c.live.Deliver(ctx, n)
		}()
	}
	if c.push != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := RenderPush(n)
			p.Icon, p.Badge = c.opts.icon, c.opts.badge
			rep := c.push.Deliver(ctx, n.RecipientID, p)
			results[1] = rep.Result()
			if rep.Total() > 0 {
				c.opts.log.DebugContext(ctx, "push report",
					logger.NotificationID(n.ID),
					slog.Int("sent", rep.Sent),
					slog.Int("dead", rep.Dead),
					slog.Int("failed", rep.Failed))
			}
		}()
	}
	wg.Wait()

	for _, r := range results {
		if r.Status == 0 {
			continue
		}
		attrs := []any{
			logger.NotificationID(n.ID),
			logger.RecipientID(n.RecipientID),
			logger.Channel(r.Channel),
			slog.String("status", r.Status.String()),
		}
		if r.Status == delivery.StatusFailed {
			c.opts.log.WarnContext(ctx, "notification delivery failed", append(attrs, slog.String("reason", r.Reason))...)
			continue
		}
		c.opts.log.DebugContext(ctx, "notification delivery", attrs...)
	}
}
