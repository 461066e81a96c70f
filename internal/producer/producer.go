// Package producer turns domain actions into events on the event log.
//
// Publishing never fails the caller: a broker outage is logged and reported
// as false, and the business write that triggered the event stands.
package producer

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// Publisher appends a record to a topic. *eventlog.Log satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) bool
}

// Producer publishes domain events.
type Producer struct {
	pub Publisher
	log *slog.Logger
	now func() time.Time
}

type Option func(*Producer)

func WithLogger(l *slog.Logger) Option {
	return func(p *Producer) {
		if l != nil {
			p.log = l
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Producer) {
		if now != nil {
			p.now = now
		}
	}
}

func New(pub Publisher, opts ...Option) *Producer {
	p := &Producer{pub: pub, log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishDomainEvent wraps payload in a new envelope and appends it to the
// topic of its type, keyed by the payload's natural owner. It reports whether
// the event was accepted by the log.
func (p *Producer) PublishDomainEvent(ctx context.Context, payload event.Payload) bool {
	env, err := event.New(payload, p.now())
	if err != nil {
		p.log.ErrorContext(ctx, "event not built", logger.Error(err))
		return false
	}

	topic, ok := event.TopicFor(env.Type)
	if !ok {
		p.log.ErrorContext(ctx, "event type has no topic", logger.EventType(env.Type.String()))
		return false
	}

	data, err := env.Marshal()
	if err != nil {
		p.log.ErrorContext(ctx, "event not encodable",
			logger.EventID(env.ID), logger.EventType(env.Type.String()), logger.Error(err))
		return false
	}

	if !p.pub.Publish(ctx, topic, env.PartitionKey, data) {
		p.log.WarnContext(ctx, "domain event dropped",
			logger.EventID(env.ID), logger.EventType(env.Type.String()), logger.Topic(topic))
		return false
	}

	p.log.DebugContext(ctx, "domain event published",
		logger.EventID(env.ID), logger.EventType(env.Type.String()), logger.Topic(topic))
	return true
}

func (p *Producer) UserFollowed(ctx context.Context, followerID, followingID, followerUsername string) bool {
	return p.PublishDomainEvent(ctx, event.UserFollowed{
		FollowerID:  followerID,
		FollowingID: followingID,
		Username:    followerUsername,
	})
}

func (p *Producer) UserUnfollowed(ctx context.Context, followerID, followingID string) bool {
	return p.PublishDomainEvent(ctx, event.UserUnfollowed{FollowerID: followerID, FollowingID: followingID})
}

func (p *Producer) PostCreated(ctx context.Context, userID, postID, username string, anonymous bool) bool {
	return p.PublishDomainEvent(ctx, event.PostCreated{
		UserID:      userID,
		PostID:      postID,
		Username:    username,
		IsAnonymous: anonymous,
	})
}

func (p *Producer) ReelUploaded(ctx context.Context, userID, reelID, username string, anonymous bool) bool {
	return p.PublishDomainEvent(ctx, event.ReelUploaded{
		UserID:      userID,
		ReelID:      reelID,
		Username:    username,
		IsAnonymous: anonymous,
	})
}

// PostLiked publishes a like of postID by userID. ownerID is the post author.
func (p *Producer) PostLiked(ctx context.Context, userID, username, postID, ownerID string) bool {
	return p.PublishDomainEvent(ctx, event.PostLiked{Engagement: engagement(userID, username, event.TargetPost, postID, ownerID)})
}

func (p *Producer) ReelLiked(ctx context.Context, userID, username, reelID, ownerID string) bool {
	return p.PublishDomainEvent(ctx, event.ReelLiked{Engagement: engagement(userID, username, event.TargetReel, reelID, ownerID)})
}

// CommentCreated publishes a comment on a post or reel. targetType is
// event.TargetPost or event.TargetReel.
func (p *Producer) CommentCreated(ctx context.Context, userID, username, targetType, targetID, ownerID, commentID, text string) bool {
	return p.PublishDomainEvent(ctx, event.CommentCreated{
		Engagement: engagement(userID, username, targetType, targetID, ownerID),
		CommentID:  commentID,
		Text:       text,
	})
}

func (p *Producer) PostViewed(ctx context.Context, userID, postID, ownerID string) bool {
	return p.PublishDomainEvent(ctx, event.PostViewed{Engagement: engagement(userID, "", event.TargetPost, postID, ownerID)})
}

func (p *Producer) ReelViewed(ctx context.Context, userID, reelID, ownerID string) bool {
	return p.PublishDomainEvent(ctx, event.ReelViewed{Engagement: engagement(userID, "", event.TargetReel, reelID, ownerID)})
}

// InvalidateCache asks every instance to drop keys and key prefixes.
func (p *Producer) InvalidateCache(ctx context.Context, keys, prefixes []string) bool {
	if len(keys) == 0 && len(prefixes) == 0 {
		return true
	}
	return p.PublishDomainEvent(ctx, event.CacheInvalidate{Keys: keys, Prefixes: prefixes})
}

func engagement(userID, username, targetType, targetID, ownerID string) event.Engagement {
	return event.Engagement{
		UserID:     userID,
		Username:   username,
		TargetType: targetType,
		TargetID:   targetID,
		OwnerID:    ownerID,
	}
}
