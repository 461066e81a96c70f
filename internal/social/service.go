package social

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/internal/producer"
	"github.com/dmitrymomot/notifyhub/pkg/cache"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// User is the acting user of a request.
type User struct {
	ID       string
	Username string
}

// Content is a post or reel.
type Content struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	AuthorID    string    `json:"authorId"`
	IsAnonymous bool      `json:"isAnonymous"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Comment is a comment on a post or reel.
type Comment struct {
	ID         string    `json:"id"`
	TargetType string    `json:"targetType"`
	TargetID   string    `json:"targetId"`
	AuthorID   string    `json:"authorId"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Service performs social writes and publishes their events.
type Service struct {
	graph    *Graph
	cache    *cache.Cache
	events   *producer.Producer
	log      *slog.Logger
	statsTTL time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	content map[string]Content             // id -> content
	likes   map[string]map[string]struct{} // content id -> user ids
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStatsTTL sets how long follow stats and follower lists stay cached.
func WithStatsTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.statsTTL = d
		}
	}
}

func NewService(graph *Graph, c *cache.Cache, events *producer.Producer, opts ...Option) *Service {
	s := &Service{
		graph:    graph,
		cache:    c,
		events:   events,
		log:      slog.Default(),
		statsTTL: 5 * time.Minute,
		now:      time.Now,
		content:  make(map[string]Content),
		likes:    make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Follow makes follower follow followingID. Following twice is a no-op and
// publishes nothing.
func (s *Service) Follow(ctx context.Context, follower User, followingID string) error {
	if follower.ID == "" || followingID == "" {
		return ErrMissingUser
	}
	if follower.ID == followingID {
		return ErrSelfFollow
	}
	if !s.graph.Follow(follower.ID, followingID) {
		return nil
	}

	s.invalidateFollow(ctx, follower.ID, followingID)
	s.published(ctx, event.TypeUserFollowed, s.events.UserFollowed(ctx, follower.ID, followingID, follower.Username))
	return nil
}

func (s *Service) Unfollow(ctx context.Context, follower User, followingID string) error {
	if follower.ID == "" || followingID == "" {
		return ErrMissingUser
	}
	if !s.graph.Unfollow(follower.ID, followingID) {
		return nil
	}

	s.invalidateFollow(ctx, follower.ID, followingID)
	s.published(ctx, event.TypeUserUnfollowed, s.events.UserUnfollowed(ctx, follower.ID, followingID))
	return nil
}

func (s *Service) invalidateFollow(ctx context.Context, followerID, followingID string) {
	s.cache.Del(ctx,
		cache.FollowStatsKey(followerID),
		cache.FollowStatsKey(followingID),
		cache.FollowersKey(followingID),
	)
}

// FollowStats returns the follow counters of userID through the cache.
func (s *Service) FollowStats(ctx context.Context, userID string) (Stats, error) {
	return cache.ReadThrough(ctx, s.cache, cache.FollowStatsKey(userID), s.statsTTL,
		func(context.Context) (Stats, error) {
			return s.graph.Stats(userID), nil
		})
}

// Followers returns the followers of userID through the cache. The list may
// lag a follow made on another node by up to the stats TTL.
func (s *Service) Followers(ctx context.Context, userID string) ([]string, error) {
	return cache.ReadThrough(ctx, s.cache, cache.FollowersKey(userID), s.statsTTL,
		func(context.Context) ([]string, error) {
			return s.graph.Followers(userID), nil
		})
}

// CurrentFollowers reads the followers of userID straight from the graph.
// It resolves fan-out recipients for the notification consumer, which must
// not miss a follower because of a stale cache entry.
func (s *Service) CurrentFollowers(_ context.Context, userID string) ([]string, error) {
	return s.graph.Followers(userID), nil
}

// CreatePost stores a post by author. Anonymous posts notify nobody.
func (s *Service) CreatePost(ctx context.Context, author User, anonymous bool) (Content, error) {
	c, err := s.addContent(author, event.TargetPost, anonymous)
	if err != nil {
		return Content{}, err
	}
	s.published(ctx, event.TypePostCreated, s.events.PostCreated(ctx, author.ID, c.ID, author.Username, anonymous))
	return c, nil
}

func (s *Service) UploadReel(ctx context.Context, author User, anonymous bool) (Content, error) {
	c, err := s.addContent(author, event.TargetReel, anonymous)
	if err != nil {
		return Content{}, err
	}
	s.published(ctx, event.TypeReelUploaded, s.events.ReelUploaded(ctx, author.ID, c.ID, author.Username, anonymous))
	return c, nil
}

func (s *Service) addContent(author User, typ string, anonymous bool) (Content, error) {
	if author.ID == "" {
		return Content{}, ErrMissingUser
	}
	c := Content{
		ID:          uuid.NewString(),
		Type:        typ,
		AuthorID:    author.ID,
		IsAnonymous: anonymous,
		CreatedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	s.content[c.ID] = c
	s.mu.Unlock()
	return c, nil
}

// Like records a like of a post or reel. Liking twice publishes once.
func (s *Service) Like(ctx context.Context, user User, targetType, targetID string) error {
	c, err := s.target(user, targetType, targetID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	set, ok := s.likes[c.ID]
	if !ok {
		set = make(map[string]struct{})
		s.likes[c.ID] = set
	}
	_, dup := set[user.ID]
	set[user.ID] = struct{}{}
	s.mu.Unlock()
	if dup {
		return nil
	}

	if c.Type == event.TargetReel {
		s.published(ctx, event.TypeReelLiked, s.events.ReelLiked(ctx, user.ID, user.Username, c.ID, c.AuthorID))
	} else {
		s.published(ctx, event.TypePostLiked, s.events.PostLiked(ctx, user.ID, user.Username, c.ID, c.AuthorID))
	}
	return nil
}

func (s *Service) Comment(ctx context.Context, user User, targetType, targetID, text string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, ErrEmptyComment
	}
	c, err := s.target(user, targetType, targetID)
	if err != nil {
		return Comment{}, err
	}

	cm := Comment{
		ID:         uuid.NewString(),
		TargetType: c.Type,
		TargetID:   c.ID,
		AuthorID:   user.ID,
		Text:       text,
		CreatedAt:  s.now().UTC(),
	}
	s.published(ctx, event.TypeCommentCreated,
		s.events.CommentCreated(ctx, user.ID, user.Username, c.Type, c.ID, c.AuthorID, cm.ID, text))
	return cm, nil
}

// View records a view for analytics.
func (s *Service) View(ctx context.Context, user User, targetType, targetID string) error {
	c, err := s.target(user, targetType, targetID)
	if err != nil {
		return err
	}
	if c.Type == event.TargetReel {
		s.published(ctx, event.TypeReelViewed, s.events.ReelViewed(ctx, user.ID, c.ID, c.AuthorID))
	} else {
		s.published(ctx, event.TypePostViewed, s.events.PostViewed(ctx, user.ID, c.ID, c.AuthorID))
	}
	return nil
}

func (s *Service) target(user User, targetType, targetID string) (Content, error) {
	if user.ID == "" {
		return Content{}, ErrMissingUser
	}
	targetType = strings.ToLower(targetType)
	if targetType != event.TargetPost && targetType != event.TargetReel {
		return Content{}, ErrInvalidTarget
	}

	s.mu.RLock()
	c, ok := s.content[targetID]
	s.mu.RUnlock()
	if !ok || c.Type != targetType {
		return Content{}, ErrContentNotFound
	}
	return c, nil
}

// published logs a dropped event. The write it belongs to stands either way.
func (s *Service) published(ctx context.Context, t event.Type, ok bool) {
	if !ok {
		s.log.WarnContext(ctx, "event not published, write kept", logger.EventType(t.String()))
	}
}
