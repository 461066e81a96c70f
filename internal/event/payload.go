package event

import (
	"context"
	"encoding/json"
)

// Payload is the typed body of an event.
type Payload interface {
	Type() Type
	// PartitionKey names the natural owner of the event. Events sharing a
	// key are consumed in publish order.
	PartitionKey() string
	Accept(ctx context.Context, env Envelope, v Visitor) error
}

// Visitor handles each event type. Implementations must cover the whole set.
type Visitor interface {
	VisitPostCreated(ctx context.Context, env Envelope, p PostCreated) error
	VisitReelUploaded(ctx context.Context, env Envelope, p ReelUploaded) error
	VisitUserFollowed(ctx context.Context, env Envelope, p UserFollowed) error
	VisitUserUnfollowed(ctx context.Context, env Envelope, p UserUnfollowed) error
	VisitPostLiked(ctx context.Context, env Envelope, p PostLiked) error
	VisitReelLiked(ctx context.Context, env Envelope, p ReelLiked) error
	VisitCommentCreated(ctx context.Context, env Envelope, p CommentCreated) error
	VisitPostViewed(ctx context.Context, env Envelope, p PostViewed) error
	VisitReelViewed(ctx context.Context, env Envelope, p ReelViewed) error
	VisitCacheInvalidate(ctx context.Context, env Envelope, p CacheInvalidate) error
}

// PostCreated is published when a user publishes a post.
type PostCreated struct {
	UserID      string `json:"userId"`
	PostID      string `json:"postId"`
	Username    string `json:"username"`
	IsAnonymous bool   `json:"isAnonymous,omitempty"`
}

func (PostCreated) Type() Type             { return TypePostCreated }
func (p PostCreated) PartitionKey() string { return p.UserID }
func (p PostCreated) Accept(ctx context.Context, env Envelope, v Visitor) error {
	return v.VisitPostCreated(ctx, env, p)
}

// ReelUploaded is published when a user uploads a reel.
type ReelUploaded struct {
	UserID      string `json:"userId"`
	ReelID      string `json:"reelId"`
	Username    string `json:"username"`
	IsAnonymous bool   `json:"isAnonymous,omitempty"`
}

func (ReelUploaded) Type() Type             { return TypeReelUploaded }
func (p ReelUploaded) PartitionKey() string { return p.UserID }
func (p ReelUploaded) Accept(ctx context.Context, env Envelope, v Visitor) error {
	return v.VisitReelUploaded(ctx, env, p)
}

// UserFollowed is published when FollowerID starts following FollowingID.
// Username is the follower's.
type UserFollowed struct {
	FollowerID  string `json:"followerId"`
	FollowingID string `json:"followingId"`
	Username    string `json:"username"`
}

func (UserFollowed) Type() Type             { return TypeUserFollowed }
func (p UserFollowed) PartitionKey() string { return p.FollowingID }
func (p UserFollowed) Accept(ctx context.Context, env Envelope, v Visitor) error {
	return v.VisitUserFollowed(ctx, env, p)
}

type UserUnfollowed struct {
	FollowerID  string `json:"followerId"`
	FollowingID string `json:"followingId"`
	Username    string `json:"username,omitempty"`
}

func (UserUnfollowed) Type() Type             { return TypeUserUnfollowed }
func (p UserUnfollowed) PartitionKey() string { return p.FollowingID }
func (p UserUnfollowed) Accept(ctx context.Context, env Envelope, v Visitor) error {
	return v.VisitUserUnfollowed(ctx, env, p)
}

// Engagement carries the fields shared by likes, comments and views.
// OwnerID is the owner of the target and receives the notification.
type Engagement struct {
	UserID     string `json:"userId"`
	Username   string `json:"username,omitempty"`
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	OwnerID    string `json:"ownerId"`
}

type PostLiked struct {
	Engagement
}

func (PostLiked) Type() Type             { return TypePostLiked }
func (p PostLiked) PartitionKey() string { return p.OwnerID }
func (p PostLiked) Accept(ctx context.Context, env Envelope, v Visitor) error {
	return v.VisitPostLiked(ctx, env, p)
}

type ReelLiked struct {
	Engagement
}

func (ReelLiked) Type() Type             { return TypeReelLiked }
func (p ReelLiked) PartitionKey() string { return p.OwnerID }
func (p ReelLiked) Accept(ctx context.Context, env Envelope, v Visitor) error {
	return v.VisitReelLiked(ctx, env, p)
}

type CommentCreated struct {
	Engagement
	CommentID string `json:"commentId"`
	Text      string `json:"text,omitempty"`
}

func (CommentCreated) Type() Type             { return TypeCommentCreated }
func (p CommentCreated) PartitionKey() string { return p.OwnerID }
func (p CommentCreated) Accept(ctx context.Context, env Envelope, v Visitor) error {
	return v.VisitCommentCreated(ctx, env, p)
}

type PostViewed struct {
	Engagement
}

func (PostViewed) Type() Type             { return TypePostViewed }
func (p PostViewed) PartitionKey() string { return p.OwnerID }
func (p PostViewed) Accept(ctx context.Context, env Envelope, v Visitor) error {
	return v.VisitPostViewed(ctx, env, p)
}

type ReelViewed struct {
	Engagement
}

func (ReelViewed) Type() Type             { return TypeReelViewed }
func (p ReelViewed) PartitionKey() string { return p.OwnerID }
func (p ReelViewed) Accept(ctx context.Context, env Envelope, v Visitor) error {
	return v.VisitReelViewed(ctx, env, p)
}

// CacheInvalidate asks every cache invalidation consumer to drop keys and key families.
type CacheInvalidate struct {
	Keys     []string `json:"keys,omitempty"`
	Prefixes []string `json:"prefixes,omitempty"`
}

func (CacheInvalidate) Type() Type { return TypeCacheInvalidate }

// PartitionKey is constant: invalidations are rare and their relative order matters.
func (CacheInvalidate) PartitionKey() string { return string(TypeCacheInvalidate) }
func (p CacheInvalidate) Accept(ctx context.Context, env Envelope, v Visitor) error {
	return v.VisitCacheInvalidate(ctx, env, p)
}

var decoders = map[Type]func([]byte) (Payload, error){
	TypePostCreated:     decodeAs[PostCreated],
	TypeReelUploaded:    decodeAs[ReelUploaded],
	TypeUserFollowed:    decodeAs[UserFollowed],
	TypeUserUnfollowed:  decodeAs[UserUnfollowed],
	TypePostLiked:       decodeAs[PostLiked],
	TypeReelLiked:       decodeAs[ReelLiked],
	TypeCommentCreated:  decodeAs[CommentCreated],
	TypePostViewed:      decodeAs[PostViewed],
	TypeReelViewed:      decodeAs[ReelViewed],
	TypeCacheInvalidate: decodeAs[CacheInvalidate],
}

func decodeAs[T Payload](data []byte) (Payload, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}
