package event

// Type identifies the kind of a domain event.
type Type string

const (
	TypePostCreated     Type = "POST_CREATED"
	TypeReelUploaded    Type = "REEL_UPLOADED"
	TypeUserFollowed    Type = "USER_FOLLOWED"
	TypeUserUnfollowed  Type = "USER_UNFOLLOWED"
	TypePostLiked       Type = "POST_LIKED"
	TypeReelLiked       Type = "REEL_LIKED"
	TypeCommentCreated  Type = "COMMENT_CREATED"
	TypePostViewed      Type = "POST_VIEWED"
	TypeReelViewed      Type = "REEL_VIEWED"
	TypeCacheInvalidate Type = "CACHE_INVALIDATE"
)

// Topics. Names are part of the external contract.
const (
	TopicUserLifecycle        = "user-lifecycle"
	TopicEngagement           = "engagement"
	TopicCacheInvalidation    = "cache-invalidation"
	TopicNotificationDelivery = "notification-delivery"
	TopicAnalytics            = "analytics"
)

// Target types of engagement events.
const (
	TargetPost = "post"
	TargetReel = "reel"
)

var topics = map[Type]string{
	TypeUserFollowed:    TopicUserLifecycle,
	TypeUserUnfollowed:  TopicUserLifecycle,
	TypePostCreated:     TopicNotificationDelivery,
	TypeReelUploaded:    TopicNotificationDelivery,
	TypePostLiked:       TopicEngagement,
	TypeReelLiked:       TopicEngagement,
	TypeCommentCreated:  TopicEngagement,
	TypePostViewed:      TopicAnalytics,
	TypeReelViewed:      TopicAnalytics,
	TypeCacheInvalidate: TopicCacheInvalidation,
}

// TopicFor returns the topic events of type t are published to.
func TopicFor(t Type) (string, bool) {
	topic, ok := topics[t]
	return topic, ok
}

// Valid reports whether t belongs to the known set.
func (t Type) Valid() bool {
	_, ok := topics[t]
	return ok
}

func (t Type) String() string { return string(t) }
