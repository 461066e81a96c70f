package notification

import (
	"time"
)

// Type is the kind of a notification.
type Type string

const (
	TypeFollow  Type = "follow"
	TypeNewPost Type = "new_post"
	TypeNewReel Type = "new_reel"
	TypeLike    Type = "like"
	TypeComment Type = "comment"
)

func (t Type) Valid() bool {
	switch t {
	case TypeFollow, TypeNewPost, TypeNewReel, TypeLike, TypeComment:
		return true
	}
	return false
}

// Notification is a durable record addressed to one recipient.
type Notification struct {
	ID              string    `json:"id"`
	RecipientID     string    `json:"recipientId"`
	Type            Type      `json:"type"`
	Message         string    `json:"message"`
	RelatedUserID   string    `json:"relatedUserId,omitempty"`
	RelatedUsername string    `json:"relatedUsername,omitempty"`
	RelatedPostID   string    `json:"relatedPostId,omitempty"`
	RelatedReelID   string    `json:"relatedReelId,omitempty"`
	IsRead          bool      `json:"isRead"`
	CreatedAt       time.Time `json:"createdAt"`
	// EventID is the id of the event that produced the record. Together with
	// RecipientID it is unique, which makes redelivered events harmless.
	EventID string `json:"eventId,omitempty"`
}

// Validate checks the structural invariants of a record before it is stored.
func (n Notification) Validate() error {
	switch {
	case n.RecipientID == "":
		return ErrMissingRecipient
	case !n.Type.Valid():
		return ErrInvalidType
	case n.RelatedPostID != "" && n.RelatedReelID != "":
		return ErrBothTargets
	case n.Type == TypeFollow && (n.RelatedPostID != "" || n.RelatedReelID != ""):
		return ErrFollowWithTarget
	}
	return nil
}
