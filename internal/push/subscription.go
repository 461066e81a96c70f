package push

import (
	"net/url"
	"time"
)

// Keys are the client keys used to encrypt the payload.
type Keys struct {
	P256dh string `json:"p256dh" bson:"p256dh"`
	Auth   string `json:"auth" bson:"auth"`
}

// Subscription is a browser push endpoint of a recipient. It is unique on
// (RecipientID, Endpoint).
type Subscription struct {
	RecipientID string    `json:"recipientId" bson:"recipient_id"`
	Endpoint    string    `json:"endpoint" bson:"endpoint"`
	Keys        Keys      `json:"keys" bson:"keys"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}

func (s Subscription) Validate() error {
	if s.RecipientID == "" || s.Keys.P256dh == "" || s.Keys.Auth == "" {
		return ErrInvalidSubscription
	}
	u, err := url.Parse(s.Endpoint)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return ErrInvalidSubscription
	}
	return nil
}
