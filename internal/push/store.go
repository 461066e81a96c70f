package push

import "context"

// SubscriptionStore persists push subscriptions.
type SubscriptionStore interface {
	// Save inserts s or replaces the keys of an existing (recipient, endpoint) pair.
	Save(ctx context.Context, s Subscription) error
	// Delete removes a subscription. Deleting a missing one is not an error.
	Delete(ctx context.Context, recipientID, endpoint string) error
	ListByRecipient(ctx context.Context, recipientID string) ([]Subscription, error)
}
