package notification

import "context"

// Store persists notifications.
type Store interface {
	// CreateBatch inserts rows atomically. Rows whose (RecipientID, EventID)
	// already exist are skipped; the returned slice holds only new rows.
	CreateBatch(ctx context.Context, rows []Notification) ([]Notification, error)
	// Create inserts one row and reports whether it was new.
	Create(ctx context.Context, row Notification) (bool, error)
	Get(ctx context.Context, id string) (Notification, error)
	// List returns a recipient's notifications, most recent first.
	List(ctx context.Context, recipientID string, opts ListOptions) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
}

// ListOptions pages and filters List.
type ListOptions struct {
	Limit      int // 0 means no limit
	Offset     int
	OnlyUnread bool
}
