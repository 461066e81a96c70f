package consumer

import "context"

// FollowerSource returns the current followers of a user.
type FollowerSource interface {
	Followers(ctx context.Context, userID string) ([]string, error)
}

// FollowerSourceFunc adapts a function to FollowerSource.
type FollowerSourceFunc func(ctx context.Context, userID string) ([]string, error)

func (f FollowerSourceFunc) Followers(ctx context.Context, userID string) ([]string, error) {
	return f(ctx, userID)
}
