package notification

import "errors"

var (
	ErrNotFound         = errors.New("notification not found")
	ErrForbidden        = errors.New("notification belongs to another recipient")
	ErrMissingRecipient = errors.New("notification recipient is required")
	ErrInvalidType      = errors.New("invalid notification type")
	ErrBothTargets      = errors.New("notification cannot reference both a post and a reel")
	ErrFollowWithTarget = errors.New("follow notification cannot reference a post or reel")
	ErrNothingStored    = errors.New("no notification could be stored")
	ErrInvalidRows      = errors.New("no notification passed validation")
	ErrStore            = errors.New("notification store failure")
)
