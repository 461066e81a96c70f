package push

import "errors"

var (
	ErrInvalidSubscription = errors.New("push: invalid subscription")
	ErrSubscriptionGone    = errors.New("push: subscription gone")
	ErrRejected            = errors.New("push: rejected by push service")
	ErrTransient           = errors.New("push: transient delivery failure")
	ErrStore               = errors.New("push: subscription store failure")
	ErrMissingVAPIDKeys    = errors.New("push: vapid keys are required")
)
