package social

import "errors"

var (
	ErrSelfFollow      = errors.New("social: users cannot follow themselves")
	ErrMissingUser     = errors.New("social: user is required")
	ErrContentNotFound = errors.New("social: content not found")
	ErrInvalidTarget   = errors.New("social: target type must be post or reel")
	ErrEmptyComment    = errors.New("social: comment text is required")
)
