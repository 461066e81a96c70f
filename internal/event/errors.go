package event

import "errors"

var (
	ErrMalformed   = errors.New("event: malformed event")
	ErrUnknownType = errors.New("event: unknown event type")
	ErrNilPayload  = errors.New("event: nil payload")
)
