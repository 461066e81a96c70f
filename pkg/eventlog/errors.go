package eventlog

import "errors"

var (
	ErrBrokerClosed   = errors.New("eventlog: broker closed")
	ErrAppendFailed   = errors.New("eventlog: append failed")
	ErrReadFailed     = errors.New("eventlog: read failed")
	ErrAckFailed      = errors.New("eventlog: ack failed")
	ErrNoTopics       = errors.New("eventlog: subscription has no topics")
	ErrHandlerPanic   = errors.New("eventlog: handler panicked")
	ErrInvalidMessage = errors.New("eventlog: invalid message")
)
