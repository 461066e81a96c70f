package live

import "errors"

var (
	ErrMissingCredential   = errors.New("live: missing credential")
	ErrMalformedCredential = errors.New("live: malformed credential")
	ErrExpiredCredential   = errors.New("live: expired credential")
	ErrInvalidCredential   = errors.New("live: invalid credential")

	ErrSessionClosed    = errors.New("live: session closed")
	ErrSlowConsumer     = errors.New("live: session queue full")
	ErrRegistryClosed   = errors.New("live: registry closed")
	ErrIdentityMismatch = errors.New("live: session belongs to another identity")
)
