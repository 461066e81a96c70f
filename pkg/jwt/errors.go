package jwt

import "errors"

var (
	ErrMissingToken      = errors.New("jwt: missing token")
	ErrMalformedToken    = errors.New("jwt: malformed token")
	ErrExpiredToken      = errors.New("jwt: token is expired")
	ErrInvalidSignature  = errors.New("jwt: invalid signature")
	ErrInvalidToken      = errors.New("jwt: invalid token")
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrMissingSubject    = errors.New("jwt: missing subject")
)
