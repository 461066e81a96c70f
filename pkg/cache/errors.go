package cache

import "errors"

var (
	// ErrNotFound is returned by a Store when the key is absent or expired.
	ErrNotFound = errors.New("cache: key not found")

	ErrNotInteger     = errors.New("cache: value is not an integer")
	ErrCircuitOpen    = errors.New("cache: backend circuit open")
	ErrDecodeValue    = errors.New("cache: failed to decode cached value")
	ErrEncodeValue    = errors.New("cache: failed to encode value")
	ErrBackendFailure = errors.New("cache: backend failure")
)
