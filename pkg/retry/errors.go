package retry

import "errors"

// ErrAttemptsExhausted is joined with the last error when Do gives up.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")
