package retry

import (
	"context"
	"errors"
	"time"
)

// Permanent marks err as not worth retrying. Do returns it immediately, unwrapped.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// IsPermanent reports whether err was produced by Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Do calls fn until it succeeds, returns a permanent error, the attempt budget
// is spent or ctx is done. attempts <= 0 retries until ctx is done.
// The attempt number passed to fn starts at 1.
func Do(ctx context.Context, attempts int, b Backoff, fn func(ctx context.Context, attempt int) error) error {
	if b == nil {
		b = DefaultBackoff()
	}

	var lastErr error
	for attempt := 1; attempts <= 0 || attempt <= attempts; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}

		var p *permanentError
		if errors.As(err, &p) {
			return p.err
		}
		lastErr = err

		if attempts > 0 && attempt == attempts {
			break
		}

		timer := time.NewTimer(b.NextInterval(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}
	}

	return errors.Join(ErrAttemptsExhausted, lastErr)
}
