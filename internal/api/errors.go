package api

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/notifyhub/internal/notification"
	"github.com/dmitrymomot/notifyhub/internal/push"
	"github.com/dmitrymomot/notifyhub/internal/social"
)

var (
	ErrBadRequest   = errors.New("malformed request")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
	ErrNotEnabled   = errors.New("feature is not enabled")
)

// HTTPError binds a status and a stable machine code to an error.
type HTTPError struct {
	Status int
	Code   string
}

var errorTable = []struct {
	err error
	to  HTTPError
}{
	{ErrBadRequest, HTTPError{http.StatusBadRequest, "bad_request"}},
	{ErrInvalidLimit, HTTPError{http.StatusBadRequest, "bad_request"}},
	{ErrNotEnabled, HTTPError{http.StatusNotFound, "not_enabled"}},
	{notification.ErrNotFound, HTTPError{http.StatusNotFound, "not_found"}},
	{notification.ErrForbidden, HTTPError{http.StatusForbidden, "forbidden"}},
	{push.ErrInvalidSubscription, HTTPError{http.StatusUnprocessableEntity, "validation_error"}},
	{social.ErrContentNotFound, HTTPError{http.StatusNotFound, "not_found"}},
	{social.ErrSelfFollow, HTTPError{http.StatusUnprocessableEntity, "validation_error"}},
	{social.ErrMissingUser, HTTPError{http.StatusUnprocessableEntity, "validation_error"}},
	{social.ErrInvalidTarget, HTTPError{http.StatusUnprocessableEntity, "validation_error"}},
	{social.ErrEmptyComment, HTTPError{http.StatusUnprocessableEntity, "validation_error"}},
}

var internalError = HTTPError{http.StatusInternalServerError, "internal_error"}

// classify maps err to its HTTP form. The bool is false for unexpected
// errors, whose message must not reach the client.
func classify(err error) (HTTPError, bool) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.to, true
		}
	}
	return internalError, false
}
