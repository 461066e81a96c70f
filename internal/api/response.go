package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// Response is the JSON envelope of every API answer.
type Response struct {
	Data  any          `json:"data,omitempty"`
	Meta  any          `json:"meta,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type listMeta struct {
	Count int `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Data: data})
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, Response{Data: items, Meta: listMeta{Count: len(items)}})
}

// writeError answers err in the envelope. Unexpected errors are logged and
// reported as a generic internal error.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	he, known := classify(err)
	msg := err.Error()
	if !known {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Error(err))
		msg = http.StatusText(he.Status)
	}
	writeJSON(w, he.Status, Response{Error: &ErrorDetail{Code: he.Code, Message: msg}})
}

// decode reads a bounded JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(v); err != nil {
		return ErrBadRequest
	}
	return nil
}
