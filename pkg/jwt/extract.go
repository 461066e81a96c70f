package jwt

import (
	"errors"
	"net/http"
	"strings"
)

// Extractor pulls a raw token out of a request. It returns ErrMissingToken
// when the request carries none and ErrMalformedToken when the carrier is
// present but unusable.
type Extractor func(r *http.Request) (string, error)

// BearerExtractor reads "Authorization: Bearer <token>".
func BearerExtractor(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMalformedToken
	}
	return strings.TrimSpace(token), nil
}

// QueryExtractor reads the token from a query parameter. Browsers cannot set
// headers on a websocket handshake, so the live channel accepts this as a fallback.
func QueryExtractor(param string) Extractor {
	return func(r *http.Request) (string, error) {
		token := r.URL.Query().Get(param)
		if token == "" {
			return "", ErrMissingToken
		}
		return token, nil
	}
}

// Chain tries extractors in order and returns the first token found. A
// malformed carrier stops the chain.
func Chain(extractors ...Extractor) Extractor {
	return func(r *http.Request) (string, error) {
		for _, ex := range extractors {
			token, err := ex(r)
			if err == nil {
				return token, nil
			}
			if !errors.Is(err, ErrMissingToken) {
				return "", err
			}
		}
		return "", ErrMissingToken
	}
}
