package live

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/notifyhub/pkg/jwt"
)

// Identity is an authenticated recipient. Its zero value is not a valid
// identity and the fields are unexported, so Authenticator is the only source.
type Identity struct {
	userID   string
	username string
}

func (i Identity) UserID() string   { return i.userID }
func (i Identity) Username() string { return i.username }
func (i Identity) Valid() bool      { return i.userID != "" }

// Authenticator verifies access tokens and turns them into identities.
type Authenticator struct {
	tokens    *jwt.Service
	extractor jwt.Extractor
}

// NewAuthenticator reads tokens from the Authorization header and falls back
// to the access_token query parameter.
func NewAuthenticator(tokens *jwt.Service) *Authenticator {
	return &Authenticator{
		tokens:    tokens,
		extractor: jwt.Chain(jwt.BearerExtractor, jwt.QueryExtractor("access_token")),
	}
}

// Authenticate verifies token. Failures are one of ErrMissingCredential,
// ErrMalformedCredential, ErrExpiredCredential or ErrInvalidCredential.
func (a *Authenticator) Authenticate(token string) (Identity, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return Identity{}, credentialError(err)
	}
	return Identity{userID: claims.UserID(), username: claims.Username}, nil
}

// AuthenticateRequest extracts the token from r and verifies it.
func (a *Authenticator) AuthenticateRequest(r *http.Request) (Identity, error) {
	token, err := a.extractor(r)
	if err != nil {
		return Identity{}, credentialError(err)
	}
	return a.Authenticate(token)
}

func credentialError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrMissingToken):
		return ErrMissingCredential
	case errors.Is(err, jwt.ErrMalformedToken):
		return ErrMalformedCredential
	case errors.Is(err, jwt.ErrExpiredToken):
		return ErrExpiredCredential
	default:
		return ErrInvalidCredential
	}
}

// Reason maps an authentication error to the code sent to clients with 401.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "missing"
	case errors.Is(err, ErrMalformedCredential):
		return "malformed"
	case errors.Is(err, ErrExpiredCredential):
		return "expired"
	default:
		return "invalid"
	}
}

type identityKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.Valid()
}
