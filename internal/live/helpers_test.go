package live_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/internal/live"
	"github.com/dmitrymomot/notifyhub/pkg/jwt"
)

const testSecret = "live-test-secret"

func newTokens(t *testing.T) *jwt.Service {
	t.Helper()
	svc, err := jwt.New(jwt.Config{Secret: testSecret, Issuer: "notifyhub", TTL: time.Hour})
	require.NoError(t, err)
	return svc
}

func token(t *testing.T, tokens *jwt.Service, userID string) string {
	t.Helper()
	tok, err := tokens.Generate(userID, userID+"_name")
	require.NoError(t, err)
	return tok
}

func identity(t *testing.T, userID string) live.Identity {
	t.Helper()
	tokens := newTokens(t)
	id, err := live.NewAuthenticator(tokens).Authenticate(token(t, tokens, userID))
	require.NoError(t, err)
	return id
}
