package jwt_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/jwt"
)

func newService(t *testing.T, secret string) *jwt.Service {
	t.Helper()
	svc, err := jwt.New(jwt.Config{Secret: secret, Issuer: "notifyhub", TTL: time.Hour})
	require.NoError(t, err)
	return svc
}

func TestService_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := newService(t, "secret")
	token, err := svc.Generate("user-1", "ann")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "ann", claims.Username)
	assert.Equal(t, "notifyhub", claims.Issuer)
}

func TestService_ParseFailures(t *testing.T) {
	t.Parallel()

	svc := newService(t, "secret")
	other := newService(t, "other-secret")

	expired, err := svc.GenerateWithTTL("user-1", "", -time.Hour)
	require.NoError(t, err)
	forged, err := other.Generate("user-1", "")
	require.NoError(t, err)
	valid, err := svc.Generate("user-1", "")
	require.NoError(t, err)
	tampered := valid[:strings.LastIndex(valid, ".")] + ".AAAA"

	foreignIssuer, err := jwt.New(jwt.Config{Secret: "secret", Issuer: "someone-else"})
	require.NoError(t, err)
	wrongIssuer, err := foreignIssuer.Generate("user-1", "")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", jwt.ErrMissingToken},
		{"garbage", "not-a-token", jwt.ErrMalformedToken},
		{"expired", expired, jwt.ErrExpiredToken},
		{"other key", forged, jwt.ErrInvalidSignature},
		{"tampered signature", tampered, jwt.ErrInvalidSignature},
		{"wrong issuer", wrongIssuer, jwt.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Parse(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNew_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := jwt.New(jwt.Config{})
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)

	svc := newService(t, "s")
	_, err = svc.Generate("", "anon")
	assert.ErrorIs(t, err, jwt.ErrMissingSubject)
}

func TestExtractors(t *testing.T) {
	t.Parallel()

	ex := jwt.Chain(jwt.BearerExtractor, jwt.QueryExtractor("access_token"))

	r := httptest.NewRequest("GET", "/ws?access_token=from-query", nil)
	token, err := ex(r)
	require.NoError(t, err)
	assert.Equal(t, "from-query", token)

	r.Header.Set("Authorization", "Bearer from-header")
	token, err = ex(r)
	require.NoError(t, err)
	assert.Equal(t, "from-header", token)

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = ex(r)
	assert.ErrorIs(t, err, jwt.ErrMalformedToken)

	_, err = ex(httptest.NewRequest("GET", "/ws", nil))
	assert.ErrorIs(t, err, jwt.ErrMissingToken)
}
