// Package jwt issues and verifies HS256 access tokens with golang-jwt/jwt/v5.
//
// Parse classifies every failure into one of the package errors, so callers
// can tell a missing token from a malformed, expired or forged one without
// inspecting library internals:
//
//	svc, _ := jwt.New(jwt.Config{Secret: secret, Issuer: "notifyhub"})
//	claims, err := svc.Parse(token)
//	switch {
//	case errors.Is(err, jwt.ErrExpiredToken):
//	    // ask the client to refresh
//	}
//
// Extractors pull the raw token out of an HTTP request; Chain tries several
// in order.
package jwt
