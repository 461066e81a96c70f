// Package api is the authenticated HTTP surface of notifyhub.
//
// Every route except /health and /ws requires a bearer token accepted by
// live.Authenticator. /ws performs its own handshake authentication so a
// browser can pass the token as the access_token query parameter.
//
// Responses share one JSON envelope:
//
//	{"data": ..., "meta": ...}
//	{"error": {"code": "not_found", "message": "..."}}
package api
