// Package live keeps the set of connected recipients and pushes frames to
// them over websocket sessions.
//
// Registry is sharded by recipient id so registrations and sends for
// different recipients rarely contend. A session can only be registered for
// an Identity, and an Identity can only be obtained from
// Authenticator.Authenticate, so an unauthenticated connection never reaches
// the registry.
//
// Sessions own a bounded outbound queue. Sending never blocks: a closed
// session fails with ErrSessionClosed and a full queue drops the frame with
// ErrSlowConsumer. Losing the whole registry is harmless because every
// notification is durable and is served again as backlog on reconnect.
package live
