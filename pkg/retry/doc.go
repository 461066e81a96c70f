// Package retry holds the retry primitives shared by notifyhub components:
// backoff strategies, a circuit breaker for shielding callers from a dead
// backend, and Do, a context-aware retry loop.
//
// The event log uses Do to redeliver a failing record in place, push delivery
// uses it for transient endpoint errors, and the store connectors use it while
// waiting for Redis, Postgres or Mongo to come up.
package retry
