// Package push delivers notifications to offline recipients through Web Push.
//
// Every subscription of a recipient is tried independently. Endpoints that
// answer 404 or 410 are gone for good: the subscription is deleted and never
// retried, so a revoked browser costs one failed attempt. Transient failures
// (network errors, 429, 5xx) get a small bounded retry; any other response is
// logged and dropped.
package push
