// Package notification owns the durable notification records: the model, its
// storage (Postgres in production, memory for tests and single-node runs) and
// the Service used by consumers and the HTTP surface.
//
// Records are created only by the notification consumer. The only mutation is
// marking a record read, and records are never deleted here.
package notification
