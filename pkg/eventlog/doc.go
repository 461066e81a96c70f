// Package eventlog is a partitioned, consumer-group based log with
// at-least-once delivery.
//
// Producers call Log.Publish with a topic, a partition key and a payload.
// The key is hashed with xxhash to pick one of the configured partitions, so
// records that share a key are consumed in publish order. Publish never
// returns an error: a failed append is logged and reported as false, and the
// caller decides whether to care.
//
// Consumers subscribe as a named group. Every group sees every record and
// keeps its own position. Consume runs one goroutine per topic partition;
// a record is acknowledged only after the handler returns nil, and a failing
// handler is retried in place with exponential backoff so later records of
// the same partition wait behind it.
//
// Two brokers ship with the package: MemoryBroker for single-process runs and
// tests, and RedisBroker, which keeps one Redis Stream per topic partition and
// maps groups onto Redis consumer groups.
//
//	log := eventlog.New(eventlog.NewRedisBroker(client), eventlog.WithPartitions(8))
//	log.Publish(ctx, "engagement", ownerID, payload)
//
//	sub := log.Subscribe("analytics", "engagement", "analytics")
//	err := log.Consume(ctx, sub, func(ctx context.Context, m eventlog.Message) error {
//	    return handle(ctx, m.Value)
//	})
package eventlog
