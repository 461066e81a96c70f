package eventlog

import (
	"context"
	"time"
)

// Message is one record as seen by a consumer.
type Message struct {
	Topic     string
	Partition int
	// ID is the broker's position of the record within its partition.
	ID    string
	Key   string
	Value []byte
}

// ReadRequest asks a broker for the next records of a group on one partition.
type ReadRequest struct {
	Group     string
	Topic     string
	Partition int
	Count     int
	// Block is how long to wait for new records when none are ready.
	Block time.Duration
	// Pending asks for records delivered earlier but never acknowledged.
	// Readers set it after (re)starting and clear it once it comes back empty.
	Pending bool
}

// Broker stores partitioned records and per-group positions.
type Broker interface {
	Append(ctx context.Context, topic string, partition int, key string, value []byte) error
	// Read returns records at or after the group's committed position.
	// An empty slice with a nil error means nothing arrived within Block.
	Read(ctx context.Context, req ReadRequest) ([]Message, error)
	Ack(ctx context.Context, group string, msg Message) error
	Close() error
}
