package eventlog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	fieldKey   = "key"
	fieldValue = "value"
)

// RedisBroker stores each topic partition in its own Redis Stream named
// <topic>:<partition>. Consumer groups map one-to-one onto Redis consumer
// groups, and every partition is read by a single consumer per group, so
// the stream order is the delivery order.
type RedisBroker struct {
	client redis.UniversalClient
	maxLen int64

	groups sync.Map // stream|group -> struct{}
}

// RedisBrokerOption configures a RedisBroker.
type RedisBrokerOption func(*RedisBroker)

// WithMaxLen caps each stream at roughly n entries. Zero keeps everything.
func WithMaxLen(n int64) RedisBrokerOption {
	return func(b *RedisBroker) {
		if n >= 0 {
			b.maxLen = n
		}
	}
}

func NewRedisBroker(client redis.UniversalClient, opts ...RedisBrokerOption) *RedisBroker {
	b := &RedisBroker{client: client}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBroker) Append(ctx context.Context, topic string, partition int, key string, value []byte) error {
	args := &redis.XAddArgs{
		Stream: streamName(topic, partition),
		Values: map[string]any{fieldKey: key, fieldValue: value},
	}
	if b.maxLen > 0 {
		args.MaxLen = b.maxLen
		args.Approx = true
	}
	if err := b.client.XAdd(ctx, args).Err(); err != nil {
		return errors.Join(ErrAppendFailed, err)
	}
	return nil
}

func (b *RedisBroker) Read(ctx context.Context, req ReadRequest) ([]Message, error) {
	stream := streamName(req.Topic, req.Partition)
	if err := b.ensureGroup(ctx, stream, req.Group); err != nil {
		return nil, err
	}

	args := &redis.XReadGroupArgs{
		Group:    req.Group,
		Consumer: consumerName(req.Group, req.Partition),
		Count:    int64(req.Count),
		Block:    -1,
	}
	if req.Pending {
		// "0" replays entries delivered to this consumer but never acknowledged.
		args.Streams = []string{stream, "0"}
	} else {
		args.Streams = []string{stream, ">"}
		if req.Block > 0 {
			args.Block = req.Block
		}
	}

	res, err := b.client.XReadGroup(ctx, args).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		if isNoGroup(err) {
			b.groups.Delete(stream + "|" + req.Group)
		}
		return nil, errors.Join(ErrReadFailed, err)
	}

	var msgs []Message
	for _, s := range res {
		for _, entry := range s.Messages {
			msg, ok := decodeEntry(req, entry)
			if !ok {
				// Trimmed away while pending; nothing left to deliver.
				_ = b.client.XAck(ctx, stream, req.Group, entry.ID).Err()
				continue
			}
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func (b *RedisBroker) Ack(ctx context.Context, group string, msg Message) error {
	if err := b.client.XAck(ctx, streamName(msg.Topic, msg.Partition), group, msg.ID).Err(); err != nil {
		return errors.Join(ErrAckFailed, err)
	}
	return nil
}

// Close is a no-op; the client belongs to the caller.
func (b *RedisBroker) Close() error { return nil }

// ensureGroup creates the consumer group at the start of the stream, so a
// new group sees records published before it first connected.
func (b *RedisBroker) ensureGroup(ctx context.Context, stream, group string) error {
	k := stream + "|" + group
	if _, ok := b.groups.Load(k); ok {
		return nil
	}
	err := b.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return errors.Join(ErrReadFailed, err)
	}
	b.groups.Store(k, struct{}{})
	return nil
}

func decodeEntry(req ReadRequest, entry redis.XMessage) (Message, bool) {
	if len(entry.Values) == 0 {
		return Message{}, false
	}
	msg := Message{
		Topic:     req.Topic,
		Partition: req.Partition,
		ID:        entry.ID,
	}
	if v, ok := entry.Values[fieldKey].(string); ok {
		msg.Key = v
	}
	if v, ok := entry.Values[fieldValue].(string); ok {
		msg.Value = []byte(v)
	}
	return msg, true
}

func streamName(topic string, partition int) string {
	return topic + ":" + strconv.Itoa(partition)
}

func consumerName(group string, partition int) string {
	return group + "-p" + strconv.Itoa(partition)
}

func isNoGroup(err error) bool {
	return strings.HasPrefix(err.Error(), "NOGROUP")
}

var (
	_ Broker = (*RedisBroker)(nil)
	_ Broker = (*MemoryBroker)(nil)
)
