package eventlog

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memRecord struct {
	key   string
	value []byte
}

type memPartition struct {
	records []memRecord
	// notify is closed and replaced on every append to wake blocked readers.
	notify chan struct{}
}

// MemoryBroker keeps every record in process memory. Offsets are slice
// indexes; each group commits one offset per topic partition.
type MemoryBroker struct {
	mu         sync.Mutex
	partitions map[string]map[int]*memPartition
	offsets    map[string]int // group|topic|partition -> next offset
	closed     bool
	done       chan struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		partitions: make(map[string]map[int]*memPartition),
		offsets:    make(map[string]int),
		done:       make(chan struct{}),
	}
}

func (b *MemoryBroker) Append(_ context.Context, topic string, partition int, key string, value []byte) error {
	buf := make([]byte, len(value))
	copy(buf, value)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}
	p := b.partition(topic, partition)
	p.records = append(p.records, memRecord{key: key, value: buf})
	close(p.notify)
	p.notify = make(chan struct{})
	return nil
}

func (b *MemoryBroker) Read(ctx context.Context, req ReadRequest) ([]Message, error) {
	var timeout <-chan time.Time
	for {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return nil, ErrBrokerClosed
		}
		p := b.partition(req.Topic, req.Partition)
		next := b.offsets[offsetKey(req.Group, req.Topic, req.Partition)]
		if next < len(p.records) {
			end := len(p.records)
			if req.Count > 0 {
				end = min(end, next+req.Count)
			}
			msgs := make([]Message, 0, end-next)
			for i := next; i < end; i++ {
				msgs = append(msgs, Message{
					Topic:     req.Topic,
					Partition: req.Partition,
					ID:        strconv.Itoa(i),
					Key:       p.records[i].key,
					Value:     p.records[i].value,
				})
			}
			b.mu.Unlock()
			return msgs, nil
		}
		notify := p.notify
		b.mu.Unlock()

		if req.Pending || req.Block <= 0 {
			return nil, nil
		}
		if timeout == nil {
			t := time.NewTimer(req.Block)
			defer t.Stop()
			timeout = t.C
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-b.done:
			return nil, ErrBrokerClosed
		case <-timeout:
			return nil, nil
		case <-notify:
		}
	}
}

// Ack commits msg and everything before it for group.
func (b *MemoryBroker) Ack(_ context.Context, group string, msg Message) error {
	offset, err := strconv.Atoi(msg.ID)
	if err != nil {
		return ErrInvalidMessage
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}
	k := offsetKey(group, msg.Topic, msg.Partition)
	if offset+1 > b.offsets[k] {
		b.offsets[k] = offset + 1
	}
	return nil
}

// Len returns how many records a topic partition holds.
func (b *MemoryBroker) Len(topic string, partition int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.partition(topic, partition).records)
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.done)
	}
	return nil
}

// partition must be called with b.mu held.
func (b *MemoryBroker) partition(topic string, partition int) *memPartition {
	byIndex, ok := b.partitions[topic]
	if !ok {
		byIndex = make(map[int]*memPartition)
		b.partitions[topic] = byIndex
	}
	p, ok := byIndex[partition]
	if !ok {
		p = &memPartition{notify: make(chan struct{})}
		byIndex[partition] = p
	}
	return p
}

func offsetKey(group, topic string, partition int) string {
	return group + "|" + topic + "|" + strconv.Itoa(partition)
}
