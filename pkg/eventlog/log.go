package eventlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/retry"
)

// HandlerFunc processes one record. Returning an error leaves the record
// unacknowledged and it is handed to the handler again after a backoff.
// An error wrapped with retry.Permanent acknowledges the record instead, so
// a record that can never succeed does not block its partition.
type HandlerFunc func(ctx context.Context, msg Message) error

// Subscription names a consumer group and the topics it reads.
type Subscription struct {
	group  string
	topics []string
}

func (s *Subscription) Group() string    { return s.group }
func (s *Subscription) Topics() []string { return append([]string(nil), s.topics...) }

// Log is the producer and consumer entry point over a Broker.
type Log struct {
	broker Broker
	log    *slog.Logger

	partitions     int
	prefix         string
	publishTimeout time.Duration
	batchSize      int
	pollTimeout    time.Duration
	backoff        retry.Backoff
}

func New(broker Broker, opts ...Option) *Log {
	l := &Log{
		broker:         broker,
		log:            slog.Default(),
		partitions:     8,
		publishTimeout: 2 * time.Second,
		batchSize:      16,
		pollTimeout:    time.Second,
		backoff: retry.Exponential{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     30 * time.Second,
			Multiplier:      2,
			JitterFactor:    0.2,
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Partitions returns the partition count of every topic.
func (l *Log) Partitions() int { return l.partitions }

// Publish appends payload to topic on the partition owned by key. It reports
// whether the broker accepted the record and never blocks longer than the
// publish timeout.
func (l *Log) Publish(ctx context.Context, topic, key string, payload []byte) bool {
	ctx, cancel := context.WithTimeout(ctx, l.publishTimeout)
	defer cancel()

	partition := PartitionFor(key, l.partitions)
	if err := l.broker.Append(ctx, l.physical(topic), partition, key, payload); err != nil {
		l.log.WarnContext(ctx, "event publish failed",
			logger.Topic(topic),
			logger.Partition(partition),
			logger.Error(err),
		)
		return false
	}
	return true
}

// Subscribe describes a consumer group reading topics. Nothing is contacted
// until Consume runs.
func (l *Log) Subscribe(group string, topics ...string) *Subscription {
	return &Subscription{group: group, topics: append([]string(nil), topics...)}
}

// Consume delivers records of every subscribed topic partition to h until ctx
// is done. Partitions are processed concurrently, records within a partition
// strictly one after another. It returns nil on cancellation.
func (l *Log) Consume(ctx context.Context, sub *Subscription, h HandlerFunc) error {
	if sub == nil || len(sub.topics) == 0 {
		return ErrNoTopics
	}

	var wg sync.WaitGroup
	for _, topic := range sub.topics {
		for p := range l.partitions {
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.consumePartition(ctx, sub.group, topic, p, h)
			}()
		}
	}

	l.log.InfoContext(ctx, "consumer group started",
		logger.ConsumerGroup(sub.group),
		slog.Any("topics", sub.topics),
		slog.Int("partitions", l.partitions),
	)
	wg.Wait()
	l.log.InfoContext(context.WithoutCancel(ctx), "consumer group stopped", logger.ConsumerGroup(sub.group))
	return nil
}

func (l *Log) consumePartition(ctx context.Context, group, topic string, partition int, h HandlerFunc) {
	req := ReadRequest{
		Group:     group,
		Topic:     l.physical(topic),
		Partition: partition,
		Count:     l.batchSize,
		Block:     l.pollTimeout,
		Pending:   true,
	}
	readFailures := 0

	for ctx.Err() == nil {
		msgs, err := l.broker.Read(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			readFailures++
			l.log.WarnContext(ctx, "event read failed",
				logger.ConsumerGroup(group),
				logger.Topic(topic),
				logger.Partition(partition),
				logger.RetryCount(readFailures),
				logger.Error(err),
			)
			if !sleep(ctx, l.backoff.NextInterval(readFailures)) {
				return
			}
			continue
		}
		readFailures = 0

		if len(msgs) == 0 {
			req.Pending = false
			continue
		}

		for _, msg := range msgs {
			msg.Topic = topic
			msg.Partition = partition
			if err := l.deliver(ctx, group, msg, h); err != nil {
				// Context ended mid-retry; the record stays unacknowledged.
				return
			}
		}
	}
}

// deliver runs h until it succeeds or rejects the record, then acknowledges.
// It only fails when ctx ends.
func (l *Log) deliver(ctx context.Context, group string, msg Message, h HandlerFunc) error {
	err := retry.Do(ctx, 0, l.backoff, func(ctx context.Context, attempt int) error {
		err := safeHandle(ctx, h, msg)
		if retry.IsPermanent(err) {
			l.log.ErrorContext(ctx, "event handler rejected record, acknowledging",
				logger.ConsumerGroup(group),
				logger.Topic(msg.Topic),
				logger.Partition(msg.Partition),
				slog.String("message_id", msg.ID),
				logger.Error(err),
			)
			return nil
		}
		if err != nil {
			l.log.WarnContext(ctx, "event handler failed, retrying",
				logger.ConsumerGroup(group),
				logger.Topic(msg.Topic),
				logger.Partition(msg.Partition),
				slog.String("message_id", msg.ID),
				logger.RetryCount(attempt),
				logger.Error(err),
			)
		}
		return err
	})
	if err != nil {
		return err
	}

	ackMsg := msg
	ackMsg.Topic = l.physical(msg.Topic)
	return retry.Do(ctx, 0, l.backoff, func(ctx context.Context, attempt int) error {
		err := l.broker.Ack(ctx, group, ackMsg)
		if err != nil {
			l.log.WarnContext(ctx, "event ack failed",
				logger.ConsumerGroup(group),
				logger.Topic(msg.Topic),
				slog.String("message_id", msg.ID),
				logger.RetryCount(attempt),
				logger.Error(err),
			)
		}
		return err
	})
}

func (l *Log) physical(topic string) string {
	return l.prefix + topic
}

func safeHandle(ctx context.Context, h HandlerFunc, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(ErrHandlerPanic, fmt.Errorf("%v", r))
		}
	}()
	return h(ctx, msg)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
