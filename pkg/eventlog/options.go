package eventlog

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/retry"
)

// Option configures a Log.
type Option func(*Log)

func WithLogger(log *slog.Logger) Option {
	return func(l *Log) {
		if log != nil {
			l.log = log
		}
	}
}

// WithPartitions sets the partition count of every topic. It must not change
// while records are in flight, or keys move between partitions.
func WithPartitions(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.partitions = n
		}
	}
}

// WithTopicPrefix namespaces physical topic names, e.g. per environment.
func WithTopicPrefix(prefix string) Option {
	return func(l *Log) { l.prefix = prefix }
}

func WithPublishTimeout(d time.Duration) Option {
	return func(l *Log) {
		if d > 0 {
			l.publishTimeout = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

func WithPollTimeout(d time.Duration) Option {
	return func(l *Log) {
		if d > 0 {
			l.pollTimeout = d
		}
	}
}

// WithBackoff sets the delay strategy between handler retries and failed reads.
func WithBackoff(b retry.Backoff) Option {
	return func(l *Log) {
		if b != nil {
			l.backoff = b
		}
	}
}
