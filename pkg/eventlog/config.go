package eventlog

import "time"

// Config holds event log settings read from the environment.
type Config struct {
	Backend        string        `env:"EVENTLOG_BACKEND" envDefault:"redis"` // redis or memory
	Partitions     int           `env:"EVENTLOG_PARTITIONS" envDefault:"8"`
	TopicPrefix    string        `env:"EVENTLOG_TOPIC_PREFIX"`
	PublishTimeout time.Duration `env:"EVENTLOG_PUBLISH_TIMEOUT" envDefault:"2s"`
	BatchSize      int           `env:"EVENTLOG_BATCH_SIZE" envDefault:"16"`
	PollTimeout    time.Duration `env:"EVENTLOG_POLL_TIMEOUT" envDefault:"1s"`
	StreamMaxLen   int64         `env:"EVENTLOG_STREAM_MAXLEN" envDefault:"100000"`
}

// Options turns the config into Log options.
func (c Config) Options() []Option {
	return []Option{
		WithPartitions(c.Partitions),
		WithTopicPrefix(c.TopicPrefix),
		WithPublishTimeout(c.PublishTimeout),
		WithBatchSize(c.BatchSize),
		WithPollTimeout(c.PollTimeout),
	}
}
