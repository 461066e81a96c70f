package consumer

import "time"

// Consumer group names.
const (
	GroupNotifications = "notifications"
	GroupAnalytics     = "analytics"
	GroupInvalidation  = "cache-invalidation"
)

// Config holds consumer settings. InvalidationGroup must be unique per
// instance when the cache lives in process memory.
type Config struct {
	NotificationsGroup string        `env:"CONSUMER_NOTIFICATIONS_GROUP" envDefault:"notifications"`
	AnalyticsGroup     string        `env:"CONSUMER_ANALYTICS_GROUP" envDefault:"analytics"`
	InvalidationGroup  string        `env:"CONSUMER_INVALIDATION_GROUP" envDefault:"cache-invalidation"`
	FanoutConcurrency  int           `env:"CONSUMER_FANOUT_CONCURRENCY" envDefault:"32"`
	FanoutTimeout      time.Duration `env:"CONSUMER_FANOUT_TIMEOUT" envDefault:"15s"`
	TargetCounterTTL   time.Duration `env:"ANALYTICS_TARGET_TTL" envDefault:"720h"`
	DailyCounterTTL    time.Duration `env:"ANALYTICS_DAILY_TTL" envDefault:"192h"`
}

// Options turns the config into consumer options. The group is set per consumer.
func (c Config) Options() []Option {
	return []Option{
		WithFanoutConcurrency(c.FanoutConcurrency),
		WithFanoutTimeout(c.FanoutTimeout),
		WithCounterTTL(c.TargetCounterTTL, c.DailyCounterTTL),
	}
}
