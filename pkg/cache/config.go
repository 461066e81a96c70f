package cache

import "time"

// Config holds cache tuning read from the environment.
type Config struct {
	Backend          string        `env:"CACHE_BACKEND" envDefault:"redis"` // redis or memory
	MemoryCapacity   int           `env:"CACHE_MEMORY_CAPACITY" envDefault:"10000"`
	OpTimeout        time.Duration `env:"CACHE_OP_TIMEOUT" envDefault:"250ms"`
	AsyncTimeout     time.Duration `env:"CACHE_ASYNC_TIMEOUT" envDefault:"2s"`
	FailureThreshold int           `env:"CACHE_FAILURE_THRESHOLD" envDefault:"3"`
	RecoveryWindow   time.Duration `env:"CACHE_RECOVERY_WINDOW" envDefault:"5s"`
	FollowStatsTTL   time.Duration `env:"CACHE_FOLLOW_STATS_TTL" envDefault:"5m"`
}

// Options turns the config into facade options.
func (c Config) Options() []Option {
	return []Option{
		WithOpTimeout(c.OpTimeout),
		WithAsyncTimeout(c.AsyncTimeout),
		WithCircuitBreaker(c.FailureThreshold, c.RecoveryWindow),
	}
}
