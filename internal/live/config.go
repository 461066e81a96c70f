package live

import "time"

// Config holds live channel settings.
type Config struct {
	Backlog        int           `env:"LIVE_BACKLOG" envDefault:"20"`
	SendBuffer     int           `env:"LIVE_SEND_BUFFER" envDefault:"64"`
	PingInterval   time.Duration `env:"LIVE_PING_INTERVAL" envDefault:"30s"`
	WriteTimeout   time.Duration `env:"LIVE_WRITE_TIMEOUT" envDefault:"10s"`
	ReadLimit      int64         `env:"LIVE_READ_LIMIT" envDefault:"4096"`
	OriginPatterns []string      `env:"LIVE_ORIGIN_PATTERNS" envSeparator:","`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		Backlog:      20,
		SendBuffer:   64,
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
		ReadLimit:    4096,
	}
}
