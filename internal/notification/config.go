package notification

import "time"

// Config holds notification settings read from the environment.
type Config struct {
	Backend        string        `env:"NOTIFICATIONS_BACKEND" envDefault:"postgres"` // postgres or memory
	DefaultLimit   int           `env:"NOTIFICATIONS_DEFAULT_LIMIT" envDefault:"20"`
	MaxLimit       int           `env:"NOTIFICATIONS_MAX_LIMIT" envDefault:"100"`
	UnreadCountTTL time.Duration `env:"NOTIFICATIONS_UNREAD_TTL" envDefault:"30s"`
}
