package push

import "time"

// Config holds Web Push settings.
type Config struct {
	Backend         string        `env:"PUSH_STORE" envDefault:"memory"`
	Collection      string        `env:"PUSH_COLLECTION" envDefault:"push_subscriptions"`
	VAPIDPublicKey  string        `env:"PUSH_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string        `env:"PUSH_VAPID_PRIVATE_KEY"`
	Subscriber      string        `env:"PUSH_SUBSCRIBER" envDefault:"ops@notifyhub.local"`
	TTL             time.Duration `env:"PUSH_TTL" envDefault:"24h"`
	Urgency         string        `env:"PUSH_URGENCY" envDefault:"normal"`
	Timeout         time.Duration `env:"PUSH_TIMEOUT" envDefault:"10s"`
	RetryAttempts   int           `env:"PUSH_RETRY_ATTEMPTS" envDefault:"1"`
	RetryBackoff    time.Duration `env:"PUSH_RETRY_BACKOFF" envDefault:"500ms"`
	Icon            string        `env:"PUSH_ICON" envDefault:"/icons/notification-192.png"`
	Badge           string        `env:"PUSH_BADGE" envDefault:"/icons/badge-72.png"`
}

// Enabled reports whether VAPID keys are configured.
func (c Config) Enabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
