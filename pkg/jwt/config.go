package jwt

import "time"

// Config configures token issuing and verification.
type Config struct {
	Secret string        `env:"JWT_SECRET,required"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"notifyhub"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
	Leeway time.Duration `env:"JWT_LEEWAY" envDefault:"30s"`
}
