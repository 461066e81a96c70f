package main

import (
	"github.com/dmitrymomot/notifyhub/internal/consumer"
	"github.com/dmitrymomot/notifyhub/internal/live"
	"github.com/dmitrymomot/notifyhub/internal/notification"
	"github.com/dmitrymomot/notifyhub/internal/push"
	"github.com/dmitrymomot/notifyhub/pkg/cache"
	"github.com/dmitrymomot/notifyhub/pkg/config"
	"github.com/dmitrymomot/notifyhub/pkg/eventlog"
	"github.com/dmitrymomot/notifyhub/pkg/httpserver"
	"github.com/dmitrymomot/notifyhub/pkg/jwt"
)

const (
	backendMemory   = "memory"
	backendRedis    = "redis"
	backendPostgres = "postgres"
	backendMongo    = "mongo"
)

type appConfig struct {
	Env           string `env:"APP_ENV" envDefault:"development"`
	Name          string `env:"APP_NAME" envDefault:"notifyhub"`
	SocialEnabled bool   `env:"API_SOCIAL_ENABLED" envDefault:"true"`
}

// settings holds every config that needs no external service. Connection
// configs with required variables are loaded only for selected backends.
type settings struct {
	app          appConfig
	http         httpserver.Config
	jwt          jwt.Config
	eventlog     eventlog.Config
	cache        cache.Config
	notification notification.Config
	live         live.Config
	push         push.Config
	consumer     consumer.Config
}

func loadSettings() (settings, error) {
	var s settings
	for _, load := range []func() error{
		func() error { return config.Load(&s.app) },
		func() error { return config.Load(&s.http) },
		func() error { return config.Load(&s.jwt) },
		func() error { return config.Load(&s.eventlog) },
		func() error { return config.Load(&s.cache) },
		func() error { return config.Load(&s.notification) },
		func() error { return config.Load(&s.live) },
		func() error { return config.Load(&s.push) },
		func() error { return config.Load(&s.consumer) },
	} {
		if err := load(); err != nil {
			return settings{}, err
		}
	}
	return s, nil
}

func (s settings) needsRedis() bool {
	return s.eventlog.Backend == backendRedis || s.cache.Backend == backendRedis
}
