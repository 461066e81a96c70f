package consumer

import (
	"log/slog"
	"time"
)

type options struct {
	log   *slog.Logger
	group string
	now   func() time.Time

	fanoutLimit   int
	fanoutTimeout time.Duration
	icon, badge   string

	targetTTL time.Duration
	dailyTTL  time.Duration
}

func defaultOptions(group string) options {
	return options{
		log:           slog.Default(),
		group:         group,
		now:           time.Now,
		fanoutLimit:   32,
		fanoutTimeout: 15 * time.Second,
		targetTTL:     30 * 24 * time.Hour,
		dailyTTL:      8 * 24 * time.Hour,
	}
}

// Option configures a consumer.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithGroup overrides the consumer group name.
func WithGroup(name string) Option {
	return func(o *options) {
		if name != "" {
			o.group = name
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithFanoutConcurrency bounds the fan-out goroutines in flight.
func WithFanoutConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.fanoutLimit = n
		}
	}
}

func WithFanoutTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fanoutTimeout = d
		}
	}
}

// WithPushAssets sets the icon and badge of rendered push payloads.
func WithPushAssets(icon, badge string) Option {
	return func(o *options) {
		o.icon, o.badge = icon, badge
	}
}

// WithCounterTTL sets the lifetime of per-target and daily analytics counters.
func WithCounterTTL(target, daily time.Duration) Option {
	return func(o *options) {
		if target > 0 {
			o.targetTTL = target
		}
		if daily > 0 {
			o.dailyTTL = daily
		}
	}
}
