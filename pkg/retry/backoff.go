package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff calculates the delay before a retry. Attempt starts at 1.
// Implementations must be safe for concurrent use.
type Backoff interface {
	NextInterval(attempt int) time.Duration
}

// Exponential grows the delay by Multiplier on every attempt and caps it at
// MaxInterval. JitterFactor spreads delays by ±JitterFactor.
type Exponential struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	JitterFactor    float64
}

// NextInterval returns min(Initial * Multiplier^(attempt-1) * (1±Jitter), Max).
func (e Exponential) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := e.InitialInterval
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	maxInterval := e.MaxInterval
	if maxInterval <= 0 {
		maxInterval = 30 * time.Second
	}
	multiplier := e.Multiplier
	if multiplier <= 0 {
		multiplier = 2
	}

	interval := float64(initial) * math.Pow(multiplier, float64(attempt-1))
	if e.JitterFactor > 0 {
		interval *= 1 + (rand.Float64()*2-1)*e.JitterFactor
	}
	if interval > float64(maxInterval) {
		interval = float64(maxInterval)
	}
	return time.Duration(interval)
}

// Linear waits Interval*attempt, capped at MaxInterval.
type Linear struct {
	Interval    time.Duration
	MaxInterval time.Duration
}

func (l Linear) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	interval := l.Interval
	if interval <= 0 {
		interval = time.Second
	}
	maxInterval := l.MaxInterval
	if maxInterval <= 0 {
		maxInterval = 30 * time.Second
	}
	return min(interval*time.Duration(attempt), maxInterval)
}

// Fixed always waits Interval.
type Fixed time.Duration

func (f Fixed) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return time.Duration(f)
}

// DefaultBackoff is the strategy used when a component is not given one.
func DefaultBackoff() Backoff {
	return Exponential{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
		JitterFactor:    0.1,
	}
}
