package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// Check is a named dependency probe such as redis.Healthcheck(client).
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// HealthStatus is the body written by HealthHandler.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

const (
	StatusOK       = "ok"
	StatusDegraded = "unavailable"
)

// HealthHandler runs every check concurrently, each bounded by timeout.
// Without checks it is a liveness probe. Any failing check answers 503 and
// names the failed dependency; error details stay in the log.
func HealthHandler(log *slog.Logger, timeout time.Duration, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{Status: StatusOK}
		if len(checks) > 0 {
			status.Checks = make(map[string]string, len(checks))
		}

		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, c := range checks {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(r.Context(), timeout)
				defer cancel()

				result := StatusOK
				if err := c.Fn(ctx); err != nil {
					log.WarnContext(r.Context(), "readiness check failed",
						slog.String("check", c.Name), logger.Error(err))
					result = StatusDegraded
				}

				mu.Lock()
				status.Checks[c.Name] = result
				if result != StatusOK {
					status.Status = StatusDegraded
				}
				mu.Unlock()
			}()
		}
		wg.Wait()

		code := http.StatusOK
		if status.Status != StatusOK {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
