package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
)

// Admission returns middleware that lets at most maxInFlight requests run at
// once. A request that cannot start within wait is rejected with 503.
// PRE: maxInFlight > 0
// POST: never more than maxInFlight handlers execute concurrently
func Admission(maxInFlight int, wait time.Duration) func(http.Handler) http.Handler {
	sem := semaphore.NewWeighted(int64(maxInFlight))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sem.TryAcquire(1) {
				ctx, cancel := context.WithTimeout(r.Context(), wait)
				err := sem.Acquire(ctx, 1)
				cancel()
				if err != nil {
					slog.Warn("admission_rejected",
						"method", r.Method,
						"path", r.URL.Path,
						"wait_ms", wait.Milliseconds(),
					)
					w.Header().Set("Retry-After", "1")
					http.Error(w, "Service Busy", http.StatusServiceUnavailable)
					return
				}
			}
			defer sem.Release(1)
			next.ServeHTTP(w, r)
		})
	}
}
