package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// ConcurrencyLimiter is a counting semaphore over in-flight requests.
type ConcurrencyLimiter struct {
	limit   int64
	current atomic.Int64
}

// NewConcurrencyLimiter caps in-flight requests at limit. It returns nil,
// meaning no cap, when limit is not positive.
func NewConcurrencyLimiter(limit int) *ConcurrencyLimiter {
	if limit <= 0 {
		return nil
	}
	return &ConcurrencyLimiter{limit: int64(limit)}
}

// Acquire takes a slot and reports whether one was free. A successful
// Acquire must be paired with Release.
func (c *ConcurrencyLimiter) Acquire() bool {
	if c.current.Add(1) > c.limit {
		c.current.Add(-1)
		return false
	}
	return true
}

// Release returns a slot.
func (c *ConcurrencyLimiter) Release() {
	c.current.Add(-1)
}

// InFlight returns the number of held slots.
func (c *ConcurrencyLimiter) InFlight() int64 {
	return c.current.Load()
}

// ConcurrencyMiddleware rejects requests with 503 Service Unavailable while
// every slot of limiter is held. A nil limiter disables the cap.
func ConcurrencyMiddleware(limiter *ConcurrencyLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Acquire() {
				slog.WarnContext(r.Context(), "concurrency limit reached",
					"path", r.URL.Path,
					"limit", limiter.limit,
				)
				h := w.Header()
				h.Set("Content-Type", "text/plain; charset=utf-8")
				h.Set("Retry-After", "1")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = io.WriteString(w, "Too many requests in flight")
				return
			}
			defer limiter.Release()
			next.ServeHTTP(w, r)
		})
	}
}
