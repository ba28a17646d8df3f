package middleware

import (
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware admits requests through a single token bucket shared
// by all callers. Requests over the limit get 429 Too Many Requests with a
// Retry-After hint and never reach next. A nil limiter disables limiting.
//
// Example usage:
//
//	limiter := rate.NewLimiter(rate.Limit(10), 20)
//	handler = RateLimitMiddleware(limiter)(handler)
func RateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reservation := limiter.Reserve()
			if reservation.OK() && reservation.Delay() == 0 {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := 1
			if reservation.OK() {
				retryAfter = int(math.Ceil(reservation.Delay().Seconds()))
				reservation.Cancel()
			}

			slog.WarnContext(r.Context(), "rate limit exceeded",
				"path", r.URL.Path,
				"retry_after_s", retryAfter,
			)

			h := w.Header()
			h.Set("Content-Type", "text/plain; charset=utf-8")
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, "Too many requests")
		})
	}
}

// NewLimiter builds a limiter for rps requests per second with the given
// burst. It returns nil, meaning unlimited, when rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
