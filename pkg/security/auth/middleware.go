package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// APIKeyHeader is the alternative to "Authorization: Bearer".
const APIKeyHeader = "X-API-Key"

var errNoKey = errors.New("no API key presented")

type contextKey string

const callerKey contextKey = "api_key_name"

// Middleware rejects requests without a valid key with 401 and a
// WWW-Authenticate challenge. A validator without keys disables the check.
func Middleware(validator *APIKeyValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator.Len() == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented, err := extractAPIKey(r)
			var key *APIKey
			if err == nil {
				key, err = validator.Validate(presented)
			}
			if err != nil {
				slog.WarnContext(r.Context(), "request rejected",
					"reason", err.Error(),
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
				)
				h := w.Header()
				h.Set("Content-Type", "text/plain; charset=utf-8")
				h.Set("WWW-Authenticate", `Bearer realm="relay"`)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, "Missing or invalid API key")
				return
			}

			slog.DebugContext(r.Context(), "API key authenticated", "caller", key.Name)
			ctx := context.WithValue(r.Context(), callerKey, key.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerName returns the name of the key that authenticated the request.
func CallerName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(callerKey).(string)
	return name, ok
}

func extractAPIKey(r *http.Request) (string, error) {
	if value := r.Header.Get("Authorization"); value != "" {
		scheme, token, ok := strings.Cut(value, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && token != "" {
			return strings.TrimSpace(token), nil
		}
	}
	if value := r.Header.Get(APIKeyHeader); value != "" {
		return value, nil
	}
	return "", errNoKey
}
