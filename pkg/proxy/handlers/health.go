package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"mercator-hq/relay/pkg/telemetry/health"
)

// HealthHandler handles liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP answers 200 {"status":"ok"} while the process is serving.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// ReadyHandler handles readiness probes.
type ReadyHandler struct {
	checker *health.Checker
}

// NewReadyHandler creates a readiness handler. A nil checker is always
// ready.
func NewReadyHandler(checker *health.Checker) *ReadyHandler {
	return &ReadyHandler{checker: checker}
}

// ServeHTTP answers 200 when every check passes and 503 otherwise.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{"status": "ready"}
	statusCode := http.StatusOK

	if h.checker != nil && h.checker.Len() > 0 {
		report := h.checker.Check(r.Context())

		checks := make(map[string]string, len(report.Results))
		for _, name := range report.Names() {
			result := report.Results[name]
			if result.Err != nil {
				slog.WarnContext(r.Context(), "readiness check failed",
					"check", name,
					"error", result.Err,
					"duration_ms", result.Duration.Milliseconds(),
				)
				checks[name] = result.Err.Error()
				continue
			}
			checks[name] = "ok"
		}
		response["checks"] = checks

		if !report.Ready() {
			response["status"] = "not_ready"
			statusCode = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, statusCode, response)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
