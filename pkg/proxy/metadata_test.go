package proxy

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mercator-hq/relay/pkg/proxy/types"
)

func TestExtractRequestMetadata(t *testing.T) {
	var meta *RequestMetadata
	mux := http.NewServeMux()
	mux.HandleFunc("/local/relay/vapix/{target...}", func(w http.ResponseWriter, r *http.Request) {
		meta = ExtractRequestMetadata(r, "req-1")
	})

	req := httptest.NewRequest(http.MethodPost, "/local/relay/vapix/axis-cgi/param.cgi?a=1", nil)
	req.Header.Set("User-Agent", "curl/8.0")
	req.RemoteAddr = "192.0.2.7:5555"
	mux.ServeHTTP(httptest.NewRecorder(), req)

	if meta == nil {
		t.Fatal("handler did not run")
	}
	if meta.RequestID != "req-1" || meta.Method != http.MethodPost {
		t.Errorf("RequestID/Method = %q/%q", meta.RequestID, meta.Method)
	}
	if meta.Path != "/local/relay/vapix/axis-cgi/param.cgi" {
		t.Errorf("Path = %q", meta.Path)
	}
	if meta.Target != "axis-cgi/param.cgi" {
		t.Errorf("Target = %q", meta.Target)
	}
	if meta.UserAgent != "curl/8.0" || meta.RemoteAddr != "192.0.2.7:5555" {
		t.Errorf("UserAgent/RemoteAddr = %q/%q", meta.UserAgent, meta.RemoteAddr)
	}
	if meta.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestResponseMetadata_Outcome(t *testing.T) {
	relayed := ResponseFromOutgoing(&OutgoingResponse{StatusCode: 502, ContentType: "text/plain", Body: []byte("bad gateway")}, time.Millisecond)
	if relayed.Outcome() != "success" || relayed.IsError() {
		t.Errorf("relayed upstream 502: Outcome = %q, IsError = %v", relayed.Outcome(), relayed.IsError())
	}
	if relayed.StatusCode != 502 {
		t.Errorf("StatusCode = %d, want 502", relayed.StatusCode)
	}

	failed := ResponseFromError(types.NewInvalidQueryError(errors.New("bad")), time.Millisecond)
	if failed.Outcome() != "invalid_query" || !failed.IsError() {
		t.Errorf("failed: Outcome = %q, IsError = %v", failed.Outcome(), failed.IsError())
	}
	if failed.StatusCode != 400 {
		t.Errorf("StatusCode = %d, want 400", failed.StatusCode)
	}
}
