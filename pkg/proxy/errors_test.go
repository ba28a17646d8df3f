package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/relay/pkg/materialize"
	"mercator-hq/relay/pkg/proxy/types"
)

func TestMaterializeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.Kind
	}{
		{"invalid path", &materialize.PathError{Path: "a..b", Kind: materialize.ErrInvalidPath}, types.KindInvalidJSONPath},
		{"conflict", &materialize.PathError{Path: "a.b", Segment: "a", Kind: materialize.ErrConflict}, types.KindInvalidQuery},
		{"malformed literal", &materialize.PathError{Path: "a.", Kind: materialize.ErrMalformedLiteral}, types.KindInvalidQuery},
		{"malformed query", &materialize.QueryError{Param: "%zz"}, types.KindInvalidQuery},
		{"wrapped conflict", fmt.Errorf("entry 3: %w", &materialize.PathError{Kind: materialize.ErrConflict}), types.KindInvalidQuery},
		{"unknown", errors.New("boom"), types.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaterializeError(tt.err)
			if got.Kind != tt.want {
				t.Errorf("MaterializeError() kind = %v, want %v", got.Kind, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("MaterializeError() lost the original error")
			}
		})
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
		wantLevel  string
		wantMsg    string
		wantKind   string
	}{
		{
			name:       "invalid path",
			err:        types.NewInvalidPathError(errors.New("missing upstream target")),
			wantStatus: 400,
			wantBody:   "Invalid URL path: missing upstream target",
			wantLevel:  "WARN",
			wantMsg:    "client error",
			wantKind:   "invalid_path",
		},
		{
			name:       "internal with cause",
			err:        types.NewInternalError("failed to read upstream response body", errors.New("connection reset")),
			wantStatus: 500,
			wantBody:   "Internal error: failed to read upstream response body",
			wantLevel:  "ERROR",
			wantMsg:    "server error",
			wantKind:   "internal",
		},
		{
			name:       "other",
			err:        types.NewOtherError(errors.New("bad response")),
			wantStatus: 400,
			wantBody:   "Other error: bad response",
			wantLevel:  "WARN",
			wantMsg:    "client error",
			wantKind:   "other",
		},
		{
			name:       "plain error is internal",
			err:        errors.New("unexpected"),
			wantStatus: 500,
			wantBody:   "Internal error: unexpected",
			wantLevel:  "ERROR",
			wantMsg:    "server error",
			wantKind:   "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/local/relay/vapix/x", nil)

			WriteError(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}

			var entry map[string]any
			if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
				t.Fatalf("log output is not one JSON line: %v: %s", err, logs.String())
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["msg"] != tt.wantMsg {
				t.Errorf("msg = %v, want %s", entry["msg"], tt.wantMsg)
			}
			if entry["kind"] != tt.wantKind {
				t.Errorf("kind = %v, want %s", entry["kind"], tt.wantKind)
			}
			chain, ok := entry["error_chain"].([]any)
			if !ok || len(chain) == 0 || chain[0] != tt.wantBody {
				t.Errorf("error_chain = %v, want it to start with %q", entry["error_chain"], tt.wantBody)
			}
		})
	}
}

func TestWriteError_ChainIncludesCauses(t *testing.T) {
	logs := captureLogs(t)
	cause := fmt.Errorf("dial tcp: %w", errors.New("connection refused"))
	rec := httptest.NewRecorder()

	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), types.NewInternalError("", cause))

	var entry struct {
		Chain []string `json:"error_chain"`
	}
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Internal error: dial tcp: connection refused",
		"connection refused",
	}
	if len(entry.Chain) != len(want) {
		t.Fatalf("error_chain = %v, want %v", entry.Chain, want)
	}
	for i := range want {
		if entry.Chain[i] != want[i] {
			t.Errorf("error_chain[%d] = %q, want %q", i, entry.Chain[i], want[i])
		}
	}
	if rec.Body.String() != want[0] {
		t.Errorf("body = %q, want only the top-level message", rec.Body.String())
	}
}
