package cli

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestSimpleProgress(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		adds  int
		want  []string
	}{
		{
			name:  "known total",
			total: 4,
			adds:  2,
			want:  []string{"exported: [", "50.0%", "(2/4)", "100.0%", "(4/4)"},
		},
		{
			name:  "unknown total",
			total: 0,
			adds:  3,
			want:  []string{"exported: 1", "exported: 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			progress := NewProgressReporter(buf, "exported")

			progress.Start(tt.total)
			for range tt.adds {
				progress.Add(1)
			}
			progress.Finish()

			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
			if !strings.HasSuffix(out, "\n") {
				t.Errorf("Finish() did not end the line: %q", out)
			}
		})
	}
}

func TestSimpleProgressError(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "exported")

	progress.Start(10)
	progress.Add(2)
	progress.Error(errors.New("database is locked"))

	if out := buf.String(); !strings.Contains(out, "exported failed after 2: database is locked") {
		t.Errorf("output = %q", out)
	}
}

func TestSimpleProgressConcurrent(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "exported").(*SimpleProgress)
	progress.Start(1000)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				progress.Add(1)
			}
		}()
	}
	wg.Wait()

	if progress.current != 1000 {
		t.Errorf("current = %d, want 1000", progress.current)
	}
	progress.Finish()
}

func TestNewProgressReporterNilWriter(t *testing.T) {
	progress := NewProgressReporter(nil, "exported")
	if progress.(*SimpleProgress).writer == nil {
		t.Error("NewProgressReporter(nil) left writer nil")
	}
}
