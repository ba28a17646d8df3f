package main

import (
	"strings"
	"testing"

	"mercator-hq/relay/pkg/cli"
)

func TestRunDryRun(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantExit int
	}{
		{name: "defaults", args: []string{"run", "--dry-run"}},
		{name: "listen override", args: []string{"run", "--dry-run", "--listen", "127.0.0.1:0"}},
		{name: "bad log level", args: []string{"run", "--dry-run", "--log-level", "loud"}, wantExit: cli.ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			if got := cli.ExitCode(err); got != tt.wantExit {
				t.Fatalf("exit code = %d, want %d (err %v)", got, tt.wantExit, err)
			}
			if tt.wantExit == cli.ExitOK && !strings.Contains(out, "configuration valid") {
				t.Errorf("output = %q", out)
			}
		})
	}
}
