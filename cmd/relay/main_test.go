package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/relay/pkg/journal/query"
)

// execute runs the root command with args and returns stdout and stderr.
// Flag variables are reset first because cobra keeps them between runs.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cfgFile = ""
	verbose = false
	runFlags.listenAddress, runFlags.logLevel, runFlags.dryRun = "", "", false
	materializeFlags.grammar, materializeFlags.compact = "", false
	versionFlags.output = "text"
	journalFlags = journalOptions{format: "json", limit: query.MaxLimit, result: "text"}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeConfig writes a YAML config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}
