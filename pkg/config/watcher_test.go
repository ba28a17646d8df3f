package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNewWatcher_Errors(t *testing.T) {
	if _, err := NewWatcher("", 0, nil); err == nil {
		t.Error("NewWatcher(\"\") error = nil, want error")
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "telemetry:\n  logging:\n    level: info\n")

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() { _ = w.Stop() }()

	changes := make(chan *Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, func(cfg *Config) { changes <- cfg }) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("telemetry:\n  logging:\n    level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(3 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case cfg := <-changes:
			// A truncate may be observed before the write lands.
			if cfg.Telemetry.Logging.Level != "debug" {
				continue
			}
			reloaded = true
		case <-timeout:
			t.Fatal("timed out waiting for reload")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}

func TestWatcher_InvalidFileNotDelivered(t *testing.T) {
	path := writeConfig(t, "relay:\n  path_grammar: marker\n")

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() { _ = w.Stop() }()

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx, func(*Config) { calls.Add(1) }) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("relay:\n  path_grammar: xpath\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("onChange called %d times for an invalid file, want 0", n)
	}
}

func TestWatcher_WatchTwice(t *testing.T) {
	path := writeConfig(t, "")
	w, err := NewWatcher(path, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx, nil) }()
	time.Sleep(50 * time.Millisecond)

	if err := w.Watch(ctx, nil); err != ErrWatcherRunning {
		t.Errorf("second Watch() error = %v, want ErrWatcherRunning", err)
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	path := writeConfig(t, "")
	w, err := NewWatcher(path, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("first Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestWatcher_ShouldProcessEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relay.yaml")
	w, err := NewWatcher(path, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create by rename", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"unclean name", fsnotify.Event{Name: filepath.Join(dir, ".", "relay.yaml"), Op: fsnotify.Write}, true},
		{"chmod only", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"sibling file", fsnotify.Event{Name: filepath.Join(dir, "other.yaml"), Op: fsnotify.Write}, false},
		{"editor swap file", fsnotify.Event{Name: path + ".swp", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.shouldProcessEvent(tt.event); got != tt.want {
				t.Errorf("shouldProcessEvent(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { count.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if n := count.Load(); n != 1 {
		t.Errorf("callback ran %d times, want 1", n)
	}

	d.Stop()
	d.Trigger(func() { count.Add(1) })
	time.Sleep(80 * time.Millisecond)
	if n := count.Load(); n != 1 {
		t.Errorf("callback ran after Stop, count = %d", n)
	}
}
