package storage

import (
	"fmt"

	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/journal"
)

// NewStorage creates the backend selected by cfg.Backend.
func NewStorage(cfg *config.JournalConfig) (journal.Storage, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStorage(), nil
	case "sqlite":
		return NewSQLiteStorage(&SQLiteConfig{
			Driver:       cfg.SQLite.Driver,
			Path:         cfg.SQLite.Path,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		})
	default:
		return nil, journal.NewStorageError(cfg.Backend, "open", fmt.Errorf("unknown journal backend %q", cfg.Backend))
	}
}
