// Package storage provides journal.Storage backends.
//
// # Backends
//
//   - MemoryStorage: a mutex-guarded map, lost on restart.
//   - SQLiteStorage: a single SQLite file. Driver "sqlite" uses the pure Go
//     modernc.org/sqlite; driver "sqlite3" uses the cgo
//     github.com/mattn/go-sqlite3 and needs CGO_ENABLED=1.
//
// NewStorage picks the backend from config.JournalConfig.
//
// # SQLite Schema
//
// One row per exchange in table journal. Timestamps and durations are
// INTEGER nanoseconds. error_kind is NULL for relayed exchanges, which is
// what the "success" and "error" status filters test. busy_timeout and
// journal_mode are passed in the DSN so every pooled connection gets them.
//
// # Queries
//
// Every query is validated by the query package first. Sorting is by a
// whitelisted column with the record ID as tie breaker, so pagination is
// stable on both backends.
package storage
