// Package journal defines the exchange journal: one Record per relayed
// request, kept for troubleshooting after the fact.
//
// The journal is optional (journal.enabled). When enabled, the relay handler
// passes every exchange to recorder.Recorder, which writes asynchronously to
// a Storage backend from the storage package. Retention is enforced by the
// retention package and records can be exported with the export package.
//
// # Package Layout
//
//	journal/            Record, Query, Storage, Exporter and error types
//	journal/query       query validation and defaults
//	journal/storage     memory and sqlite backends
//	journal/recorder    async writer fed by the relay handler
//	journal/retention   age and count based pruning on a cron schedule
//	journal/export      JSON and CSV writers
//
// # Record Contents
//
// A record holds the request metadata, the response status and content type,
// the error kind and message for failed exchanges, and SHA-256 hashes of the
// document sent upstream and the body relayed back. Bodies themselves are
// not stored.
//
// # Errors
//
// Storage failures are *StorageError, invalid queries *QueryError, pruning
// failures *RetentionError and export failures *ExportError. All of them
// unwrap to their cause.
package journal
