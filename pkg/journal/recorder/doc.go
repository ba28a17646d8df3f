// Package recorder turns relay exchanges into journal records and writes
// them asynchronously.
//
// Record is called by the relay handler after the response is written. It
// only enqueues; a single worker goroutine performs the storage writes with
// a per-write timeout. A full queue drops the record instead of blocking the
// caller, and every outcome ("stored", "dropped", "failed") is reported to
// the WriteObserver, normally the metrics collector.
//
// Request and response bodies are not stored. The record keeps SHA-256
// hashes of the JSON document sent upstream and of the relayed body.
//
// Close drains the queue, so it must be called after the HTTP server has
// stopped accepting requests.
package recorder
