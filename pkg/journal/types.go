package journal

import (
	"context"
	"io"
	"time"
)

// Record is the journal entry for one relayed exchange: what the caller
// asked for, what was sent upstream and what came back.
type Record struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // X-Request-ID of the exchange

	// Request
	Method      string `json:"method"`       // Inbound HTTP method
	Path        string `json:"path"`         // Inbound URL path
	Target      string `json:"target"`       // Upstream path
	RemoteAddr  string `json:"remote_addr"`  // Client address
	UserAgent   string `json:"user_agent"`   // Client user agent
	EntryCount  int    `json:"entry_count"`  // Materialized query entries
	RequestHash string `json:"request_hash"` // SHA-256 of the JSON body sent upstream

	// Response
	StatusCode   int    `json:"status_code"`   // Status sent to the caller
	ContentType  string `json:"content_type"`  // Content-Type sent to the caller
	ResponseSize int64  `json:"response_size"` // Relayed body size in bytes
	ResponseHash string `json:"response_hash"` // SHA-256 of the relayed body

	// Failure, empty when the exchange was relayed
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`

	// Timing
	Duration    time.Duration `json:"duration"`     // Total handling time
	RequestTime time.Time     `json:"request_time"` // When the request arrived
	RecordedAt  time.Time     `json:"recorded_at"`  // When the record was written
}

// Succeeded reports whether the exchange was relayed, whatever status the
// upstream answered with.
func (r *Record) Succeeded() bool {
	return r.ErrorKind == ""
}

// Status values accepted by Query.Status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Query defines filter parameters for journal lookups. Zero values do not
// filter.
type Query struct {
	// Time range on RequestTime
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	IDs        []string `json:"ids,omitempty"`         // Match any of these record IDs
	RequestID  string   `json:"request_id,omitempty"`  // Filter by request ID
	Target     string   `json:"target,omitempty"`      // Filter by upstream target
	ErrorKind  string   `json:"error_kind,omitempty"`  // Filter by error kind
	StatusCode int      `json:"status_code,omitempty"` // Filter by response status

	// Status is "success" or "error"
	Status string `json:"status,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return
	Offset int `json:"offset,omitempty"` // Skip N records

	// Sorting
	SortBy    string `json:"sort_by,omitempty"`    // "request_time", "recorded_at", "duration", "status_code"
	SortOrder string `json:"sort_order,omitempty"` // "asc", "desc"
}

// Storage defines the interface for journal storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// QueryStream delivers matching records on a channel so large exports
	// do not have to be held in memory.
	//
	// Both channels are closed when the query completes. errCh carries at
	// most one error; read recordsCh to completion before reading errCh.
	QueryStream(ctx context.Context, query *Query) (<-chan *Record, <-chan error, error)

	// Count returns the number of records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the query filters and returns the
	// number removed. Pagination and sorting fields are ignored.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Ping reports whether the backend can serve requests.
	Ping(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close() error
}

// Exporter writes records to w in a specific format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
