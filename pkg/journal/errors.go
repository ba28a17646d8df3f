package journal

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by storage backends after Close.
var ErrClosed = errors.New("journal storage closed")

// StorageError wraps a failure of a storage backend.
type StorageError struct {
	Backend   string // "memory" or "sqlite"
	Operation string // e.g. "store", "query", "delete"
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("journal %s backend: %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// QueryError reports a query rejected before it reached storage.
type QueryError struct {
	Query *Query
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid journal query: %v", e.Cause)
}

func (e *QueryError) Unwrap() error { return e.Cause }

// NewQueryError creates a QueryError.
func NewQueryError(query *Query, cause error) *QueryError {
	return &QueryError{Query: query, Cause: cause}
}

// RetentionError reports which pruning phase failed.
type RetentionError struct {
	Phase string // "age" or "count"
	Cause error
}

func (e *RetentionError) Error() string {
	return fmt.Sprintf("journal retention (%s): %v", e.Phase, e.Cause)
}

func (e *RetentionError) Unwrap() error { return e.Cause }

// NewRetentionError creates a RetentionError.
func NewRetentionError(phase string, cause error) *RetentionError {
	return &RetentionError{Phase: phase, Cause: cause}
}

// ExportError reports an export that stopped part way. RecordCount records
// had already been written.
type ExportError struct {
	Format      string
	RecordCount int
	Cause       error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("journal export (%s) failed after %d records: %v", e.Format, e.RecordCount, e.Cause)
}

func (e *ExportError) Unwrap() error { return e.Cause }

// NewExportError creates an ExportError.
func NewExportError(format string, recordCount int, cause error) *ExportError {
	return &ExportError{Format: format, RecordCount: recordCount, Cause: cause}
}
