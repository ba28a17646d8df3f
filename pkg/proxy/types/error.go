package types

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Kind classifies a relay failure. The set is closed; every kind has one
// row in the kind table below.
type Kind int

const (
	// KindInvalidPath indicates a malformed route or upstream target (400).
	KindInvalidPath Kind = iota

	// KindInvalidQuery indicates a query string that could not be
	// materialized: bad escapes, path conflicts, malformed literals (400).
	KindInvalidQuery

	// KindInvalidJSONPath indicates a query key that does not follow the
	// configured path grammar (400).
	KindInvalidJSONPath

	// KindInternal indicates a local or transport failure (500).
	KindInternal

	// KindOther indicates the upstream declined the request in a
	// non-transport way (400).
	KindOther
)

type kindInfo struct {
	name   string
	status int
	level  slog.Level
	prefix string
}

var kinds = [...]kindInfo{
	KindInvalidPath:     {"invalid_path", http.StatusBadRequest, slog.LevelWarn, "Invalid URL path"},
	KindInvalidQuery:    {"invalid_query", http.StatusBadRequest, slog.LevelWarn, "Invalid query"},
	KindInvalidJSONPath: {"invalid_json_path", http.StatusBadRequest, slog.LevelWarn, "Invalid JSON path"},
	KindInternal:        {"internal", http.StatusInternalServerError, slog.LevelError, "Internal error"},
	KindOther:           {"other", http.StatusBadRequest, slog.LevelWarn, "Other error"},
}

func (k Kind) info() kindInfo {
	if k < 0 || int(k) >= len(kinds) {
		return kinds[KindInternal]
	}
	return kinds[k]
}

// String returns the snake_case name used in logs, metrics and the journal.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kinds) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kinds[k].name
}

// HTTPStatusCode returns the status code the boundary answers with.
func (k Kind) HTTPStatusCode() int {
	return k.info().status
}

// LogLevel returns the severity the boundary logs the error at.
func (k Kind) LogLevel() slog.Level {
	return k.info().level
}

// IsServerError reports whether the kind is our fault rather than the
// caller's.
func (k Kind) IsServerError() bool {
	return k.HTTPStatusCode() >= http.StatusInternalServerError
}

// AppError is the single error type surfaced by the relay.
type AppError struct {
	// Kind selects status code and log severity.
	Kind Kind

	// Msg is the human-readable cause shown to the caller.
	Msg string

	// Cause is the underlying error; it is logged but never sent.
	Cause error
}

// Error returns the display message, which is also the response body.
func (e *AppError) Error() string {
	return e.Kind.info().prefix + ": " + e.Msg
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status for the error's kind.
func (e *AppError) StatusCode() int {
	return e.Kind.HTTPStatusCode()
}

// Chain returns the message of the error followed by every cause below it.
// A top cause whose text is already the message is not repeated.
func (e *AppError) Chain() []string {
	chain := []string{e.Error()}
	cause := e.Cause
	if cause != nil && cause.Error() == e.Msg {
		cause = errors.Unwrap(cause)
	}
	for ; cause != nil; cause = errors.Unwrap(cause) {
		chain = append(chain, cause.Error())
	}
	return chain
}

// NewError creates an AppError of the given kind. Msg defaults to the
// cause's message.
func NewError(kind Kind, msg string, cause error) *AppError {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &AppError{Kind: kind, Msg: msg, Cause: cause}
}

// NewInvalidPathError creates an error for a malformed route or target.
func NewInvalidPathError(cause error) *AppError {
	return NewError(KindInvalidPath, "", cause)
}

// NewInvalidQueryError creates an error for a query that could not be
// materialized.
func NewInvalidQueryError(cause error) *AppError {
	return NewError(KindInvalidQuery, "", cause)
}

// NewInvalidJSONPathError creates an error for a key outside the grammar.
func NewInvalidJSONPathError(cause error) *AppError {
	return NewError(KindInvalidJSONPath, "", cause)
}

// NewInternalError creates an error for a failure on the relay's side.
func NewInternalError(msg string, cause error) *AppError {
	return NewError(KindInternal, msg, cause)
}

// NewOtherError creates an error for an upstream refusal.
func NewOtherError(cause error) *AppError {
	return NewError(KindOther, "", cause)
}

// AsAppError returns err as an AppError. Errors of any other type are
// wrapped as KindInternal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("", err)
}
