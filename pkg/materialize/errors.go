package materialize

import (
	"errors"
	"fmt"
)

// Error kinds reported by this package. Match them with errors.Is.
var (
	// ErrInvalidPath indicates a key that does not follow the grammar
	// (empty segments, missing anchor, unsupported selectors).
	ErrInvalidPath = errors.New("invalid path")

	// ErrConflict indicates a non-object value at a non-terminal segment.
	ErrConflict = errors.New("path conflict")

	// ErrMalformedLiteral indicates a value marked as a JSON literal that
	// could not be decoded.
	ErrMalformedLiteral = errors.New("malformed literal")

	// ErrMalformedQuery indicates a query string that could not be decoded.
	ErrMalformedQuery = errors.New("malformed query")
)

// PathError describes why a single entry could not be materialized.
type PathError struct {
	// Path is the entry key as received.
	Path string

	// Segment is the offending segment, if any.
	Segment string

	// Kind is one of ErrInvalidPath, ErrConflict or ErrMalformedLiteral.
	Kind error

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrConflict):
		return fmt.Sprintf("could not insert intermediate object %q for path %q", e.Segment, e.Path)
	case errors.Is(e.Kind, ErrMalformedLiteral):
		return fmt.Sprintf("could not parse value at %q", e.Path)
	case e.Segment != "":
		return fmt.Sprintf("%v %q: bad segment %q", e.Kind, e.Path, e.Segment)
	default:
		return fmt.Sprintf("%v %q", e.Kind, e.Path)
	}
}

// Unwrap returns the underlying cause.
func (e *PathError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the kind of this error.
func (e *PathError) Is(target error) bool {
	return target == e.Kind
}

// QueryError describes a query string parameter that could not be decoded.
type QueryError struct {
	// Param is the raw, still escaped parameter.
	Param string

	// Cause is the decoding error.
	Cause error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("could not decode query parameter %q", e.Param)
}

// Unwrap returns the underlying cause.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrMalformedQuery.
func (e *QueryError) Is(target error) bool {
	return target == ErrMalformedQuery
}

func invalidPath(path, segment string, cause error) *PathError {
	return &PathError{Path: path, Segment: segment, Kind: ErrInvalidPath, Cause: cause}
}
