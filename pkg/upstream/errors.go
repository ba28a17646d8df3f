package upstream

import (
	"fmt"
)

// Kind classifies a failure to obtain an upstream response.
type Kind int

const (
	// KindOther is any failure not covered by a more specific kind, such
	// as the upstream answering with something that is not HTTP.
	KindOther Kind = iota

	// KindTimeout indicates the client timeout or a context deadline
	// expired.
	KindTimeout

	// KindCanceled indicates the caller canceled the request.
	KindCanceled

	// KindConnect indicates the upstream could not be reached.
	KindConnect
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindOther:
		return "other"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindConnect:
		return "connect"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is returned by Client.Do when no response was received.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Target is the request URL.
	Target string

	// Cause is the underlying transport error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("upstream request to %s failed (%s): %v", e.Target, e.Kind, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// TargetError is returned by Client.NewRequest for a target that cannot be
// resolved against the base URL.
type TargetError struct {
	// Target is the target as given.
	Target string

	// Reason describes what is wrong with it.
	Reason string

	// Cause is the parse error, if any.
	Cause error
}

// Error implements the error interface.
func (e *TargetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid target %q: %s: %v", e.Target, e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid target %q: %s", e.Target, e.Reason)
}

// Unwrap returns the underlying error for error chain support.
func (e *TargetError) Unwrap() error {
	return e.Cause
}
