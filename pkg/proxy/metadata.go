package proxy

import (
	"net/http"
	"time"

	"mercator-hq/relay/pkg/proxy/types"
)

// RequestMetadata describes an inbound relay request.
// It is used for logging, metrics and the exchange journal.
type RequestMetadata struct {
	// RequestID is a unique identifier for the request.
	RequestID string

	// Method is the inbound HTTP method.
	Method string

	// Path is the inbound URL path.
	Path string

	// Target is the upstream path the request is relayed to.
	Target string

	// UserAgent is the client's user agent string.
	UserAgent string

	// RemoteAddr is the client's address.
	RemoteAddr string

	// EntryCount is the number of query entries that were materialized.
	EntryCount int

	// Document is the materialized JSON document sent upstream.
	Document any

	// Timestamp is when the request was received.
	Timestamp time.Time
}

// ResponseMetadata describes the outcome of a relay request.
type ResponseMetadata struct {
	// StatusCode is the status sent to the caller.
	StatusCode int

	// ContentType is the Content-Type sent to the caller.
	ContentType string

	// Body is the body relayed from the upstream, nil on error.
	Body []byte

	// Latency is the total handling time.
	Latency time.Duration

	// Error is the failure, if any.
	Error *types.AppError
}

// ExtractRequestMetadata extracts metadata from an HTTP request.
func ExtractRequestMetadata(r *http.Request, requestID string) *RequestMetadata {
	return &RequestMetadata{
		RequestID:  requestID,
		Method:     r.Method,
		Path:       r.URL.Path,
		Target:     r.PathValue(TargetPathValue),
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
		Timestamp:  time.Now(),
	}
}

// ResponseFromOutgoing builds response metadata for a relayed response.
func ResponseFromOutgoing(out *OutgoingResponse, latency time.Duration) *ResponseMetadata {
	return &ResponseMetadata{
		StatusCode:  out.StatusCode,
		ContentType: out.ContentType,
		Body:        out.Body,
		Latency:     latency,
	}
}

// ResponseFromError builds response metadata for a failed request.
func ResponseFromError(err *types.AppError, latency time.Duration) *ResponseMetadata {
	return &ResponseMetadata{
		StatusCode:  err.StatusCode(),
		ContentType: "text/plain; charset=utf-8",
		Latency:     latency,
		Error:       err,
	}
}

// Outcome returns "success" for a relayed upstream response and the error
// kind otherwise.
func (m *ResponseMetadata) Outcome() string {
	if m.Error == nil {
		return "success"
	}
	return m.Error.Kind.String()
}

// IsError reports whether the relay itself failed. A relayed upstream error
// status is not a relay error.
func (m *ResponseMetadata) IsError() bool {
	return m.Error != nil
}
