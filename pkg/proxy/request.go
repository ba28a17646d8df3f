package proxy

import (
	"errors"
	"net/http"
	"strings"

	"mercator-hq/relay/pkg/proxy/types"
)

const (
	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"

	// TargetPathValue is the name of the route wildcard holding the
	// upstream target, as in "/local/relay/vapix/{target...}".
	TargetPathValue = "target"

	// maxRequestIDLength bounds client supplied request IDs.
	maxRequestIDLength = 128
)

// ExtractTarget returns the upstream target captured by the route wildcard.
// A missing target is a KindInvalidPath error.
func ExtractTarget(r *http.Request) (string, error) {
	target := r.PathValue(TargetPathValue)
	if target == "" {
		return "", types.NewInvalidPathError(errors.New("missing upstream target in request path"))
	}
	return target, nil
}

// ExtractRequestID extracts the request ID from the X-Request-ID header.
// Values that are too long or contain anything other than printable ASCII
// are ignored so they cannot forge log lines.
func ExtractRequestID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
	if id == "" || len(id) > maxRequestIDLength {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '!' || id[i] > '~' {
			return ""
		}
	}
	return id
}
