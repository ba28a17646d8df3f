package proxy

import (
	"net/http"
	"strconv"
)

// OutgoingResponse is an upstream response as it will be sent back to the
// caller: status, content type and body, byte for byte.
type OutgoingResponse struct {
	// StatusCode is the upstream status, never rewritten.
	StatusCode int

	// ContentType is the upstream Content-Type. Empty means the upstream
	// sent none.
	ContentType string

	// Body is the complete upstream body.
	Body []byte
}

// WriteResponse writes the header, status and body to w. Without an upstream
// Content-Type none is sent; net/http's content sniffing is suppressed.
func (o *OutgoingResponse) WriteResponse(w http.ResponseWriter) error {
	h := w.Header()
	if o.ContentType != "" {
		h.Set("Content-Type", o.ContentType)
	} else {
		h["Content-Type"] = nil
	}

	if !bodyAllowed(o.StatusCode) {
		w.WriteHeader(o.StatusCode)
		return nil
	}

	h.Set("Content-Length", strconv.Itoa(len(o.Body)))
	w.WriteHeader(o.StatusCode)
	if len(o.Body) == 0 {
		return nil
	}
	_, err := w.Write(o.Body)
	return err
}

// bodyAllowed reports whether a response with the given status may carry a
// body (RFC 9110 section 6.4.1).
func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
