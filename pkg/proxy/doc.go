// Package proxy relays materialized JSON documents to the upstream HTTP API
// and returns its responses unchanged.
//
// # Relay semantics
//
// Relay.Relay issues exactly one POST with an application/json body. Any
// response that arrives is passed back with its status code, Content-Type
// and body untouched; an upstream 404 is a 404 for the caller, not a relay
// error. Only failures to obtain a response are errors, and every error is a
// *types.AppError whose kind fixes the status code:
//
//	unusable target                       -> KindInvalidPath  (400)
//	upstream failure of kind "other"      -> KindOther        (400)
//	timeout, cancellation, connect error  -> KindInternal     (500)
//	encoding or body read failure         -> KindInternal     (500)
//
// # HTTP boundary
//
// WriteError is the single place where errors become responses. It logs
// "client error" at WARN or "server error" at ERROR with the kind, status
// and full error chain, and sends only the top-level message:
//
//	HTTP/1.1 400 Bad Request
//	Content-Type: text/plain; charset=utf-8
//
//	Invalid query: could not insert intermediate object "a" for path "a.b"
//
// OutgoingResponse.WriteResponse is its success counterpart.
//
// # Subpackages
//
//   - handlers: the relay endpoint plus /health and /ready
//   - middleware: recovery, request logging, request IDs, rate limiting
//   - types: the error taxonomy
package proxy
