// Package types defines the error taxonomy shared by the relay and its
// HTTP boundary.
//
// Every failure the relay can report is an *AppError carrying one Kind.
// Each kind has a fixed HTTP status, log severity and display prefix:
//
//	Kind                 Status  Level  Prefix
//	KindInvalidPath      400     WARN   Invalid URL path
//	KindInvalidQuery     400     WARN   Invalid query
//	KindInvalidJSONPath  400     WARN   Invalid JSON path
//	KindInternal         500     ERROR  Internal error
//	KindOther            400     WARN   Other error
//
// The response body is AppError.Error(), the top-level message only. The
// full causal chain is available through Chain for logging.
package types
