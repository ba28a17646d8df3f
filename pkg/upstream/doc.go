// Package upstream is the HTTP client the relay forwards materialized
// documents to.
//
// A Client resolves relay targets against a fixed base URL, POSTs a JSON
// body, and classifies transport failures:
//
//	client, err := upstream.New(upstream.Config{BaseURL: "http://127.0.0.12"})
//	req, err := client.NewRequest(ctx, "axis-cgi/param.cgi", doc)
//	resp, err := client.Do(req)
//
// NewRequest rejects targets that are empty, absolute, carry a query or
// try to climb out of the base path with a *TargetError. Do never
// interprets the status code; any response the upstream sends is
// returned as is. Failures to obtain one are reported as *Error with a
// Kind describing what went wrong.
//
// The client keeps a pooled transport and is safe for concurrent use.
// Build one per process and share it.
package upstream
