// Package handlers provides the HTTP handlers of the relay server.
//
// # Handlers
//
//   - RelayHandler: the relay route, <route_prefix>{target...}, any method.
//   - HealthHandler: GET /health, liveness, always {"status":"ok"}.
//   - ReadyHandler: GET /ready, readiness, 503 when any check registered on
//     its health.Checker fails (the journal's Ping when it is enabled).
//
// # Request Flow
//
// RelayHandler handles one request as:
//
//  1. Take the upstream target from the {target...} wildcard.
//  2. Parse the raw query string into ordered entries.
//  3. Materialize the entries into one JSON document with the configured
//     path grammar.
//  4. POST the document to the target through proxy.Relay.
//  5. Write the upstream status, Content-Type and body back unchanged.
//
// Any failure short-circuits into proxy.WriteError, which answers with the
// error kind's status and a plain-text body such as
//
//	Invalid JSON path: invalid path "a..b"
//
// Every finished exchange, relayed or failed, is counted in the metrics
// collector and passed to the journal recorder when one is configured.
package handlers
