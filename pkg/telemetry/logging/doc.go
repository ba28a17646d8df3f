// Package logging provides structured logging on top of log/slog.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON or text output
//   - A minimum level that can be changed at runtime (config reload)
//   - Request fields (request_id, target) taken from the context
//   - Optional redaction of credentials
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//	slog.SetDefault(logger.Slog())
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "relaying request")  // includes request_id
//
// # Redaction
//
// With RedactSecrets set, fields whose key looks sensitive (password,
// token, authorization, ...) are replaced by "***", and string values have
// bearer and basic credentials, URL user info and password parameters
// masked.
package logging
