package proxy

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"mercator-hq/relay/pkg/materialize"
	"mercator-hq/relay/pkg/proxy/types"
)

// MaterializeError maps a materializer failure onto the error taxonomy:
// grammar violations become KindInvalidJSONPath, query decoding failures,
// path conflicts and malformed literals become KindInvalidQuery.
func MaterializeError(err error) *types.AppError {
	switch {
	case errors.Is(err, materialize.ErrInvalidPath):
		return types.NewInvalidJSONPathError(err)
	case errors.Is(err, materialize.ErrMalformedQuery),
		errors.Is(err, materialize.ErrConflict),
		errors.Is(err, materialize.ErrMalformedLiteral):
		return types.NewInvalidQueryError(err)
	default:
		return types.AsAppError(err)
	}
}

// WriteError logs err at the severity of its kind and writes the kind's
// status with the error's display message as a plain-text body. Errors that
// are not *types.AppError are treated as internal.
func WriteError(w http.ResponseWriter, r *http.Request, err error) *types.AppError {
	appErr := types.AsAppError(err)

	msg := "client error"
	if appErr.Kind.IsServerError() {
		msg = "server error"
	}
	slog.Log(r.Context(), appErr.Kind.LogLevel(), msg,
		"kind", appErr.Kind.String(),
		"status", appErr.StatusCode(),
		"error", appErr.Error(),
		"error_chain", appErr.Chain(),
	)

	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(appErr.StatusCode())
	_, _ = io.WriteString(w, appErr.Error())

	return appErr
}
