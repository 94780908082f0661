// Package handler translates HTTP to service calls. Every response is
// the same envelope: code, message, errors, data. Handlers never touch
// SQL and never build views; both live a layer down.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vellt/eduinfo-api/internal/apperror"
)

// Envelope is the uniform response body of the API.
type Envelope struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
	Data    any      `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	if body.Errors == nil {
		body.Errors = []string{}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// Encoding a built envelope cannot fail; a broken connection is the
	// client's problem.
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{Code: status, Message: message, Data: data})
}

// writeError maps domain errors onto the status catalog of the API.
// Anything unrecognized is a server fault and hides behind a generic
// message.
func writeError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrMissingCredential),
		errors.Is(err, apperror.ErrInvalidCredential):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbiddenRole):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound),
		errors.Is(err, apperror.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrRegistrationPending):
		status = http.StatusMethodNotAllowed
	case errors.Is(err, apperror.ErrAccountDisabled):
		status = http.StatusNotAcceptable
	case errors.Is(err, apperror.ErrResolution):
		status = http.StatusNotImplemented
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if status >= http.StatusInternalServerError && !errors.Is(err, apperror.ErrResolution) {
			// Domain-level 500s (validation, conflicts) keep their
			// message; only log them at debug noise level.
			logger.Debug("request rejected",
				slog.String("path", r.URL.Path),
				slog.String("error", appErr.Message),
			)
		}
		writeJSON(w, status, Envelope{
			Code:    status,
			Message: appErr.Message,
			Errors:  appErr.Errors,
		})
		return
	}

	logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	writeJSON(w, http.StatusInternalServerError, Envelope{
		Code:    http.StatusInternalServerError,
		Message: "Szerverhiba",
	})
}
