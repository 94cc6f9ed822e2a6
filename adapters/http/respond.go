package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/airosofts/licensor/app"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes err as {"error": "..."} with the status statusFor picks.
// Server-side failures get a generic message.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps an application error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrIncompleteCheckoutData),
		errors.Is(err, app.ErrUnknownPlan),
		errors.Is(err, app.ErrPasswordMismatch),
		errors.Is(err, app.ErrWeakPassword),
		errors.Is(err, app.ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrUnauthorized),
		errors.Is(err, app.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
