// Package http provides the HTTP handlers and routing for the taskboard
// API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avolkov/taskboard/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps service sentinel errors to HTTP status codes.
// Anything unrecognized is an internal error; the detail stays in the
// server log, not the response.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalid):
		http.Error(w, "invalid request", http.StatusBadRequest)
	case errors.Is(err, service.ErrBadCredentials):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrEmailTaken):
		http.Error(w, "email already registered", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
