// ABOUTME: JSON response helpers and domain-error to HTTP status mapping
// ABOUTME: Storage faults surface as generic 500s without leaking detail

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/allnik/advisory/internal/auth"
	"github.com/allnik/advisory/internal/store"
)

// sendJSON writes a JSON response with the given status.
func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendJSONError writes a JSON error response.
func sendJSONError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]string{"error": message})
}

// sendDomainError maps a domain error to its HTTP outcome. Anything not
// in the taxonomy is treated as an internal fault: logged by the caller,
// surfaced with a generic message.
func sendDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		sendJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicateUser):
		sendJSONError(w, http.StatusConflict, "email or username already registered")
	case errors.Is(err, auth.ErrForbidden):
		sendJSONError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, auth.ErrInvalidCredentials):
		sendJSONError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMalformedToken),
		errors.Is(err, auth.ErrInvalidSignature),
		errors.Is(err, auth.ErrExpiredToken):
		sendJSONError(w, http.StatusUnauthorized, "authentication required")
	default:
		sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}
