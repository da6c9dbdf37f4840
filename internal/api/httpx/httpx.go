package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/bnobela/globetalk-api/internal/domain/shared"
)

// WriteJSON writes v as a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the standard {"error": message} envelope
func Error(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// StatusFromError maps a domain error to an HTTP status code. Anything
// without a recognized code is a generic server failure.
func StatusFromError(err error) int {
	switch {
	case shared.HasCode(err, shared.ErrCodeInvalidInput):
		return http.StatusBadRequest
	case shared.HasCode(err, shared.ErrCodeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError maps err to a status and writes the error envelope
func WriteError(w http.ResponseWriter, err error) {
	Error(w, StatusFromError(err), err.Error())
}

// DecodeBody parses a JSON request body into v
func DecodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
