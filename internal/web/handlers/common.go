package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kozaktomas/photo-collage/internal/collage"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// errOutsideRoot is returned for directories that escape the images root.
var errOutsideRoot = errors.New("directory is outside the images root")

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusForError maps collage errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, errOutsideRoot):
		return http.StatusBadRequest
	case errors.Is(err, collage.ErrDirectoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, collage.ErrNoImages), errors.Is(err, collage.ErrInvalidImage):
		return http.StatusUnprocessableEntity
	case errors.Is(err, collage.ErrInvalidConfiguration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
