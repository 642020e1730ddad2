// Package handlers implements the HTTP API over the identity registry.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kozaktomas/face-registry/internal/registry"
)

// maxUploadBytes caps multipart image uploads at 32 MiB.
const maxUploadBytes = 32 << 20

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

// respondRegistryError maps registry error kinds to HTTP statuses.
func respondRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, registry.ErrNoFaceDetected), errors.Is(err, registry.ErrEncodingFailed):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, registry.ErrAssetMissing):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeJSONBody decodes a JSON request body into target.
func decodeJSONBody(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// readImageUpload extracts the uploaded image from the "file" multipart field.
func readImageUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
