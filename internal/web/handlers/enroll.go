package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-registry/internal/imaging"
	"github.com/kozaktomas/face-registry/internal/registry"
)

// EnrollHandler serves enrollment and augmentation uploads.
type EnrollHandler struct {
	reg     *registry.Registry
	maxEdge int
}

// NewEnrollHandler creates an enrollment handler. maxEdge caps the longer
// image edge before extraction.
func NewEnrollHandler(reg *registry.Registry, maxEdge int) *EnrollHandler {
	return &EnrollHandler{reg: reg, maxEdge: maxEdge}
}

// formAttributes collects attr.* form fields into an attribute map,
// e.g. attr.note=colleague becomes {"note": "colleague"}.
func formAttributes(r *http.Request) map[string]string {
	attrs := make(map[string]string)
	for key, values := range r.MultipartForm.Value {
		name, ok := strings.CutPrefix(key, "attr.")
		if !ok || name == "" || len(values) == 0 {
			continue
		}
		attrs[name] = values[0]
	}
	return attrs
}

// Enroll handles POST /users: multipart form with a "file" image, a
// required "name" field and optional attr.* fields.
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	image, err := readImageUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing image upload: "+err.Error())
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	image = imaging.PrepareProbe(image, h.maxEdge)

	userID, err := h.reg.Enroll(r.Context(), image, name, formAttributes(r))
	if err != nil {
		respondRegistryError(w, err)
		return
	}

	rec, err := h.reg.Get(userID)
	if err != nil {
		respondRegistryError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// Augment handles POST /users/{id}/images, adding another sample image to
// an existing user.
func (h *EnrollHandler) Augment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	image, err := readImageUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing image upload: "+err.Error())
		return
	}

	image = imaging.PrepareProbe(image, h.maxEdge)

	if err := h.reg.Augment(r.Context(), userID, image); err != nil {
		respondRegistryError(w, err)
		return
	}

	rec, err := h.reg.Get(userID)
	if err != nil {
		respondRegistryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}
