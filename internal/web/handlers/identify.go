package handlers

import (
	"net/http"
	"strconv"

	"github.com/kozaktomas/face-registry/internal/imaging"
	"github.com/kozaktomas/face-registry/internal/registry"
)

// IdentifyHandler serves identification and similarity queries.
type IdentifyHandler struct {
	reg     *registry.Registry
	maxEdge int
}

// NewIdentifyHandler creates an identify handler.
func NewIdentifyHandler(reg *registry.Registry, maxEdge int) *IdentifyHandler {
	return &IdentifyHandler{reg: reg, maxEdge: maxEdge}
}

// Identify handles POST /identify: multipart image upload, one match per
// located face.
func (h *IdentifyHandler) Identify(w http.ResponseWriter, r *http.Request) {
	image, err := readImageUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing image upload: "+err.Error())
		return
	}

	image = imaging.PrepareProbe(image, h.maxEdge)

	matches, err := h.reg.Identify(r.Context(), image)
	if err != nil {
		respondRegistryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"faces": matches,
		"count": len(matches),
	})
}

// Similar handles POST /similar: returns the nearest enrolled faces to the
// first face in the uploaded image. Optional ?limit= caps results.
func (h *IdentifyHandler) Similar(w http.ResponseWriter, r *http.Request) {
	image, err := readImageUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing image upload: "+err.Error())
		return
	}

	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	image = imaging.PrepareProbe(image, h.maxEdge)

	results, err := h.reg.FindSimilar(r.Context(), image, limit)
	if err != nil {
		respondRegistryError(w, err)
		return
	}
	if results == nil {
		results = []registry.SimilarFace{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}
