package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-registry/internal/registry"
)

// UsersHandler serves the user lifecycle endpoints.
type UsersHandler struct {
	reg *registry.Registry
}

// NewUsersHandler creates a users handler.
func NewUsersHandler(reg *registry.Registry) *UsersHandler {
	return &UsersHandler{reg: reg}
}

// List handles GET /users. An optional ?q= filters by display name,
// case- and diacritic-insensitive.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var users []registry.ListEntry
	if query != "" {
		users = h.reg.SearchByName(query)
	} else {
		users = h.reg.ListAll()
	}
	if users == nil {
		users = []registry.ListEntry{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// Get handles GET /users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	rec, err := h.reg.Get(userID)
	if err != nil {
		respondRegistryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// updateRequest is the PATCH body for attribute updates.
type updateRequest struct {
	Attributes map[string]string `json:"attributes"`
}

// Update handles PATCH /users/{id}, merging attribute keys.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req updateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Attributes) == 0 {
		respondError(w, http.StatusBadRequest, "attributes must not be empty")
		return
	}

	if err := h.reg.UpdateAttributes(userID, req.Attributes); err != nil {
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

// Delete handles DELETE /users/{id}, removing the record, every stored
// image and the user's directory.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if err := h.reg.Remove(r.Context(), userID); err != nil {
		respondRegistryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"deleted": userID})
}
