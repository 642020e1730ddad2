package web_test

import (
	"net/http"
	"testing"

	"github.com/kozaktomas/face-registry/internal/registry"
)

func TestEnroll(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := multipartImageRequest(t, "/api/v1/users", []byte("alice-photo"), map[string]string{
		"name":       "Alice",
		"attr.team":  "platform",
		"attr.badge": "a-123",
	})
	rec := doRequest(s, req)
	assertStatus(t, rec, http.StatusCreated)

	var user registry.UserRecord
	decodeResponse(t, rec, &user)
	if user.DisplayName != "Alice" {
		t.Errorf("expected Alice, got %q", user.DisplayName)
	}
	if len(user.ImageRefs) != 1 {
		t.Errorf("expected 1 image ref, got %d", len(user.ImageRefs))
	}
	if user.Attributes["team"] != "platform" || user.Attributes["badge"] != "a-123" {
		t.Errorf("expected attr.* fields collected, got %+v", user.Attributes)
	}
	if user.CreatedAt.IsZero() {
		t.Error("expected created_at set")
	}
}

func TestEnroll_MissingName(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := multipartImageRequest(t, "/api/v1/users", []byte("alice-photo"), nil)
	rec := doRequest(s, req)
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestEnroll_MissingFile(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users", map[string]string{"name": "Alice"})
	rec := doRequest(s, req)
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestEnroll_NoFaceDetected(t *testing.T) {
	s, _, ext := newTestServer(t)

	noFace := []byte("empty-room")
	ext.SetNoFace(noFace)

	req := multipartImageRequest(t, "/api/v1/users", noFace, map[string]string{"name": "Nobody"})
	rec := doRequest(s, req)
	assertStatus(t, rec, http.StatusUnprocessableEntity)
}

func TestAugment(t *testing.T) {
	s, _, _ := newTestServer(t)

	userID := enrollViaAPI(t, s, []byte("alice-1"), "Alice")

	req := multipartImageRequest(t, "/api/v1/users/"+userID+"/images", []byte("alice-2"), nil)
	rec := doRequest(s, req)
	assertStatus(t, rec, http.StatusOK)

	var user registry.UserRecord
	decodeResponse(t, rec, &user)
	if len(user.ImageRefs) != 2 {
		t.Errorf("expected 2 image refs after augment, got %d", len(user.ImageRefs))
	}
}

func TestAugment_UnknownUser(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := multipartImageRequest(t, "/api/v1/users/user_missing/images", []byte("photo"), nil)
	rec := doRequest(s, req)
	assertStatus(t, rec, http.StatusNotFound)
}
