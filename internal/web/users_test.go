package web_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-registry/internal/registry"
)

func TestHealthCheck(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assertStatus(t, rec, http.StatusOK)

	var body map[string]string
	decodeResponse(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body)
	}
}

func TestListUsers(t *testing.T) {
	s, _, _ := newTestServer(t)

	enrollViaAPI(t, s, []byte("alice-photo"), "Alice")
	enrollViaAPI(t, s, []byte("huong-photo"), "Hương")

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	assertStatus(t, rec, http.StatusOK)

	var body struct {
		Users []registry.ListEntry `json:"users"`
		Count int                  `json:"count"`
	}
	decodeResponse(t, rec, &body)
	if body.Count != 2 || len(body.Users) != 2 {
		t.Fatalf("expected 2 users, got %+v", body)
	}
	if body.Users[0].DisplayName != "Alice" {
		t.Errorf("expected stored order starting with Alice, got %+v", body.Users)
	}
}

func TestListUsers_Search(t *testing.T) {
	s, _, _ := newTestServer(t)

	enrollViaAPI(t, s, []byte("alice-photo"), "Alice")
	enrollViaAPI(t, s, []byte("huong-photo"), "Hương")

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/users?q=huong", nil))
	assertStatus(t, rec, http.StatusOK)

	var body struct {
		Users []registry.ListEntry `json:"users"`
		Count int                  `json:"count"`
	}
	decodeResponse(t, rec, &body)
	if body.Count != 1 || body.Users[0].DisplayName != "Hương" {
		t.Errorf("expected diacritic-insensitive search hit, got %+v", body)
	}
}

func TestListUsers_Empty(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	assertStatus(t, rec, http.StatusOK)

	var body struct {
		Users []registry.ListEntry `json:"users"`
		Count int                  `json:"count"`
	}
	decodeResponse(t, rec, &body)
	if body.Count != 0 || body.Users == nil {
		t.Errorf("expected empty users array, got %+v", body)
	}
}

func TestGetUser(t *testing.T) {
	s, _, _ := newTestServer(t)

	userID := enrollViaAPI(t, s, []byte("alice-photo"), "Alice")

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/users/"+userID, nil))
	assertStatus(t, rec, http.StatusOK)

	var user registry.UserRecord
	decodeResponse(t, rec, &user)
	if user.UserID != userID || user.DisplayName != "Alice" {
		t.Errorf("unexpected record: %+v", user)
	}
	if len(user.ImageRefs) != 1 {
		t.Errorf("expected 1 image ref, got %d", len(user.ImageRefs))
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/users/user_missing", nil))
	assertStatus(t, rec, http.StatusNotFound)
}

func TestUpdateUser(t *testing.T) {
	s, _, _ := newTestServer(t)

	userID := enrollViaAPI(t, s, []byte("alice-photo"), "Alice")

	req := jsonRequest(t, http.MethodPatch, "/api/v1/users/"+userID, map[string]any{
		"attributes": map[string]string{"team": "platform"},
	})
	rec := doRequest(s, req)
	assertStatus(t, rec, http.StatusOK)

	var user registry.UserRecord
	decodeResponse(t, rec, &user)
	if user.Attributes["team"] != "platform" {
		t.Errorf("expected merged attribute, got %+v", user.Attributes)
	}
}

func TestUpdateUser_EmptyAttributes(t *testing.T) {
	s, _, _ := newTestServer(t)

	userID := enrollViaAPI(t, s, []byte("alice-photo"), "Alice")

	req := jsonRequest(t, http.MethodPatch, "/api/v1/users/"+userID, map[string]any{})
	rec := doRequest(s, req)
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestUpdateUser_NotFound(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := jsonRequest(t, http.MethodPatch, "/api/v1/users/user_missing", map[string]any{
		"attributes": map[string]string{"k": "v"},
	})
	rec := doRequest(s, req)
	assertStatus(t, rec, http.StatusNotFound)
}

func TestDeleteUser(t *testing.T) {
	s, _, _ := newTestServer(t)

	userID := enrollViaAPI(t, s, []byte("alice-photo"), "Alice")

	rec := doRequest(s, httptest.NewRequest(http.MethodDelete, "/api/v1/users/"+userID, nil))
	assertStatus(t, rec, http.StatusOK)

	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/users/"+userID, nil))
	assertStatus(t, rec, http.StatusNotFound)
}

func TestDeleteUser_NotFound(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodDelete, "/api/v1/users/user_missing", nil))
	assertStatus(t, rec, http.StatusNotFound)
}
