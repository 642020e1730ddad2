package web_test

import (
	"net/http"
	"testing"

	"github.com/kozaktomas/face-registry/internal/registry"
)

type identifyBody struct {
	Faces []registry.Match `json:"faces"`
	Count int              `json:"count"`
}

func TestIdentify(t *testing.T) {
	s, _, _ := newTestServer(t)

	image := []byte("alice-photo")
	enrollViaAPI(t, s, image, "Alice")

	rec := doRequest(s, multipartImageRequest(t, "/api/v1/identify", image, nil))
	assertStatus(t, rec, http.StatusOK)

	var body identifyBody
	decodeResponse(t, rec, &body)
	if body.Count != 1 || len(body.Faces) != 1 {
		t.Fatalf("expected 1 face, got %+v", body)
	}
	face := body.Faces[0]
	if !face.Recognized || face.DisplayName != "Alice" {
		t.Errorf("expected recognized Alice, got %+v", face)
	}
	if face.Confidence < 60 {
		t.Errorf("expected confidence >= 60, got %d", face.Confidence)
	}
}

func TestIdentify_Unrecognized(t *testing.T) {
	s, _, _ := newTestServer(t)

	enrollViaAPI(t, s, []byte("alice-photo"), "Alice")

	rec := doRequest(s, multipartImageRequest(t, "/api/v1/identify", []byte("stranger-photo"), nil))
	assertStatus(t, rec, http.StatusOK)

	var body identifyBody
	decodeResponse(t, rec, &body)
	if body.Count != 1 {
		t.Fatalf("expected 1 face, got %+v", body)
	}
	face := body.Faces[0]
	if face.Recognized || face.DisplayName != registry.Unrecognized || face.Confidence != 0 {
		t.Errorf("expected Unrecognized with confidence 0, got %+v", face)
	}
}

func TestIdentify_NoFaces(t *testing.T) {
	s, _, ext := newTestServer(t)

	noFace := []byte("landscape")
	ext.SetNoFace(noFace)

	rec := doRequest(s, multipartImageRequest(t, "/api/v1/identify", noFace, nil))
	assertStatus(t, rec, http.StatusOK)

	var body identifyBody
	decodeResponse(t, rec, &body)
	if body.Count != 0 || len(body.Faces) != 0 {
		t.Errorf("expected empty result for faceless image, got %+v", body)
	}
}

func TestIdentify_MissingUpload(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, jsonRequest(t, http.MethodPost, "/api/v1/identify", map[string]string{}))
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestSimilar(t *testing.T) {
	s, _, _ := newTestServer(t)

	image := []byte("alice-photo")
	userID := enrollViaAPI(t, s, image, "Alice")
	enrollViaAPI(t, s, []byte("bob-photo"), "Bob")

	rec := doRequest(s, multipartImageRequest(t, "/api/v1/similar?limit=1", image, nil))
	assertStatus(t, rec, http.StatusOK)

	var body struct {
		Results []registry.SimilarFace `json:"results"`
		Count   int                    `json:"count"`
	}
	decodeResponse(t, rec, &body)
	if body.Count != 1 || len(body.Results) != 1 {
		t.Fatalf("expected limit to cap results at 1, got %+v", body)
	}
	if body.Results[0].UserID != userID {
		t.Errorf("expected nearest neighbor %s, got %+v", userID, body.Results[0])
	}
}

func TestSimilar_NoFace(t *testing.T) {
	s, _, ext := newTestServer(t)

	noFace := []byte("empty-room")
	ext.SetNoFace(noFace)

	rec := doRequest(s, multipartImageRequest(t, "/api/v1/similar", noFace, nil))
	assertStatus(t, rec, http.StatusUnprocessableEntity)
}
