package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/face-registry/internal/extractor/mock"
	"github.com/kozaktomas/face-registry/internal/registry"
	"github.com/kozaktomas/face-registry/internal/web"
)

// newTestServer wires a registry with a mock extractor behind the router.
func newTestServer(t *testing.T) (*web.Server, *registry.Registry, *mock.Extractor) {
	t.Helper()
	dir := t.TempDir()
	ext := mock.New()
	reg, err := registry.New(
		filepath.Join(dir, "metadata.json"),
		filepath.Join(dir, "known_faces"),
		ext,
		registry.DefaultThreshold,
		16,
	)
	if err != nil {
		t.Fatalf("creating registry: %v", err)
	}
	return web.NewServer(reg, 0, "127.0.0.1", 0), reg, ext
}

// multipartImageRequest builds a multipart POST with a "file" image part
// and additional plain form fields.
func multipartImageRequest(t *testing.T, target string, image []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(image); err != nil {
		t.Fatalf("writing image: %v", err)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("writing field %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// doRequest runs the request through the router.
func doRequest(s *web.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rec.Code != expected {
		body, _ := io.ReadAll(rec.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, rec.Code, string(body))
	}
}

// decodeResponse parses the JSON response body into target.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

// enrollViaAPI enrolls a user through the HTTP API and returns the user id.
func enrollViaAPI(t *testing.T, s *web.Server, image []byte, name string) string {
	t.Helper()
	req := multipartImageRequest(t, "/api/v1/users", image, map[string]string{"name": name})
	rec := doRequest(s, req)
	assertStatus(t, rec, http.StatusCreated)

	var created registry.UserRecord
	decodeResponse(t, rec, &created)
	if created.UserID == "" {
		t.Fatal("expected user_id in enroll response")
	}
	return created.UserID
}
