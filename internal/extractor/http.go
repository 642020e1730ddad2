// Package extractor provides clients for the external face-embedding
// service. The service owns detection and encoding quality; this package
// only moves bytes and parses responses.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/kozaktomas/face-registry/internal/registry"
)

const defaultServiceURL = "http://localhost:8000"

// Client talks to the face-embedding HTTP service and implements
// registry.Extractor.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultServiceURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// locateResponse is the response from the face location endpoint.
type locateResponse struct {
	FacesCount int                    `json:"faces_count"`
	Faces      []registry.BoundingBox `json:"faces"`
}

// encodeResponse is the response from the face encoding endpoint.
type encodeResponse struct {
	Dim        int         `json:"dim"`
	Embeddings [][]float32 `json:"embeddings"`
}

// postMultipartImage posts the image as a multipart form to the given
// endpoint. extraFields are added as plain form fields.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, image []byte, extraFields map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(image))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	for name, value := range extraFields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// LocateFaces returns the bounding boxes of faces detected in the image.
// An empty result is not an error.
func (c *Client) LocateFaces(ctx context.Context, image []byte) ([]registry.BoundingBox, error) {
	body, err := c.postMultipartImage(ctx, "/face/locate", image, nil)
	if err != nil {
		return nil, err
	}

	var locResp locateResponse
	if err := json.Unmarshal(body, &locResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return locResp.Faces, nil
}

// EncodeFaces returns one embedding per location, index-aligned with the
// locations passed in.
func (c *Client) EncodeFaces(ctx context.Context, image []byte, locations []registry.BoundingBox) ([][]float32, error) {
	locJSON, err := json.Marshal(locations)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal locations: %w", err)
	}

	body, err := c.postMultipartImage(ctx, "/face/encode", image, map[string]string{
		"locations": string(locJSON),
	})
	if err != nil {
		return nil, err
	}

	var encResp encodeResponse
	if err := json.Unmarshal(body, &encResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return encResp.Embeddings, nil
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
