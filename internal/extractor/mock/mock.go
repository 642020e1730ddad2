// Package mock provides a deterministic extractor implementation for tests.
package mock

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/kozaktomas/face-registry/internal/registry"
)

// Extractor is a deterministic in-memory implementation of
// registry.Extractor. Identical images always yield identical embeddings.
// By default one face is reported per image; Faces can override the
// response for specific images, and NoFace marks images with no face.
type Extractor struct {
	mu       sync.Mutex
	faces    map[string][]registry.BoundingBox
	vectors  map[string][][]float32
	noFace   map[string]bool
	calls    int
	embedDim int

	// Error injection
	LocateError error
	EncodeError error
}

// New creates a mock extractor producing 8-dimensional embeddings.
func New() *Extractor {
	return &Extractor{
		faces:    make(map[string][]registry.BoundingBox),
		vectors:  make(map[string][][]float32),
		noFace:   make(map[string]bool),
		embedDim: 8,
	}
}

func imageKey(image []byte) string {
	sum := sha256.Sum256(image)
	return string(sum[:])
}

// SetFaces overrides the detected faces and embeddings for an image.
// faces and embeddings must be index-aligned.
func (m *Extractor) SetFaces(image []byte, faces []registry.BoundingBox, embeddings [][]float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := imageKey(image)
	m.faces[key] = faces
	m.vectors[key] = embeddings
}

// SetNoFace marks an image as containing no detectable face.
func (m *Extractor) SetNoFace(image []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.noFace[imageKey(image)] = true
}

// Calls returns the number of extractor invocations, for call-count assertions.
func (m *Extractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// defaultEmbedding derives a stable embedding from the image bytes so that
// identical images map to identical vectors and distinct images are far
// apart in embedding space.
func (m *Extractor) defaultEmbedding(image []byte) []float32 {
	sum := sha256.Sum256(image)
	emb := make([]float32, m.embedDim)
	for i := range emb {
		emb[i] = float32(sum[i]) // components in [0, 255]: distinct images are distant
	}
	return emb
}

// LocateFaces returns the configured or default bounding boxes.
func (m *Extractor) LocateFaces(ctx context.Context, image []byte) ([]registry.BoundingBox, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.LocateError != nil {
		return nil, m.LocateError
	}

	key := imageKey(image)
	if m.noFace[key] {
		return []registry.BoundingBox{}, nil
	}
	if faces, ok := m.faces[key]; ok {
		return faces, nil
	}
	return []registry.BoundingBox{{X1: 10, Y1: 10, X2: 110, Y2: 110}}, nil
}

// EncodeFaces returns one embedding per location, index-aligned.
func (m *Extractor) EncodeFaces(ctx context.Context, image []byte, locations []registry.BoundingBox) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.EncodeError != nil {
		return nil, m.EncodeError
	}

	key := imageKey(image)
	if vectors, ok := m.vectors[key]; ok {
		return vectors, nil
	}

	embeddings := make([][]float32, len(locations))
	for i := range embeddings {
		embeddings[i] = m.defaultEmbedding(image)
	}
	return embeddings, nil
}
