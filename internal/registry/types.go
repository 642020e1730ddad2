// Package registry implements the face identity registry: durable user
// records, per-user image assets, the in-memory embedding cache and the
// matching logic that classifies a probe embedding as a known identity.
package registry

import (
	"time"
)

// UserRecord is the durable record for one enrolled identity.
type UserRecord struct {
	UserID      string            `json:"user_id"`
	DisplayName string            `json:"name"`
	CreatedAt   time.Time         `json:"created_at"`
	ImageRefs   []string          `json:"images"`
	Attributes  map[string]string `json:"additional_info,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (u *UserRecord) Clone() *UserRecord {
	c := *u
	c.ImageRefs = append([]string(nil), u.ImageRefs...)
	if u.Attributes != nil {
		c.Attributes = make(map[string]string, len(u.Attributes))
		for k, v := range u.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}

// CacheEntry is one (embedding, owner) pair in the embedding cache.
// Multiple entries may share a UserID when a user has several enrolled images.
type CacheEntry struct {
	Embedding   []float32
	UserID      string
	DisplayName string
}

// ListEntry is the compact listing form returned by ListAll.
type ListEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"name"`
}

// BoundingBox locates a detected face in image pixel coordinates.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Match is the identification result for a single detected face.
// Confidence is an integer percentage derived from the matched distance,
// not a calibrated probability. Unrecognized faces carry confidence 0.
type Match struct {
	BBox        BoundingBox `json:"bbox"`
	UserID      string      `json:"user_id,omitempty"`
	DisplayName string      `json:"name"`
	Confidence  int         `json:"confidence"`
	Distance    float64     `json:"distance"`
	Recognized  bool        `json:"recognized"`
}

// Unrecognized is the display name reported for faces that match no
// enrolled identity.
const Unrecognized = "Unrecognized"

// SimilarFace is one result of a nearest-neighbor search over the cache.
type SimilarFace struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"name"`
	Distance    float64 `json:"distance"`
}
