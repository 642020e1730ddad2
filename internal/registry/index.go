package registry

import (
	"sync"

	"github.com/coder/hnsw"
)

// SimilarIndex is an approximate nearest-neighbor index over the embedding
// cache, used by the similar-face query. Identification deliberately stays
// a linear scan over the cache (exact, first-match ties); the index only
// serves exploratory top-k lookups.
type SimilarIndex struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[int]
	entries []CacheEntry // indexed by graph key
	m       int
}

// NewSimilarIndex creates an empty index. maxNeighbors tunes the HNSW
// graph's M parameter.
func NewSimilarIndex(maxNeighbors int) *SimilarIndex {
	if maxNeighbors <= 0 {
		maxNeighbors = 16
	}
	return &SimilarIndex{m: maxNeighbors}
}

// Build replaces the index contents with the given cache entries.
func (x *SimilarIndex) Build(entries []CacheEntry) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(entries) == 0 {
		x.graph = nil
		x.entries = nil
		return
	}

	g := hnsw.NewGraph[int]()
	g.M = x.m
	g.Ml = 1.0 / float64(x.m)
	g.Distance = hnsw.EuclideanDistance

	for i, entry := range entries {
		if len(entry.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(i, entry.Embedding))
	}

	x.graph = g
	x.entries = entries
}

// Search returns up to k enrolled faces nearest to the query embedding,
// closest first. Distances are recomputed exactly from the node vectors.
func (x *SimilarIndex) Search(query []float32, k int) []SimilarFace {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.graph == nil || k <= 0 {
		return nil
	}

	neighbors := x.graph.Search(query, k)
	results := make([]SimilarFace, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Key < 0 || n.Key >= len(x.entries) {
			continue
		}
		entry := x.entries[n.Key]
		results = append(results, SimilarFace{
			UserID:      entry.UserID,
			DisplayName: entry.DisplayName,
			Distance:    EuclideanDistance(query, n.Value),
		})
	}
	return results
}

// Count returns the number of indexed entries.
func (x *SimilarIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}
