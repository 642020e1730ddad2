package registry

import (
	"context"
	"log"
	"sync"
)

// Extractor is the external face-embedding capability consumed by the
// registry. Both calls are synchronous and may return empty sequences when
// nothing is found; that is not an error. EncodeFaces output is
// index-aligned with the locations passed in.
type Extractor interface {
	LocateFaces(ctx context.Context, image []byte) ([]BoundingBox, error)
	EncodeFaces(ctx context.Context, image []byte, locations []BoundingBox) ([][]float32, error)
}

// EmbeddingCache holds the in-memory (embedding, owner) pairs derived from
// the durable stores. It is never persisted and never trusted as a source
// of truth: rebuilds replace the whole snapshot atomically, so concurrent
// readers see either the old or the new entry set, never a partial one.
type EmbeddingCache struct {
	mu      sync.RWMutex
	entries []CacheEntry
}

// NewEmbeddingCache creates an empty cache.
func NewEmbeddingCache() *EmbeddingCache {
	return &EmbeddingCache{}
}

// Rebuild derives a fresh entry set from every user's assets and swaps it
// in. Assets that cannot be read or yield no embedding are skipped and
// logged; a single bad asset must not block the whole cache. Returns the
// number of skipped assets.
func (c *EmbeddingCache) Rebuild(ctx context.Context, records *RecordStore, assets *AssetStore, ext Extractor) int {
	return c.RebuildWithProgress(ctx, records, assets, ext, nil)
}

// RebuildWithProgress is Rebuild with a per-asset callback for progress
// reporting. onAsset may be nil.
func (c *EmbeddingCache) RebuildWithProgress(ctx context.Context, records *RecordStore, assets *AssetStore, ext Extractor, onAsset func()) int {
	var fresh []CacheEntry
	skipped := 0

	for _, entry := range records.ListAll() {
		rec := records.Get(entry.UserID)
		if rec == nil {
			continue
		}
		for _, ref := range rec.ImageRefs {
			emb, ok := c.embeddingForAsset(ctx, assets, ext, ref)
			if ok {
				fresh = append(fresh, CacheEntry{
					Embedding:   emb,
					UserID:      rec.UserID,
					DisplayName: rec.DisplayName,
				})
			} else {
				skipped++
			}
			if onAsset != nil {
				onAsset()
			}
		}
	}

	c.mu.Lock()
	c.entries = fresh
	c.mu.Unlock()
	return skipped
}

// embeddingForAsset reads one asset and extracts the first face embedding.
// Failures are recovered locally: the asset is skipped and logged.
func (c *EmbeddingCache) embeddingForAsset(ctx context.Context, assets *AssetStore, ext Extractor, ref string) ([]float32, bool) {
	image, err := assets.Read(ref)
	if err != nil {
		log.Printf("embedding cache: skipping asset %s: %v", ref, err)
		return nil, false
	}

	locations, err := ext.LocateFaces(ctx, image)
	if err != nil {
		log.Printf("embedding cache: skipping asset %s: face detection failed: %v", ref, err)
		return nil, false
	}
	if len(locations) == 0 {
		log.Printf("embedding cache: skipping asset %s: no face found", ref)
		return nil, false
	}

	embeddings, err := ext.EncodeFaces(ctx, image, locations)
	if err != nil {
		log.Printf("embedding cache: skipping asset %s: encoding failed: %v", ref, err)
		return nil, false
	}
	if len(embeddings) == 0 {
		log.Printf("embedding cache: skipping asset %s: no embedding produced", ref)
		return nil, false
	}

	return embeddings[0], true
}

// Entries returns the current snapshot in insertion order. The returned
// slice is the published snapshot itself and must not be modified.
func (c *EmbeddingCache) Entries() []CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries
}

// IsEmpty reports whether the cache holds no entries.
func (c *EmbeddingCache) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries) == 0
}

// Len returns the number of cached entries.
func (c *EmbeddingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
