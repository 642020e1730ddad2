package registry

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
)

// DefaultThreshold is the maximum embedding distance below which two
// embeddings are considered the same identity.
const DefaultThreshold = 0.4

// Registry composes the record store, asset store and embedding cache and
// exposes the enrollment, identification and lifecycle operations.
//
// Mutating operations are serialized by an internal mutex, including the
// durable write and the cache rebuild, so the metadata document and the
// asset tree never drift apart mid-operation. Identify is read-only
// against the published cache snapshot and may run concurrently.
type Registry struct {
	mu        sync.Mutex
	records   *RecordStore
	assets    *AssetStore
	cache     *EmbeddingCache
	index     *SimilarIndex
	extractor Extractor
	threshold float64
}

// New loads durable state and builds the initial embedding cache.
// Corrupted metadata fails construction; a missing metadata file starts an
// empty registry.
func New(metadataPath, assetsRoot string, ext Extractor, threshold float64, maxNeighbors int) (*Registry, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	r := &Registry{
		records:   NewRecordStore(metadataPath),
		assets:    NewAssetStore(assetsRoot),
		cache:     NewEmbeddingCache(),
		index:     NewSimilarIndex(maxNeighbors),
		extractor: ext,
		threshold: threshold,
	}

	if err := r.records.Load(); err != nil {
		return nil, err
	}

	r.rebuild(context.Background())
	return r, nil
}

// Threshold returns the active match threshold.
func (r *Registry) Threshold() float64 {
	return r.threshold
}

// CacheLen returns the number of cached embeddings.
func (r *Registry) CacheLen() int {
	return r.cache.Len()
}

// rebuild refreshes the embedding cache and the similarity index from
// durable state. Callers mutating state must hold r.mu.
func (r *Registry) rebuild(ctx context.Context) {
	if skipped := r.cache.Rebuild(ctx, r.records, r.assets, r.extractor); skipped > 0 {
		log.Printf("registry: cache rebuilt, %d asset(s) skipped", skipped)
	}
	r.index.Build(r.cache.Entries())
}

// extractSingle runs the detection and encoding preconditions shared by
// Enroll and Augment and returns the first face embedding.
func (r *Registry) extractSingle(ctx context.Context, image []byte) ([]float32, error) {
	locations, err := r.extractor.LocateFaces(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFaceDetected, err)
	}
	if len(locations) == 0 {
		return nil, ErrNoFaceDetected
	}

	embeddings, err := r.extractor.EncodeFaces(ctx, image, locations)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	if len(embeddings) == 0 {
		return nil, ErrEncodingFailed
	}
	return embeddings[0], nil
}

// Enroll registers a new identity from a raw image. Create, asset store
// and append form one logical unit: any failure after the record is
// created rolls the record back so no user ever persists without an image.
func (r *Registry) Enroll(ctx context.Context, image []byte, displayName string, attributes map[string]string) (string, error) {
	if _, err := r.extractSingle(ctx, image); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	userID := r.records.Create(displayName, attributes)

	assetRef, err := r.assets.Store(userID, image)
	if err != nil {
		_ = r.records.Remove(userID)
		return "", fmt.Errorf("enrolling %q: %w", displayName, err)
	}

	if err := r.records.AppendAsset(userID, assetRef); err != nil {
		// Unreachable in practice: the record was just created.
		_ = r.records.Remove(userID)
		_ = r.assets.Delete(assetRef)
		_ = r.assets.DeleteContainer(userID)
		return "", fmt.Errorf("enrolling %q: %w", displayName, err)
	}

	if err := r.records.Save(); err != nil {
		_ = r.records.Remove(userID)
		_ = r.assets.Delete(assetRef)
		_ = r.assets.DeleteContainer(userID)
		return "", fmt.Errorf("enrolling %q: %w", displayName, err)
	}

	r.rebuild(ctx)
	return userID, nil
}

// Augment adds another sample image to an existing user.
func (r *Registry) Augment(ctx context.Context, userID string, image []byte) error {
	if _, err := r.extractSingle(ctx, image); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.records.Get(userID) == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, userID)
	}

	assetRef, err := r.assets.Store(userID, image)
	if err != nil {
		return fmt.Errorf("augmenting %s: %w", userID, err)
	}

	if err := r.records.AppendAsset(userID, assetRef); err != nil {
		_ = r.assets.Delete(assetRef)
		return fmt.Errorf("augmenting %s: %w", userID, err)
	}

	if err := r.records.Save(); err != nil {
		r.dropLastAsset(userID)
		_ = r.assets.Delete(assetRef)
		return fmt.Errorf("augmenting %s: %w", userID, err)
	}

	r.rebuild(ctx)
	return nil
}

// dropLastAsset undoes an in-memory AppendAsset after a failed save.
func (r *Registry) dropLastAsset(userID string) {
	rec, ok := r.records.users[userID]
	if ok && len(rec.ImageRefs) > 0 {
		rec.ImageRefs = rec.ImageRefs[:len(rec.ImageRefs)-1]
	}
}

// Identify classifies every face located in the image against the cache.
// Each located face yields one Match; faces matching no enrolled identity
// within the threshold are reported as Unrecognized with confidence 0.
func (r *Registry) Identify(ctx context.Context, image []byte) ([]Match, error) {
	locations, err := r.extractor.LocateFaces(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("locating faces: %w", err)
	}
	if len(locations) == 0 {
		return []Match{}, nil
	}

	embeddings, err := r.extractor.EncodeFaces(ctx, image, locations)
	if err != nil {
		return nil, fmt.Errorf("encoding faces: %w", err)
	}
	if len(embeddings) != len(locations) {
		return nil, fmt.Errorf("extractor returned %d embeddings for %d locations", len(embeddings), len(locations))
	}

	entries := r.cache.Entries()

	matches := make([]Match, 0, len(locations))
	for i, loc := range locations {
		matches = append(matches, r.matchOne(entries, loc, embeddings[i]))
	}
	return matches, nil
}

// matchOne runs the linear nearest-neighbor scan for a single face.
// Enrollment sets are small, so an O(N) exact scan is intentional. Ties at
// the minimum distance resolve to the first cache entry in insertion order.
func (r *Registry) matchOne(entries []CacheEntry, loc BoundingBox, embedding []float32) Match {
	match := Match{
		BBox:        loc,
		DisplayName: Unrecognized,
		Distance:    math.Inf(1),
	}

	best := -1
	dMin := math.Inf(1)
	for i := range entries {
		if d := EuclideanDistance(embedding, entries[i].Embedding); d < dMin {
			dMin = d
			best = i
		}
	}

	if best >= 0 && dMin < r.threshold {
		match.UserID = entries[best].UserID
		match.DisplayName = entries[best].DisplayName
		match.Confidence = Confidence(dMin)
		match.Distance = dMin
		match.Recognized = true
	}
	return match
}

// Remove deletes a user, every owned asset and the per-user directory,
// then rebuilds the cache. Already-missing asset files are tolerated;
// failing to delete an existing file surfaces as a storage error.
func (r *Registry) Remove(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.records.Get(userID)
	if rec == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, userID)
	}

	for _, ref := range rec.ImageRefs {
		if err := r.assets.Delete(ref); err != nil {
			return fmt.Errorf("removing %s: %w", userID, err)
		}
	}
	if err := r.assets.DeleteContainer(userID); err != nil {
		return fmt.Errorf("removing %s: %w", userID, err)
	}

	if err := r.records.Remove(userID); err != nil {
		return err
	}
	if err := r.records.Save(); err != nil {
		return fmt.Errorf("removing %s: %w", userID, err)
	}

	r.rebuild(ctx)
	return nil
}

// UpdateAttributes merges attribute keys into the user's record.
func (r *Registry) UpdateAttributes(userID string, partial map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.records.UpdateAttributes(userID, partial); err != nil {
		return err
	}
	if err := r.records.Save(); err != nil {
		return fmt.Errorf("updating attributes of %s: %w", userID, err)
	}
	return nil
}

// Get returns the user's record.
func (r *Registry) Get(userID string) (*UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.records.Get(userID)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	return rec, nil
}

// ListAll returns (user id, display name) pairs in stored order.
func (r *Registry) ListAll() []ListEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records.ListAll()
}

// SearchByName returns users whose normalized display name contains the
// normalized query. Matching is case- and diacritic-insensitive.
func (r *Registry) SearchByName(query string) []ListEntry {
	normalized := NormalizeDisplayName(query)

	var results []ListEntry
	for _, entry := range r.ListAll() {
		if normalized == "" || strings.Contains(NormalizeDisplayName(entry.DisplayName), normalized) {
			results = append(results, entry)
		}
	}
	return results
}

// FindSimilar returns the k enrolled faces nearest to the first face found
// in the probe image, using the approximate index.
func (r *Registry) FindSimilar(ctx context.Context, image []byte, k int) ([]SimilarFace, error) {
	embedding, err := r.extractSingle(ctx, image)
	if err != nil {
		return nil, err
	}
	return r.index.Search(embedding, k), nil
}

// ReadAsset returns the raw bytes of one of the user's stored images.
func (r *Registry) ReadAsset(userID, assetRef string) ([]byte, error) {
	rec, err := r.Get(userID)
	if err != nil {
		return nil, err
	}
	for _, ref := range rec.ImageRefs {
		if ref == assetRef {
			return r.assets.Read(ref)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAssetMissing, assetRef)
}

// Reindex rebuilds the embedding cache and similarity index from scratch,
// reporting per-asset progress. Returns the number of skipped assets.
func (r *Registry) Reindex(ctx context.Context, onAsset func()) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	skipped := r.cache.RebuildWithProgress(ctx, r.records, r.assets, r.extractor, onAsset)
	r.index.Build(r.cache.Entries())
	return skipped
}

// AssetCount returns the total number of asset references across all users.
func (r *Registry) AssetCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, entry := range r.records.ListAll() {
		if rec := r.records.Get(entry.UserID); rec != nil {
			total += len(rec.ImageRefs)
		}
	}
	return total
}
