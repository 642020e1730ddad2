package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssetStore persists raw image files under one directory per user.
// Asset references are paths relative to the store root, so the metadata
// document stays valid when the data directory moves.
type AssetStore struct {
	root string
}

// NewAssetStore creates a store rooted at the given directory.
func NewAssetStore(root string) *AssetStore {
	return &AssetStore{root: root}
}

// Root returns the store's root directory.
func (s *AssetStore) Root() string {
	return s.root
}

// resolve turns an asset reference into an absolute path.
func (s *AssetStore) resolve(assetRef string) string {
	return filepath.Join(s.root, filepath.FromSlash(assetRef))
}

// Store persists image bytes under the user's directory and returns the
// asset reference. File names combine a timestamp with a uuid suffix so
// rapid consecutive captures cannot collide.
func (s *AssetStore) Store(userID string, image []byte) (string, error) {
	dir := filepath.Join(s.root, userID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrStorageIO, dir, err)
	}

	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	name := fmt.Sprintf("%s_%s.jpg", time.Now().Format("20060102_150405"), suffix)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, image, 0o640); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", ErrStorageIO, path, err)
	}
	return filepath.ToSlash(filepath.Join(userID, name)), nil
}

// Read returns the raw image bytes for an asset reference.
func (s *AssetStore) Read(assetRef string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(assetRef))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrAssetMissing, assetRef)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStorageIO, assetRef, err)
	}
	return data, nil
}

// Delete removes the physical file. Deleting an already-missing asset is
// not an error: durable metadata may legitimately drift from the
// filesystem and cleanup must tolerate that.
func (s *AssetStore) Delete(assetRef string) error {
	err := os.Remove(s.resolve(assetRef))
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return fmt.Errorf("%w: deleting %s: %v", ErrStorageIO, assetRef, err)
}

// DeleteContainer removes the per-user directory once it is empty.
// A non-empty directory fails loudly: it signals an upstream logic error,
// since all assets should have been deleted first.
func (s *AssetStore) DeleteContainer(userID string) error {
	dir := filepath.Join(s.root, userID)
	err := os.Remove(dir)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return fmt.Errorf("%w: removing directory %s: %v", ErrStorageIO, userID, err)
}
