package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// metadataDocument is the on-disk shape of the metadata file.
type metadataDocument struct {
	Users map[string]*UserRecord `json:"users"`
}

// RecordStore is the durable mapping from user id to UserRecord, backed by
// a single JSON metadata document. It is not safe for concurrent use on its
// own; the Registry serializes all mutating access.
type RecordStore struct {
	path  string
	users map[string]*UserRecord
	order []string // user ids in stored order
}

// NewRecordStore creates a store backed by the given metadata file path.
// Call Load before use.
func NewRecordStore(path string) *RecordStore {
	return &RecordStore{
		path:  path,
		users: make(map[string]*UserRecord),
	}
}

// Load reads the metadata document into memory. A missing file initializes
// an empty store; an unreadable or malformed file is a corruption error and
// must not be silently reset, since that would discard every enrollment.
func (s *RecordStore) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.users = make(map[string]*UserRecord)
		s.order = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrStorageCorruption, s.path, err)
	}

	var doc metadataDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrStorageCorruption, s.path, err)
	}
	if doc.Users == nil {
		doc.Users = make(map[string]*UserRecord)
	}
	for id, rec := range doc.Users {
		if rec == nil {
			return fmt.Errorf("%w: null record for user %s", ErrStorageCorruption, id)
		}
		rec.UserID = id
	}

	// JSON objects carry no order, so stored order is reconstructed by id.
	// Ids are timestamp-prefixed, which keeps the listing chronological.
	order := make([]string, 0, len(doc.Users))
	for id := range doc.Users {
		order = append(order, id)
	}
	sort.Strings(order)

	s.users = doc.Users
	s.order = order
	return nil
}

// Save atomically persists the full current state. The document is written
// to a temp file in the same directory and renamed over the target so a
// concurrent reader never observes a partial write.
func (s *RecordStore) Save() error {
	doc := metadataDocument{Users: s.users}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling metadata: %v", ErrStorageIO, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrStorageIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".metadata-*.json")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrStorageIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: writing metadata: %v", ErrStorageIO, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file: %v", ErrStorageIO, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: replacing %s: %v", ErrStorageIO, s.path, err)
	}
	return nil
}

// newUserID generates a unique user id. The timestamp prefix keeps ids
// human-readable and chronologically sortable like the historical format;
// the uuid suffix guarantees uniqueness under same-second enrollments.
func newUserID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("user_%s_%s", now.Format("20060102_150405"), suffix)
}

// Create allocates a new user record with no assets. The record does not
// satisfy the never-empty-images invariant until the caller appends at
// least one asset; Registry.Enroll treats create+append as one unit and
// rolls back on failure.
func (s *RecordStore) Create(displayName string, attributes map[string]string) string {
	now := time.Now()
	id := newUserID(now)

	attrs := make(map[string]string, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}

	s.users[id] = &UserRecord{
		UserID:      id,
		DisplayName: displayName,
		CreatedAt:   now,
		ImageRefs:   []string{},
		Attributes:  attrs,
	}
	s.order = append(s.order, id)
	return id
}

// AppendAsset appends an asset reference to the user's image list.
func (s *RecordStore) AppendAsset(userID, assetRef string) error {
	rec, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	rec.ImageRefs = append(rec.ImageRefs, assetRef)
	return nil
}

// Remove deletes the record. Coordinating asset deletion is the caller's
// responsibility (see Registry.Remove).
func (s *RecordStore) Remove(userID string) error {
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	delete(s.users, userID)
	for i, id := range s.order {
		if id == userID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// UpdateAttributes merges the given keys into the user's attribute map.
func (s *RecordStore) UpdateAttributes(userID string, partial map[string]string) error {
	rec, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	if rec.Attributes == nil {
		rec.Attributes = make(map[string]string, len(partial))
	}
	for k, v := range partial {
		rec.Attributes[k] = v
	}
	return nil
}

// Get returns a copy of the record, or nil if the user id is unknown.
func (s *RecordStore) Get(userID string) *UserRecord {
	rec, ok := s.users[userID]
	if !ok {
		return nil
	}
	return rec.Clone()
}

// ListAll returns (user id, display name) pairs in stored order.
func (s *RecordStore) ListAll() []ListEntry {
	entries := make([]ListEntry, 0, len(s.order))
	for _, id := range s.order {
		if rec, ok := s.users[id]; ok {
			entries = append(entries, ListEntry{UserID: id, DisplayName: rec.DisplayName})
		}
	}
	return entries
}

// Count returns the number of enrolled users.
func (s *RecordStore) Count() int {
	return len(s.users)
}
