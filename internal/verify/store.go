package verify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// OrganizationStore is the durable tier for approved organization URLs.
// It survives process restarts, unlike the Manager's in-memory state.
type OrganizationStore interface {
	// VerifiedURL returns the stored URL for orgKey, or "" when unknown.
	VerifiedURL(orgKey string) string
	// Add records an approved URL. Re-adding an existing organization
	// updates the record instead of duplicating it.
	Add(orgKey, url, verifiedBy, notes string) error
	// Len reports how many organizations are stored.
	Len() int
}

// storeRecord is the on-disk shape of one verified organization.
type storeRecord struct {
	URL        string    `json:"url"`
	VerifiedBy string    `json:"verified_by"`
	VerifiedAt time.Time `json:"verified_at"`
	Notes      string    `json:"notes,omitempty"`
	UsageCount int       `json:"usage_count"`
}

// FileStore keeps verified organizations in a single JSON file. Reads
// bump a usage counter so operators can see which entries earn their keep.
type FileStore struct {
	mu      sync.Mutex
	path    string
	records map[string]*storeRecord
}

// NewFileStore loads (or initializes) the store at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, records: make(map[string]*storeRecord)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read organization store: %w", err)
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("parse organization store %s: %w", path, err)
	}
	return s, nil
}

func (s *FileStore) VerifiedURL(orgKey string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[orgKey]
	if !ok {
		return ""
	}
	rec.UsageCount++
	// Counter persistence is best effort. A lost increment only skews
	// usage stats, not resolution.
	_ = s.flushLocked()
	return rec.URL
}

func (s *FileStore) Add(orgKey, url, verifiedBy, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[orgKey]
	if !ok {
		rec = &storeRecord{}
		s.records[orgKey] = rec
	}
	rec.URL = url
	rec.VerifiedBy = verifiedBy
	rec.VerifiedAt = time.Now().UTC()
	rec.Notes = notes
	return s.flushLocked()
}

func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *FileStore) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode organization store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write organization store: %w", err)
	}
	return nil
}
