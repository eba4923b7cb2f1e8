// Package blobstore provides a key-to-JSON-blob persistence layer.
//
// Each store (comparison set, alerts, price history, watchlist, ASIN
// candidates) owns one key and performs full-collection read-modify-write.
// A missing or corrupt blob is indistinguishable from an empty one: Get
// reports ok=false and callers start from an empty collection.
package blobstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists one JSON blob per key.
type Store interface {
	// Get unmarshals the blob for key into v. Returns false when the key is
	// absent or the blob cannot be decoded; v is left untouched in that case.
	Get(key string, v any) bool

	// Put marshals v and writes it as the blob for key.
	Put(key string, v any) error

	// Delete removes the blob for key. Removing an absent key is a no-op.
	Delete(key string) error
}

// FileStore keeps each blob in its own file under a data directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the data directory if needed and returns a FileStore.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Get implements Store.
func (s *FileStore) Get(key string, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		// Corrupt blob: treated as empty state, never surfaced.
		return false
	}
	return true
}

// Put implements Store. The write goes through a temp file rename so a
// crash mid-write never leaves a half-written blob behind.
func (s *FileStore) Put(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

// Delete implements Store.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FileStore) path(key string) string {
	// Keys are internal constants, but sanitize anyway.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.dir, safe+".json")
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Get implements Store.
func (s *MemoryStore) Get(key string, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.blobs[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// Put implements Store.
func (s *MemoryStore) Put(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.blobs[key] = data
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, key)
	return nil
}

// Corrupt overwrites a key with invalid JSON. Test helper.
func (s *MemoryStore) Corrupt(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = []byte("{not json")
}
