// Package watchlist tracks products the user wants monitored for price
// changes, with a per-entry priority.
package watchlist

import (
	"sort"
	"time"

	"github.com/helmwise/helmwise-backend/internal/infrastructure/blobstore"
)

const storeKey = "watchlist"

// Priority levels, highest first in listings.
type Priority string

// Priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p Priority) bool {
	_, ok := priorityRank[p]
	return ok
}

// Entry is one watched product. Entries are created and removed only by
// explicit user action; there is no automatic expiry.
type Entry struct {
	ProductID     string     `json:"productId"`
	AddedAt       time.Time  `json:"addedAt"`
	LastCheckedAt *time.Time `json:"lastCheckedAt,omitempty"`
	Priority      Priority   `json:"priority"`
}

// Store manages the watchlist.
type Store struct {
	blobs blobstore.Store
	now   func() time.Time
}

// NewStore creates a watchlist store over the given blob storage.
func NewStore(blobs blobstore.Store) *Store {
	return &Store{blobs: blobs, now: time.Now}
}

// List returns entries ordered by priority, then oldest-added first.
func (s *Store) List() []Entry {
	var entries []Entry
	s.blobs.Get(storeKey, &entries)

	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := priorityRank[entries[i].Priority], priorityRank[entries[j].Priority]
		if ri != rj {
			return ri < rj
		}
		return entries[i].AddedAt.Before(entries[j].AddedAt)
	})
	return entries
}

// Add watches a product. Re-adding an already-watched product updates
// its priority instead of duplicating the entry. Unknown priorities are
// rejected.
func (s *Store) Add(productID string, priority Priority) bool {
	if !ValidPriority(priority) {
		return false
	}

	entries := s.raw()
	for i := range entries {
		if entries[i].ProductID == productID {
			entries[i].Priority = priority
			s.save(entries)
			return true
		}
	}

	entries = append(entries, Entry{
		ProductID: productID,
		AddedAt:   s.now(),
		Priority:  priority,
	})
	s.save(entries)
	return true
}

// Remove stops watching a product. Removing an unwatched product is a
// no-op.
func (s *Store) Remove(productID string) {
	entries := s.raw()
	out := entries[:0]
	for _, e := range entries {
		if e.ProductID != productID {
			out = append(out, e)
		}
	}
	s.save(out)
}

// Touch records that a watched product was just checked. Returns false
// when the product is not watched.
func (s *Store) Touch(productID string) bool {
	entries := s.raw()
	for i := range entries {
		if entries[i].ProductID == productID {
			now := s.now()
			entries[i].LastCheckedAt = &now
			s.save(entries)
			return true
		}
	}
	return false
}

func (s *Store) raw() []Entry {
	var entries []Entry
	s.blobs.Get(storeKey, &entries)
	return entries
}

func (s *Store) save(entries []Entry) {
	if entries == nil {
		entries = []Entry{}
	}
	_ = s.blobs.Put(storeKey, entries)
}
