// Package discovery maintains ASIN candidates per catalog product: who
// suggested an Amazon identifier for a helmet, how confident we are in
// it, and whether a human verified it.
package discovery

import (
	"regexp"
	"sort"
	"time"

	"github.com/helmwise/helmwise-backend/internal/infrastructure/blobstore"
)

const storeKey = "asin_candidates"

// Candidate sources.
const (
	SourceManual         = "manual"
	SourceScriptedSearch = "scripted_search"
	SourceUserSubmission = "user_submission"
	SourcePAAPI          = "paapi"
)

// userSubmissionConfidence is assigned to every accepted user submission.
const userSubmissionConfidence = 0.9

// bestUnverifiedFloor is the minimum confidence for an unverified
// candidate to be returned by Best.
const bestUnverifiedFloor = 0.8

// asinPattern matches a 10-character alphanumeric ASIN. Modern ASINs
// start with "B"; legacy ISBN-style identifiers start with a digit.
var asinPattern = regexp.MustCompile(`^(B[A-Z0-9]{9}|[0-9][A-Z0-9]{9})$`)

// ValidASIN reports whether s is a plausible ASIN.
func ValidASIN(s string) bool {
	return asinPattern.MatchString(s)
}

// Candidate is one proposed ASIN for a product.
type Candidate struct {
	ASIN       string     `json:"asin"`
	SourceURL  string     `json:"sourceUrl,omitempty"`
	Title      string     `json:"title,omitempty"`
	Confidence float64    `json:"confidence"`
	Source     string     `json:"source"`
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
	AddedAt    time.Time  `json:"addedAt"`
}

// Store manages the per-product candidate database.
type Store struct {
	blobs blobstore.Store
	now   func() time.Time
}

// NewStore creates a discovery store over the given blob storage.
func NewStore(blobs blobstore.Store) *Store {
	return &Store{blobs: blobs, now: time.Now}
}

// database is the full blob: candidate lists keyed by product id.
type database map[string][]Candidate

func (s *Store) load() database {
	db := database{}
	s.blobs.Get(storeKey, &db)
	return db
}

func (s *Store) save(db database) {
	_ = s.blobs.Put(storeKey, db)
}

// Candidates returns the product's candidates, verified first, then by
// descending confidence.
func (s *Store) Candidates(productID string) []Candidate {
	return s.load()[productID]
}

// AddCandidate inserts a candidate, or updates the existing one with the
// same ASIN, then re-ranks the product's list. Candidates with an
// invalid ASIN are rejected.
func (s *Store) AddCandidate(productID string, c Candidate) bool {
	if !ValidASIN(c.ASIN) {
		return false
	}
	if c.AddedAt.IsZero() {
		c.AddedAt = s.now()
	}

	db := s.load()
	list := db[productID]

	replaced := false
	for i := range list {
		if list[i].ASIN == c.ASIN {
			// Update in place, keeping the original verification state
			// unless the new candidate carries one.
			if !c.Verified && list[i].Verified {
				c.Verified = list[i].Verified
				c.VerifiedAt = list[i].VerifiedAt
			}
			c.AddedAt = list[i].AddedAt
			list[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, c)
	}

	rank(list)
	db[productID] = list
	s.save(db)
	return true
}

// rank orders candidates verified-first, then by descending confidence.
// Verified candidates outrank unverified ones regardless of score.
func rank(list []Candidate) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Verified != list[j].Verified {
			return list[i].Verified
		}
		return list[i].Confidence > list[j].Confidence
	})
}

// Best returns the product's best candidate: the highest-confidence
// verified one if any exist, otherwise the highest-confidence unverified
// one with confidence >= 0.8, otherwise none.
func (s *Store) Best(productID string) (Candidate, bool) {
	list := s.Candidates(productID)
	if len(list) == 0 {
		return Candidate{}, false
	}

	// Lists are kept ranked, so the head is the best of its class.
	head := list[0]
	if head.Verified {
		return head, true
	}
	if head.Confidence >= bestUnverifiedFloor {
		return head, true
	}
	return Candidate{}, false
}

// Verify flips the verified flag on a matching candidate and re-ranks.
// Returns false when no candidate matches.
func (s *Store) Verify(productID, asin string, verified bool) bool {
	db := s.load()
	list := db[productID]

	for i := range list {
		if list[i].ASIN != asin {
			continue
		}
		list[i].Verified = verified
		if verified {
			now := s.now()
			list[i].VerifiedAt = &now
		} else {
			list[i].VerifiedAt = nil
		}
		rank(list)
		db[productID] = list
		s.save(db)
		return true
	}
	return false
}

// SubmitUserCandidate validates and stores a user-submitted ASIN with a
// fixed high confidence. Invalid identifiers are rejected.
func (s *Store) SubmitUserCandidate(productID, asin, sourceURL, title string) bool {
	if !ValidASIN(asin) {
		return false
	}
	return s.AddCandidate(productID, Candidate{
		ASIN:       asin,
		SourceURL:  sourceURL,
		Title:      title,
		Confidence: userSubmissionConfidence,
		Source:     SourceUserSubmission,
	})
}

// CoverageEntry summarizes discovery state for one product.
type CoverageEntry struct {
	ProductID      string  `json:"productId"`
	CandidateCount int     `json:"candidateCount"`
	BestASIN       string  `json:"bestAsin,omitempty"`
	BestConfidence float64 `json:"bestConfidence,omitempty"`
	Verified       bool    `json:"verified"`
}

// Coverage reports the best-candidate state for every product that has
// candidates, sorted by product id for stable output.
func (s *Store) Coverage() []CoverageEntry {
	db := s.load()

	ids := make([]string, 0, len(db))
	for id := range db {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]CoverageEntry, 0, len(ids))
	for _, id := range ids {
		entry := CoverageEntry{ProductID: id, CandidateCount: len(db[id])}
		if best, ok := s.Best(id); ok {
			entry.BestASIN = best.ASIN
			entry.BestConfidence = best.Confidence
			entry.Verified = best.Verified
		}
		out = append(out, entry)
	}
	return out
}
