// Package compare maintains the user's comparison set: an ordered,
// bounded collection of catalog products selected for side-by-side
// comparison.
package compare

import (
	"sort"
	"strings"
	"time"

	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/blobstore"
)

// MaxEntries bounds the comparison set. Adding beyond the cap evicts
// the oldest entry first (FIFO).
const MaxEntries = 4

const storeKey = "comparison"

// Entry is one comparison selection.
type Entry struct {
	ProductID string    `json:"productId"`
	AddedAt   time.Time `json:"addedAt"`
	Source    string    `json:"source"`
}

// Store manages the comparison set. Construct one per caller; there are
// no process-wide singletons.
type Store struct {
	blobs blobstore.Store
	cat   *catalog.Catalog
	now   func() time.Time
}

// NewStore creates a comparison store over the given blob storage.
func NewStore(blobs blobstore.Store, cat *catalog.Catalog) *Store {
	return &Store{blobs: blobs, cat: cat, now: time.Now}
}

// List returns the current entries in insertion order.
func (s *Store) List() []Entry {
	var entries []Entry
	s.blobs.Get(storeKey, &entries)
	return entries
}

// Products resolves the current entries against the catalog, dropping
// entries whose product no longer exists.
func (s *Store) Products() []catalog.Product {
	entries := s.List()
	out := make([]catalog.Product, 0, len(entries))
	for _, e := range entries {
		if p, ok := s.cat.ByID(e.ProductID); ok {
			out = append(out, p)
		}
	}
	return out
}

// Add inserts a product into the comparison set and returns the updated
// ordered list. Adding an already-present product is a no-op; adding at
// capacity evicts the oldest entry.
func (s *Store) Add(p catalog.Product, source string) []Entry {
	entries := s.List()

	for _, e := range entries {
		if e.ProductID == p.ID {
			return entries
		}
	}

	if len(entries) >= MaxEntries {
		entries = entries[len(entries)-MaxEntries+1:]
	}

	entries = append(entries, Entry{
		ProductID: p.ID,
		AddedAt:   s.now(),
		Source:    source,
	})

	s.save(entries)
	return entries
}

// Remove drops the matching entry if present. Removing an absent
// product is a no-op.
func (s *Store) Remove(productID string) []Entry {
	entries := s.List()
	out := entries[:0]
	for _, e := range entries {
		if e.ProductID != productID {
			out = append(out, e)
		}
	}
	s.save(out)
	return out
}

// Clear empties the comparison set.
func (s *Store) Clear() {
	s.save(nil)
}

func (s *Store) save(entries []Entry) {
	if entries == nil {
		entries = []Entry{}
	}
	// Best effort: a failed write leaves the previous state, which the
	// caller recovers from by repeating the action.
	_ = s.blobs.Put(storeKey, entries)
}

// Analysis holds derived extrema over a comparison set.
type Analysis struct {
	Safest      catalog.Product `json:"safest"`
	Cheapest    catalog.Product `json:"cheapest"`
	BestValue   catalog.Product `json:"bestValue"`
	MostPopular catalog.Product `json:"mostPopular"`
	Budget      BudgetPicks     `json:"budget"`
}

// BudgetPicks are price-banded recommendations.
type BudgetPicks struct {
	Cheapest catalog.Product `json:"cheapest"`
	Premium  catalog.Product `json:"premium"`
	MidRange catalog.Product `json:"midRange"`
}

// Analyze computes extrema over the current comparison set. Returns nil
// when fewer than two products are selected.
func (s *Store) Analyze() *Analysis {
	return Analyze(s.Products())
}

// Analyze computes derived extrema over the given products. Returns nil
// for fewer than two products.
func Analyze(products []catalog.Product) *Analysis {
	if len(products) < 2 {
		return nil
	}

	a := &Analysis{
		Safest:      products[0],
		Cheapest:    products[0],
		BestValue:   products[0],
		MostPopular: products[0],
	}

	for _, p := range products[1:] {
		if p.SafetyScore < a.Safest.SafetyScore {
			a.Safest = p
		}
		if p.AvgPrice < a.Cheapest.AvgPrice {
			a.Cheapest = p
		}
		if valueRatio(p) < valueRatio(a.BestValue) {
			a.BestValue = p
		}
		if p.StarRating > a.MostPopular.StarRating {
			a.MostPopular = p
		}
	}

	a.Budget = budgetPicks(products)
	return a
}

// budgetPicks picks cheapest, most expensive, and the safety-median product.
func budgetPicks(products []catalog.Product) BudgetPicks {
	byPrice := make([]catalog.Product, len(products))
	copy(byPrice, products)
	sort.SliceStable(byPrice, func(i, j int) bool { return byPrice[i].AvgPrice < byPrice[j].AvgPrice })

	bySafety := make([]catalog.Product, len(products))
	copy(bySafety, products)
	sort.SliceStable(bySafety, func(i, j int) bool { return bySafety[i].SafetyScore < bySafety[j].SafetyScore })

	return BudgetPicks{
		Cheapest: byPrice[0],
		Premium:  byPrice[len(byPrice)-1],
		MidRange: bySafety[len(bySafety)/2],
	}
}

// valueRatio is safety score per dollar; lower is better. Zero-price
// products never win best value.
func valueRatio(p catalog.Product) float64 {
	if p.AvgPrice <= 0 {
		return 1e9
	}
	return p.SafetyScore / p.AvgPrice
}

// Metrics summarizes a comparison set.
type Metrics struct {
	SafetyScore Summary        `json:"safetyScore"`
	Price       Summary        `json:"price"`
	StarRating  Summary        `json:"starRating"`
	Categories  map[string]int `json:"categories"`
	Brands      map[string]int `json:"brands"`
	MIPSCount   int            `json:"mipsCount"`
}

// Summary is a min/max/average triple.
type Summary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Metrics computes summary statistics over the current comparison set.
func (s *Store) Metrics() Metrics {
	return ComputeMetrics(s.Products())
}

// ComputeMetrics computes summary statistics over the given products.
func ComputeMetrics(products []catalog.Product) Metrics {
	m := Metrics{
		Categories: make(map[string]int),
		Brands:     make(map[string]int),
	}
	if len(products) == 0 {
		return m
	}

	m.SafetyScore = summarize(products, func(p catalog.Product) float64 { return p.SafetyScore })
	m.Price = summarize(products, func(p catalog.Product) float64 { return p.AvgPrice })
	m.StarRating = summarize(products, func(p catalog.Product) float64 { return p.StarRating })

	for _, p := range products {
		m.Categories[p.Category]++
		m.Brands[p.Brand]++
		if strings.Contains(strings.ToUpper(p.Name), "MIPS") {
			m.MIPSCount++
		}
	}

	return m
}

func summarize(products []catalog.Product, f func(catalog.Product) float64) Summary {
	s := Summary{Min: f(products[0]), Max: f(products[0])}
	var sum float64
	for _, p := range products {
		v := f(p)
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
	}
	s.Avg = sum / float64(len(products))
	return s
}
