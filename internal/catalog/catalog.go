// Package catalog holds the static helmet product catalog.
//
// Products are loaded once from an embedded seed file and are immutable
// afterwards. Safety scores follow the Virginia Tech convention: lower
// is safer.
package catalog

import (
	_ "embed"
	"encoding/json"
	"sort"
	"strings"
)

//go:embed seed/products.json
var seedJSON []byte

// Product is one catalog entry.
type Product struct {
	ID             string  `json:"id"`
	Brand          string  `json:"brand"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	SafetyScore    float64 `json:"safetyScore"`
	StarRating     float64 `json:"starRating"`
	MinPrice       float64 `json:"minPrice"`
	AvgPrice       float64 `json:"avgPrice"`
	MaxPrice       float64 `json:"maxPrice"`
	ListingCount   int     `json:"listingCount"`
	AvailableCount int     `json:"availableCount"`
	ImageURL       string  `json:"imageUrl,omitempty"`
	AmazonURL      string  `json:"amazonUrl,omitempty"`
}

// Price band boundaries in USD (avg price).
const (
	budgetCeiling  = 75.0
	premiumFloor   = 150.0
	BandBudget     = "budget"
	BandMidRange   = "mid_range"
	BandPremium    = "premium"
)

// PriceBand classifies a product by its average price.
func (p Product) PriceBand() string {
	switch {
	case p.AvgPrice < budgetCeiling:
		return BandBudget
	case p.AvgPrice > premiumFloor:
		return BandPremium
	default:
		return BandMidRange
	}
}

// Catalog is the immutable product collection.
type Catalog struct {
	products []Product
	byID     map[string]Product
}

// Load parses the embedded seed. Called once at startup.
func Load() (*Catalog, error) {
	return Parse(seedJSON)
}

// Parse builds a Catalog from raw seed JSON. Exposed for tests.
func Parse(data []byte) (*Catalog, error) {
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}

	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	return &Catalog{products: products, byID: byID}, nil
}

// All returns a copy of every product.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// ByID looks up a product by identifier.
func (c *Catalog) ByID(id string) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Filter describes catalog filtering criteria. Zero values match everything.
type Filter struct {
	Brand     string
	Category  string
	PriceBand string
}

// Sort keys accepted by Select.
const (
	SortSafety = "safety"
	SortPrice  = "price"
	SortRating = "rating"
	SortValue  = "value"
)

// Select returns products matching the filter, ordered by sortKey.
func (c *Catalog) Select(f Filter, sortKey string) []Product {
	var out []Product
	for _, p := range c.products {
		if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.PriceBand != "" && p.PriceBand() != f.PriceBand {
			continue
		}
		out = append(out, p)
	}

	switch sortKey {
	case SortSafety:
		sort.SliceStable(out, func(i, j int) bool { return out[i].SafetyScore < out[j].SafetyScore })
	case SortPrice:
		sort.SliceStable(out, func(i, j int) bool { return out[i].AvgPrice < out[j].AvgPrice })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].StarRating > out[j].StarRating })
	case SortValue:
		// Lower safety score per dollar is the better value.
		sort.SliceStable(out, func(i, j int) bool {
			return valueRatio(out[i]) < valueRatio(out[j])
		})
	}

	return out
}

// valueRatio is safety score per dollar; zero-price products sort last.
func valueRatio(p Product) float64 {
	if p.AvgPrice <= 0 {
		return 1e9
	}
	return p.SafetyScore / p.AvgPrice
}
