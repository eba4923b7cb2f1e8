package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/blobstore"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(`[
		{"id":"a","brand":"Giro","name":"Giro Register MIPS","category":"road","safetyScore":13.4,"starRating":4.6,"avgPrice":59.99},
		{"id":"b","brand":"Bell","name":"Bell Z20 MIPS","category":"road","safetyScore":8.9,"starRating":4.5,"avgPrice":189.95},
		{"id":"c","brand":"Smith","name":"Smith Forefront 2","category":"mountain","safetyScore":12.1,"starRating":4.5,"avgPrice":189.95},
		{"id":"d","brand":"Thousand","name":"Thousand Heritage","category":"commuter","safetyScore":16.8,"starRating":4.8,"avgPrice":99.00},
		{"id":"e","brand":"Schwinn","name":"Schwinn Thrasher","category":"commuter","safetyScore":21.3,"starRating":4.4,"avgPrice":27.99}
	]`))
	require.NoError(t, err)
	return c
}

func newTestStore(t *testing.T) (*Store, *catalog.Catalog) {
	t.Helper()
	cat := testCatalog(t)
	return NewStore(blobstore.NewMemoryStore(), cat), cat
}

func mustProduct(t *testing.T, cat *catalog.Catalog, id string) catalog.Product {
	t.Helper()
	p, ok := cat.ByID(id)
	require.True(t, ok)
	return p
}

func TestAdd_DuplicateIsNoOp(t *testing.T) {
	store, cat := newTestStore(t)
	a := mustProduct(t, cat, "a")

	store.Add(a, "grid")
	entries := store.Add(a, "grid")

	assert.Len(t, entries, 1)
}

func TestAdd_NeverExceedsCap(t *testing.T) {
	store, cat := newTestStore(t)

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		entries := store.Add(mustProduct(t, cat, id), "grid")
		assert.LessOrEqual(t, len(entries), MaxEntries)

		seen := map[string]bool{}
		for _, e := range entries {
			assert.False(t, seen[e.ProductID], "duplicate product %s", e.ProductID)
			seen[e.ProductID] = true
		}
	}
}

func TestAdd_FIFOEviction(t *testing.T) {
	store, cat := newTestStore(t)

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		store.Add(mustProduct(t, cat, id), "grid")
	}

	entries := store.List()
	require.Len(t, entries, 4)
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.ProductID
	}
	assert.Equal(t, []string{"b", "c", "d", "e"}, got)
}

func TestRemoveAndClear(t *testing.T) {
	store, cat := newTestStore(t)
	store.Add(mustProduct(t, cat, "a"), "grid")
	store.Add(mustProduct(t, cat, "b"), "grid")

	entries := store.Remove("a")
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].ProductID)

	// Absent product: no error, no change
	entries = store.Remove("zzz")
	assert.Len(t, entries, 1)

	store.Clear()
	assert.Empty(t, store.List())
}

func TestList_CorruptStorageTreatedAsEmpty(t *testing.T) {
	blobs := blobstore.NewMemoryStore()
	store := NewStore(blobs, testCatalog(t))

	store.Add(catalog.Product{ID: "a"}, "grid")
	blobs.Corrupt("comparison")

	assert.Empty(t, store.List())
}

func TestAnalyze_RequiresTwoProducts(t *testing.T) {
	store, cat := newTestStore(t)
	assert.Nil(t, store.Analyze())

	store.Add(mustProduct(t, cat, "a"), "grid")
	assert.Nil(t, store.Analyze())

	store.Add(mustProduct(t, cat, "b"), "grid")
	assert.NotNil(t, store.Analyze())
}

func TestAnalyze_Extrema(t *testing.T) {
	cat := testCatalog(t)
	products := []catalog.Product{
		mustProduct(t, cat, "a"),
		mustProduct(t, cat, "b"),
		mustProduct(t, cat, "d"),
		mustProduct(t, cat, "e"),
	}

	a := Analyze(products)
	require.NotNil(t, a)

	// Safest has the lowest safety score of the set
	for _, p := range products {
		assert.LessOrEqual(t, a.Safest.SafetyScore, p.SafetyScore)
	}
	assert.Equal(t, "b", a.Safest.ID)
	assert.Equal(t, "e", a.Cheapest.ID)
	assert.Equal(t, "d", a.MostPopular.ID)

	assert.Equal(t, "e", a.Budget.Cheapest.ID)
	assert.Equal(t, "b", a.Budget.Premium.ID)
}

func TestAnalyze_BestValueIgnoresZeroPrice(t *testing.T) {
	a := Analyze([]catalog.Product{
		{ID: "free", SafetyScore: 1, AvgPrice: 0},
		{ID: "paid", SafetyScore: 10, AvgPrice: 100},
	})
	require.NotNil(t, a)
	assert.Equal(t, "paid", a.BestValue.ID)
}

func TestComputeMetrics(t *testing.T) {
	cat := testCatalog(t)
	m := ComputeMetrics([]catalog.Product{
		mustProduct(t, cat, "a"),
		mustProduct(t, cat, "b"),
		mustProduct(t, cat, "e"),
	})

	assert.Equal(t, 8.9, m.SafetyScore.Min)
	assert.Equal(t, 21.3, m.SafetyScore.Max)
	assert.Equal(t, 27.99, m.Price.Min)
	assert.Equal(t, 189.95, m.Price.Max)
	assert.Equal(t, 2, m.Categories["road"])
	assert.Equal(t, 1, m.Brands["Schwinn"])
	assert.Equal(t, 2, m.MIPSCount)
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil)
	assert.Zero(t, m.SafetyScore.Avg)
	assert.Empty(t, m.Categories)
	assert.Zero(t, m.MIPSCount)
}
