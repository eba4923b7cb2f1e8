package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Seed(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 0)

	p, ok := c.ByID("giro-register-mips")
	require.True(t, ok)
	assert.Equal(t, "Giro", p.Brand)
	assert.Equal(t, "road", p.Category)
}

func TestPriceBand(t *testing.T) {
	assert.Equal(t, BandBudget, Product{AvgPrice: 27.99}.PriceBand())
	assert.Equal(t, BandMidRange, Product{AvgPrice: 75}.PriceBand())
	assert.Equal(t, BandMidRange, Product{AvgPrice: 150}.PriceBand())
	assert.Equal(t, BandPremium, Product{AvgPrice: 189.95}.PriceBand())
}

func TestSelect_FilterAndSort(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	giro := c.Select(Filter{Brand: "giro"}, SortPrice)
	require.NotEmpty(t, giro)
	for _, p := range giro {
		assert.Equal(t, "Giro", p.Brand)
	}
	for i := 1; i < len(giro); i++ {
		assert.LessOrEqual(t, giro[i-1].AvgPrice, giro[i].AvgPrice)
	}

	bySafety := c.Select(Filter{}, SortSafety)
	for i := 1; i < len(bySafety); i++ {
		assert.LessOrEqual(t, bySafety[i-1].SafetyScore, bySafety[i].SafetyScore)
	}
}

func TestSelect_PriceBandFilter(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	budget := c.Select(Filter{PriceBand: BandBudget}, "")
	require.NotEmpty(t, budget)
	for _, p := range budget {
		assert.Less(t, p.AvgPrice, 75.0)
	}
}

func TestSelect_ValueSortZeroPriceLast(t *testing.T) {
	c, err := Parse([]byte(`[
		{"id":"a","brand":"X","name":"A","avgPrice":0,"safetyScore":5},
		{"id":"b","brand":"X","name":"B","avgPrice":100,"safetyScore":10}
	]`))
	require.NoError(t, err)

	out := c.Select(Filter{}, SortValue)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
}
