package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helmwise/helmwise-backend/internal/api/dto"
	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/compare"
	"github.com/helmwise/helmwise-backend/internal/discovery"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/storage"
	"github.com/helmwise/helmwise-backend/internal/pricing"
	"github.com/helmwise/helmwise-backend/internal/watchlist"
)

// StatsHandler aggregates counts across all stores for the dashboard.
type StatsHandler struct {
	cat        *catalog.Catalog
	comparison *compare.Store
	prices     *pricing.Store
	watched    *watchlist.Store
	asins      *discovery.Store
	repo       storage.Repository
}

// NewStatsHandler creates a stats handler. repo may be nil when the
// server runs without the run database.
func NewStatsHandler(
	cat *catalog.Catalog,
	comparison *compare.Store,
	prices *pricing.Store,
	watched *watchlist.Store,
	asins *discovery.Store,
	repo storage.Repository,
) *StatsHandler {
	return &StatsHandler{
		cat:        cat,
		comparison: comparison,
		prices:     prices,
		watched:    watched,
		asins:      asins,
		repo:       repo,
	}
}

// Get returns the aggregate stats snapshot.
func (h *StatsHandler) Get(c *gin.Context) {
	resp := dto.StatsResponse{
		Products:       h.cat.Len(),
		ProductsByBand: map[string]int{},
	}

	brands := map[string]struct{}{}
	categories := map[string]struct{}{}
	for _, p := range h.cat.All() {
		brands[p.Brand] = struct{}{}
		categories[p.Category] = struct{}{}
		resp.ProductsByBand[p.PriceBand()]++
	}
	resp.Brands = len(brands)
	resp.Categories = len(categories)

	resp.ComparisonSize = len(h.comparison.List())
	resp.WatchlistSize = len(h.watched.List())

	for _, a := range h.prices.ListAlerts("") {
		if a.IsActive {
			resp.ActiveAlerts++
		}
	}

	for _, entry := range h.asins.Coverage() {
		resp.ASINCoverage++
		if entry.Verified {
			resp.VerifiedASINs++
		}
	}

	if h.repo != nil {
		if runs, err := h.repo.ListRuns(50); err == nil {
			for _, r := range runs {
				if r.Status == "completed" {
					resp.CompletedRuns++
				}
			}
			if len(runs) > 0 {
				resp.LastRunTool = runs[0].Tool
				resp.LastRunFinished = runs[0].CompletedAt
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}
