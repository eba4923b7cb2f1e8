package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helmwise/helmwise-backend/internal/api/dto"
	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/compare"
)

// ComparisonHandler manages the comparison set.
type ComparisonHandler struct {
	store *compare.Store
	cat   *catalog.Catalog
}

// NewComparisonHandler creates a comparison handler.
func NewComparisonHandler(store *compare.Store, cat *catalog.Catalog) *ComparisonHandler {
	return &ComparisonHandler{store: store, cat: cat}
}

// List returns the current comparison entries with product details.
func (h *ComparisonHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"entries":  h.store.List(),
		"products": h.store.Products(),
	})
}

// Add puts a product into the comparison set. The oldest entry is
// evicted when the set is full.
func (h *ComparisonHandler) Add(c *gin.Context) {
	var req dto.AddComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	p, ok := h.cat.ByID(req.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, dto.NotFoundError("product"))
		return
	}

	source := req.Source
	if source == "" {
		source = "api"
	}
	entries := h.store.Add(p, source)
	c.JSON(http.StatusOK, dto.NewListResponse(entries))
}

// Remove takes one product out of the comparison set.
func (h *ComparisonHandler) Remove(c *gin.Context) {
	entries := h.store.Remove(c.Param("id"))
	c.JSON(http.StatusOK, dto.NewListResponse(entries))
}

// Clear empties the comparison set.
func (h *ComparisonHandler) Clear(c *gin.Context) {
	h.store.Clear()
	c.Status(http.StatusNoContent)
}

// Analyze returns comparison highlights. Requires at least two
// products in the set.
func (h *ComparisonHandler) Analyze(c *gin.Context) {
	analysis := h.store.Analyze()
	if analysis == nil {
		c.JSON(http.StatusUnprocessableEntity,
			dto.ValidationError("comparison needs at least two products"))
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Metrics returns aggregate metrics over the comparison set.
func (h *ComparisonHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Metrics())
}
