package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helmwise/helmwise-backend/internal/api/dto"
	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/discovery"
)

// DiscoveryHandler serves ASIN candidates and verification.
type DiscoveryHandler struct {
	store *discovery.Store
	cat   *catalog.Catalog
}

// NewDiscoveryHandler creates a discovery handler.
func NewDiscoveryHandler(store *discovery.Store, cat *catalog.Catalog) *DiscoveryHandler {
	return &DiscoveryHandler{store: store, cat: cat}
}

// Candidates returns the ranked candidates for a product, plus the
// current best pick when one clears the confidence floor.
func (h *DiscoveryHandler) Candidates(c *gin.Context) {
	productID := c.Param("productId")
	if _, ok := h.cat.ByID(productID); !ok {
		c.JSON(http.StatusNotFound, dto.NotFoundError("product"))
		return
	}

	resp := gin.H{"candidates": h.store.Candidates(productID)}
	if best, ok := h.store.Best(productID); ok {
		resp["best"] = best
	}
	c.JSON(http.StatusOK, resp)
}

// Submit records a user-submitted ASIN.
func (h *DiscoveryHandler) Submit(c *gin.Context) {
	productID := c.Param("productId")
	if _, ok := h.cat.ByID(productID); !ok {
		c.JSON(http.StatusNotFound, dto.NotFoundError("product"))
		return
	}

	var req dto.SubmitASINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	if !h.store.SubmitUserCandidate(productID, req.ASIN, req.SourceURL, req.Title) {
		c.JSON(http.StatusBadRequest, dto.ValidationError("invalid ASIN: "+req.ASIN))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"candidates": h.store.Candidates(productID)})
}

// Verify flips the verified flag on a candidate.
func (h *DiscoveryHandler) Verify(c *gin.Context) {
	productID := c.Param("productId")

	var req dto.VerifyASINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	if !h.store.Verify(productID, req.ASIN, req.Verified) {
		c.JSON(http.StatusNotFound, dto.NotFoundError("candidate"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": h.store.Candidates(productID)})
}

// Coverage reports best-candidate state for every product with
// candidates.
func (h *DiscoveryHandler) Coverage(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewListResponse(h.store.Coverage()))
}
