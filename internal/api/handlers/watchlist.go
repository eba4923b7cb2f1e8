package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helmwise/helmwise-backend/internal/api/dto"
	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/watchlist"
)

// WatchlistHandler manages watched products.
type WatchlistHandler struct {
	store *watchlist.Store
	cat   *catalog.Catalog
}

// NewWatchlistHandler creates a watchlist handler.
func NewWatchlistHandler(store *watchlist.Store, cat *catalog.Catalog) *WatchlistHandler {
	return &WatchlistHandler{store: store, cat: cat}
}

// List returns the watchlist ordered by priority.
func (h *WatchlistHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewListResponse(h.store.List()))
}

// Add puts a product on the watchlist, or updates its priority if
// already present.
func (h *WatchlistHandler) Add(c *gin.Context) {
	var req dto.AddWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	if _, ok := h.cat.ByID(req.ProductID); !ok {
		c.JSON(http.StatusNotFound, dto.NotFoundError("product"))
		return
	}

	priority := watchlist.Priority(req.Priority)
	if req.Priority == "" {
		priority = watchlist.PriorityMedium
	}
	if !h.store.Add(req.ProductID, priority) {
		c.JSON(http.StatusBadRequest, dto.ValidationError("unknown priority: "+req.Priority))
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(h.store.List()))
}

// Remove takes a product off the watchlist.
func (h *WatchlistHandler) Remove(c *gin.Context) {
	h.store.Remove(c.Param("id"))
	c.Status(http.StatusNoContent)
}
