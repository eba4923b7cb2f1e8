package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helmwise/helmwise-backend/internal/api/dto"
	"github.com/helmwise/helmwise-backend/internal/catalog"
)

// ProductsHandler serves the helmet catalog.
type ProductsHandler struct {
	cat *catalog.Catalog
}

// NewProductsHandler creates a products handler.
func NewProductsHandler(cat *catalog.Catalog) *ProductsHandler {
	return &ProductsHandler{cat: cat}
}

// List returns catalog products, optionally filtered by brand, category
// and price band, ordered by the sort query parameter.
func (h *ProductsHandler) List(c *gin.Context) {
	band := c.Query("price_band")
	if band == "" {
		band = c.Query("band")
	}
	filter := catalog.Filter{
		Brand:     c.Query("brand"),
		Category:  c.Query("category"),
		PriceBand: band,
	}
	sortKey := c.DefaultQuery("sort", catalog.SortSafety)

	products := h.cat.Select(filter, sortKey)

	if offset := intQuery(c, "offset", 0); offset > 0 {
		if offset >= len(products) {
			products = nil
		} else {
			products = products[offset:]
		}
	}
	if limit := intQuery(c, "limit", 0); limit > 0 && limit < len(products) {
		products = products[:limit]
	}

	c.JSON(http.StatusOK, dto.NewListResponse(products))
}

// Get returns a single product by id.
func (h *ProductsHandler) Get(c *gin.Context) {
	p, ok := h.cat.ByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.NotFoundError("product"))
		return
	}
	c.JSON(http.StatusOK, p)
}
