package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/helmwise/helmwise-backend/internal/api/dto"
	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/pricing"
)

// PricingHandler serves price history, deal analysis, trends and
// alerts.
type PricingHandler struct {
	store *pricing.Store
	cat   *catalog.Catalog
}

// NewPricingHandler creates a pricing handler.
func NewPricingHandler(store *pricing.Store, cat *catalog.Catalog) *PricingHandler {
	return &PricingHandler{store: store, cat: cat}
}

// History returns the most recent snapshots for a product.
func (h *PricingHandler) History(c *gin.Context) {
	if _, ok := h.cat.ByID(c.Param("id")); !ok {
		c.JSON(http.StatusNotFound, dto.NotFoundError("product"))
		return
	}

	limit := intQuery(c, "limit", 0)
	snaps := h.store.History(c.Param("id"), limit)
	c.JSON(http.StatusOK, dto.NewListResponse(snaps))
}

// Deal returns the deal analysis for a product's current price.
func (h *PricingHandler) Deal(c *gin.Context) {
	p, ok := h.cat.ByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.NotFoundError("product"))
		return
	}
	c.JSON(http.StatusOK, h.store.AnalyzeDeal(p))
}

// Trend returns the recent price direction for a product.
func (h *PricingHandler) Trend(c *gin.Context) {
	if _, ok := h.cat.ByID(c.Param("id")); !ok {
		c.JSON(http.StatusNotFound, dto.NotFoundError("product"))
		return
	}

	days := intQuery(c, "days", 30)
	c.JSON(http.StatusOK, h.store.Trend(c.Param("id"), days))
}

// ListAlerts returns alerts, optionally scoped to one product.
func (h *PricingHandler) ListAlerts(c *gin.Context) {
	alerts := h.store.ListAlerts(c.Query("productId"))
	c.JSON(http.StatusOK, dto.NewListResponse(alerts))
}

// CreateAlert registers a new price alert.
func (h *PricingHandler) CreateAlert(c *gin.Context) {
	var req dto.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	if _, ok := h.cat.ByID(req.ProductID); !ok {
		c.JSON(http.StatusNotFound, dto.NotFoundError("product"))
		return
	}

	alertType := pricing.AlertType(req.Type)
	switch alertType {
	case pricing.AlertTargetPrice, pricing.AlertPriceDrop, pricing.AlertDealThreshold:
	default:
		c.JSON(http.StatusBadRequest, dto.ValidationError("unknown alert type: "+req.Type))
		return
	}

	if alertType == pricing.AlertTargetPrice && req.TargetPrice <= 0 {
		c.JSON(http.StatusBadRequest, dto.ValidationError("target price must be positive"))
		return
	}

	alert := h.store.CreateAlert(pricing.AlertSpec{
		ProductID:    req.ProductID,
		TargetPrice:  req.TargetPrice,
		Type:         alertType,
		NotifyMethod: req.NotifyMethod,
	})
	c.JSON(http.StatusCreated, alert)
}

// DeactivateAlert turns an alert off without deleting its record.
func (h *PricingHandler) DeactivateAlert(c *gin.Context) {
	if !h.store.DeactivateAlert(c.Param("id")) {
		c.JSON(http.StatusNotFound, dto.NotFoundError("alert"))
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAlert removes an alert entirely.
func (h *PricingHandler) DeleteAlert(c *gin.Context) {
	if !h.store.DeleteAlert(c.Param("id")) {
		c.JSON(http.StatusNotFound, dto.NotFoundError("alert"))
		return
	}
	c.Status(http.StatusNoContent)
}

// intQuery parses an integer query parameter with a default.
func intQuery(c *gin.Context, name string, def int) int {
	val := c.Query(name)
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}
