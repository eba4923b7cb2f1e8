package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helmwise/helmwise-backend/internal/api/dto"
)

// HealthHandler serves the load balancer health check.
type HealthHandler struct {
	version string
}

// NewHealthHandler creates a health handler reporting the given version.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// Get responds with service liveness.
func (h *HealthHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Version: h.version})
}
