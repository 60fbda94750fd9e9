package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	backend string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(backend string) *HealthHandler {
	return &HealthHandler{backend: backend}
}

// Health returns the health status of the service
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": h.backend,
	})
}
