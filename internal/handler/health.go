package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chatd/internal/model"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct{}

// NewHealthHandler creates a health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Health reports liveness.
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  model.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		OK:        true,
		Message:   "Backend is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready reports readiness.
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
