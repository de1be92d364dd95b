package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/server-time
//
// Exam clients sync their countdown against the server clock, not the
// device clock.
func (h *HealthHandler) ServerTime(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"current_datetime": time.Now().UTC()})
}
