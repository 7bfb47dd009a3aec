package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fxmonitor/internal/collector"
)

type HealthHandler struct {
	DB *gorm.DB
	// Breaker surfaces collection-source state in readiness payloads; an open
	// breaker does not fail readiness, the HTTP surface still serves.
	Breaker *collector.Breaker
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

// @Summary Health check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Readiness check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /readyz [get]
func (h *HealthHandler) ready(c *gin.Context) {
	breakerOpen := false
	if h.Breaker != nil {
		breakerOpen = h.Breaker.Open()
	}

	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_missing", "breaker_open": breakerOpen})
		return
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_error", "breaker_open": breakerOpen})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unreachable", "breaker_open": breakerOpen})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "breaker_open": breakerOpen})
}
