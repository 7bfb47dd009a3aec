package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fxmonitor/internal/collector"
	"fxmonitor/internal/monitor"
	"fxmonitor/internal/repository"
)

type MonitoringHandler struct {
	Repo      repository.Repository
	Monitor   *monitor.Monitor
	Collector *collector.Collector
}

func (h *MonitoringHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/monitoring")
	group.GET("/health", h.pipelineHealth)
	group.GET("/accuracy", h.accuracy)
	group.GET("/runs", h.listRuns)
	group.POST("/collect", h.triggerCollection)
}

// @Summary Collection pipeline health verdict
// @Tags monitoring
// @Success 200 {object} apiResponse
// @Router /api/v1/monitoring/health [get]
func (h *MonitoringHandler) pipelineHealth(c *gin.Context) {
	if h.Monitor == nil {
		Error(c, http.StatusInternalServerError, "monitor unavailable", nil)
		return
	}
	// Degraded pipelines still answer 200; the verdict is the payload.
	Ok(c, h.Monitor.Assess(c.Request.Context()), nil)
}

// @Summary Forecast accuracy over the trailing window
// @Tags monitoring
// @Success 200 {object} apiResponse
// @Router /api/v1/monitoring/accuracy [get]
func (h *MonitoringHandler) accuracy(c *gin.Context) {
	if h.Monitor == nil {
		Error(c, http.StatusInternalServerError, "monitor unavailable", nil)
		return
	}
	stats, err := h.Monitor.Accuracy(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, stats, nil)
}

// @Summary List recent collection runs
// @Tags monitoring
// @Param limit query int false "max runs returned (default 20)"
// @Success 200 {object} apiResponse
// @Router /api/v1/monitoring/runs [get]
func (h *MonitoringHandler) listRuns(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 20)
	items, err := h.Repo.ListRecentRuns(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

// @Summary Trigger a collection run now
// @Tags monitoring
// @Success 200 {object} apiResponse
// @Router /api/v1/monitoring/collect [post]
func (h *MonitoringHandler) triggerCollection(c *gin.Context) {
	if h.Collector == nil {
		Error(c, http.StatusInternalServerError, "collector unavailable", nil)
		return
	}
	run, err := h.Collector.Run(c.Request.Context())
	if err != nil {
		// The run record still carries the partial statistics.
		Error(c, http.StatusBadGateway, err.Error(), map[string]any{"run": run})
		return
	}
	Ok(c, run, nil)
}
