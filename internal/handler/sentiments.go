package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"fxmonitor/internal/models"
	"fxmonitor/internal/notify"
	"fxmonitor/internal/repository"
	"fxmonitor/internal/sentiment"
)

type SentimentHandler struct {
	Repo   repository.Repository
	Engine *sentiment.Engine
}

func (h *SentimentHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/sentiments")
	group.GET("", h.listSentiments)
	group.GET("/report", h.weeklyReport)
	group.POST("/analyze", h.analyze)
}

// @Summary List currency sentiments
// @Tags sentiments
// @Param currency query string false "ISO-3 currency code"
// @Param view query string false "forecast or actual"
// @Param period_start query string false "RFC3339 period start"
// @Success 200 {object} apiResponse
// @Router /api/v1/sentiments [get]
func (h *SentimentHandler) listSentiments(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(c.Query("currency")))
	view := strings.ToLower(strings.TrimSpace(c.Query("view")))
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	if view != "" && view != models.ViewForecast && view != models.ViewActual {
		Error(c, http.StatusBadRequest, "view must be forecast or actual", nil)
		return
	}

	var currencyPtr, viewPtr *string
	if currency != "" {
		currencyPtr = &currency
	}
	if view != "" {
		viewPtr = &view
	}
	var periodStart *time.Time
	if raw := strings.TrimSpace(c.Query("period_start")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			Error(c, http.StatusBadRequest, "period_start must be RFC3339", nil)
			return
		}
		parsed = parsed.UTC()
		periodStart = &parsed
	}

	items, err := h.Repo.ListCurrencySentiments(c.Request.Context(), repository.ListSentimentsParams{
		Limit:       limit,
		Offset:      offset,
		Currency:    currencyPtr,
		View:        viewPtr,
		PeriodStart: periodStart,
		OrderBy:     "period_start",
		Asc:         boolPtr(false),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, int64(len(items))))
}

// @Summary Render the current week's sentiment report
// @Tags sentiments
// @Param view query string false "forecast (default) or actual"
// @Success 200 {object} apiResponse
// @Router /api/v1/sentiments/report [get]
func (h *SentimentHandler) weeklyReport(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	view := strings.ToLower(strings.TrimSpace(c.DefaultQuery("view", models.ViewForecast)))
	if view != models.ViewForecast && view != models.ViewActual {
		Error(c, http.StatusBadRequest, "view must be forecast or actual", nil)
		return
	}

	weekStart, _ := sentiment.WeekBounds(time.Now().UTC())
	rows, err := h.Repo.ListCurrencySentiments(c.Request.Context(), repository.ListSentimentsParams{
		View:        &view,
		PeriodStart: &weekStart,
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"week_start": weekStart,
		"view":       view,
		"report":     notify.FormatWeeklyReport(rows, weekStart),
	}, nil)
}

// @Summary Recompute sentiment for the current week
// @Tags sentiments
// @Success 200 {object} apiResponse
// @Router /api/v1/sentiments/analyze [post]
func (h *SentimentHandler) analyze(c *gin.Context) {
	if h.Engine == nil {
		Error(c, http.StatusInternalServerError, "engine unavailable", nil)
		return
	}
	if err := h.Engine.AnalyzeCurrentWeek(c.Request.Context()); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"status": "recomputed"}, nil)
}
