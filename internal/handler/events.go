package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"fxmonitor/internal/repository"
)

type EventHandler struct {
	Repo repository.Repository
}

func (h *EventHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/events")
	group.GET("", h.listEvents)
	group.GET("/:id/snapshots", h.listSnapshots)
	group.GET("/indicators", h.listIndicators)
}

// @Summary List calendar events
// @Tags events
// @Param currency query string false "ISO-3 currency code"
// @Param since query string false "RFC3339 lower bound on scheduled time"
// @Success 200 {object} apiResponse
// @Router /api/v1/events [get]
func (h *EventHandler) listEvents(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(c.Query("currency")))
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	var currencyPtr *string
	if currency != "" {
		currencyPtr = &currency
	}
	var since *time.Time
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			parsed = parsed.UTC()
			since = &parsed
		}
	}

	items, err := h.Repo.ListEvents(c.Request.Context(), repository.ListEventsParams{
		Limit:    limit,
		Offset:   offset,
		Currency: currencyPtr,
		Since:    since,
		OrderBy:  "scheduled_time",
		Asc:      boolPtr(false),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, int64(len(items))))
}

// @Summary List snapshot history for one event
// @Tags events
// @Param id path int true "event id"
// @Success 200 {object} apiResponse
// @Router /api/v1/events/{id}/snapshots [get]
func (h *EventHandler) listSnapshots(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid event id", nil)
		return
	}
	items, err := h.Repo.ListSnapshotsByEventID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

// @Summary List events joined with their latest indicator snapshot
// @Tags events
// @Param from query string false "RFC3339 window start (default 7 days ago)"
// @Param to query string false "RFC3339 window end (default now)"
// @Param missing_actual query bool false "only events still awaiting actual data"
// @Success 200 {object} apiResponse
// @Router /api/v1/events/indicators [get]
func (h *EventHandler) listIndicators(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -7)
	to := now
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			from = parsed.UTC()
		}
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			to = parsed.UTC()
		}
	}

	items, err := h.Repo.ListEventsWithLatestSnapshot(c.Request.Context(), repository.SnapshotQuery{
		From:              from,
		To:                to,
		HighImpactOnly:    true,
		MissingActualOnly: c.Query("missing_actual") == "true",
		Currency:          strings.ToUpper(strings.TrimSpace(c.Query("currency"))),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}
