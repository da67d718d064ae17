package analytics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler serves the analytics endpoints.
type Handler struct {
	store *Store
}

// NewHandler creates a new analytics handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// StatsResponse is the JSON response for the stats endpoint.
type StatsResponse struct {
	Stats      *Stats `json:"stats"`
	Realtime   int    `json:"realtime_visitors"`
	PeriodDays int    `json:"period_days"`
	Hourly     bool   `json:"hourly"`
	Monthly    bool   `json:"monthly"`
}

// GetStats returns analytics statistics as JSON.
func (h *Handler) GetStats(c echo.Context) error {
	_, days, hourly, monthly := parsePeriod(c.QueryParam("period"))

	now := time.Now().UTC()
	from, to := calcTimeRange(now, days, hourly)

	ctx := c.Request().Context()
	stats, err := h.store.GetStats(ctx, from, to, hourly, monthly)
	if err != nil {
		c.Logger().Errorf("Failed to get stats: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	if hourly {
		stats.DailyViews = fillHourlyData(stats.DailyViews, from)
	}

	realtime, _ := h.store.RealtimeVisitors(ctx)

	return c.JSON(http.StatusOK, StatsResponse{
		Stats:      stats,
		Realtime:   realtime,
		PeriodDays: days,
		Hourly:     hourly,
		Monthly:    monthly,
	})
}

// GetLinkViews returns the human view count of a single link.
func (h *Handler) GetLinkViews(c echo.Context) error {
	linkID := c.Param("linkId")
	n, err := h.store.LinkViews(c.Request().Context(), linkID)
	if err != nil {
		c.Logger().Errorf("Failed to count link views: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"link_id": linkID, "views": n})
}

// parsePeriod parses the period query parameter.
func parsePeriod(period string) (string, int, bool, bool) {
	switch period {
	case "today":
		return period, 1, true, false
	case "month":
		return period, 30, false, false
	case "year":
		return period, 365, false, true
	case "week":
		return period, 7, false, false
	default:
		return "week", 7, false, false
	}
}

// calcTimeRange returns the from/to times for the given period.
func calcTimeRange(now time.Time, days int, hourly bool) (time.Time, time.Time) {
	if hourly {
		currentHour := now.Truncate(time.Hour)
		return currentHour.Add(-23 * time.Hour), currentHour.Add(time.Hour)
	}
	from := now.AddDate(0, 0, -days).Truncate(24 * time.Hour)
	to := now.Add(24 * time.Hour).Truncate(24 * time.Hour)
	return from, to
}

// fillHourlyData ensures all 24 hourly slots are present, filling gaps with zero.
func fillHourlyData(sparse []DailyView, from time.Time) []DailyView {
	dataMap := make(map[string]int, len(sparse))
	for _, v := range sparse {
		dataMap[v.Date] = v.Views
	}

	result := make([]DailyView, 24)
	for i := 0; i < 24; i++ {
		hour := from.Add(time.Duration(i) * time.Hour)
		label := fmt.Sprintf("%02d:00", hour.Hour())
		result[i] = DailyView{Date: label, Views: dataMap[label]}
	}
	return result
}

// RegisterRoutes registers the admin analytics API behind authMiddleware.
func (h *Handler) RegisterRoutes(e *echo.Echo, authMiddleware echo.MiddlewareFunc) {
	admin := e.Group("/admin/analytics")
	admin.Use(authMiddleware)
	admin.GET("/api/stats", h.GetStats)
	admin.GET("/api/links/:linkId", h.GetLinkViews)
}
