package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"commit-tracker/internal/service"
)

// ChartHandler serves the derived views: Gantt timeline and statistics.
type ChartHandler struct {
	charts *service.ChartService
}

func NewChartHandler(charts *service.ChartService) *ChartHandler {
	return &ChartHandler{charts: charts}
}

// TimelineHandler returns the caller's task forest together with the
// month/week grid and per-task bar positions.
func (h *ChartHandler) TimelineHandler(c echo.Context) error {
	view, err := h.charts.Timeline(c.Request().Context(), currentUser(c), time.Now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// StatsHandler returns status/priority/daily/commit aggregates, optionally
// narrowed to a created-at range.
func (h *ChartHandler) StatsHandler(c echo.Context) error {
	var from, to *time.Time
	if t, ok := parseDate(c.QueryParam("start_date")); ok {
		from = &t
	}
	if t, ok := parseDate(c.QueryParam("end_date")); ok {
		to = &t
	}

	stats, err := h.charts.Stats(c.Request().Context(), currentUser(c), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// ProgressHandler returns the per-day status breakdown for the trailing
// window (7 days by default).
func (h *ChartHandler) ProgressHandler(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))

	progress, err := h.charts.Progress(c.Request().Context(), currentUser(c), days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"progress": progress})
}
