package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/selvawasi/selvawasi-api/internal/repository"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 50
)

// AdminHandler serves the /admin dashboard endpoints.
type AdminHandler struct {
	Stats *repository.StatsRepo
}

// NewAdminHandler wires the dashboard handler to its stats repository.
func NewAdminHandler(s *repository.StatsRepo) *AdminHandler { return &AdminHandler{Stats: s} }

// GetStats handles GET /admin/stats.
func (h *AdminHandler) GetStats(c echo.Context) error {
	s, err := h.Stats.Stats(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Activity returns the latest bookings and reservations.  ?limit defaults
// to 10 and is capped at 50.
func (h *AdminHandler) Activity(c echo.Context) error {
	limit := defaultActivityLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return badRequest(c, invalidInput("limit must be a positive integer"))
		}
		limit = n
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	out, err := h.Stats.RecentActivity(c.Request().Context(), limit)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
