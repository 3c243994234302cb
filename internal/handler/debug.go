package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/selvawasi/selvawasi-api/internal/service"
)

// DebugHandler exposes development helpers.  When Enabled is false every
// endpoint answers 404 as if it were not registered.
type DebugHandler struct {
	Seeder  *service.Seeder
	Enabled bool
}

// NewDebugHandler returns a DebugHandler; Seed answers 404 unless enabled.
func NewDebugHandler(s *service.Seeder, enabled bool) *DebugHandler {
	return &DebugHandler{Seeder: s, Enabled: enabled}
}

// Seed loads the demo fixtures.  It can be called repeatedly.
func (h *DebugHandler) Seed(c echo.Context) error {
	if !h.Enabled {
		return notFound(c, "not found")
	}
	res, err := h.Seeder.Run(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	logrus.WithFields(logrus.Fields{
		"admin_id":    res.AdminID,
		"schedules":   len(res.ScheduleIDs),
		"experiences": len(res.ExperienceIDs),
	}).Info("debug: fixtures seeded")
	return c.JSON(http.StatusOK, echo.Map{"message": "seed completed", "data": res})
}
