package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/repository"
	"github.com/selvawasi/selvawasi-api/internal/service"
)

// ReservationHandler serves /reservations.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Service      *service.ReservationService
}

// NewReservationHandler returns a ReservationHandler.
func NewReservationHandler(r *repository.ReservationRepo, s *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Reservations: r, Service: s}
}

type createReservationReq struct {
	RestaurantID  uint64 `json:"restaurant_id" validate:"required"`
	Pax           int    `json:"pax"`
	RequestedDate string `json:"requested_date" validate:"required"`
	Notes         string `json:"notes" validate:"max=1000"`
	Status        string `json:"status"`
}

type reservationStatusReq struct {
	Status string `json:"status" validate:"required"`
}

// parseRequestedDate accepts RFC 3339 timestamps and bare dates.
func parseRequestedDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("requested_date must be RFC 3339 or YYYY-MM-DD")
}

// Create files a table request in PENDING_APPROVAL.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	when, err := parseRequestedDate(req.RequestedDate)
	if err != nil {
		return badRequest(c, err)
	}
	uid, _ := caller(c)
	res, err := h.Service.Create(c.Request().Context(), service.ReservationInput{
		UserID:        uid,
		RestaurantID:  req.RestaurantID,
		Pax:           req.Pax,
		RequestedDate: when,
		Notes:         req.Notes,
		Status:        req.Status,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Mine handles GET /reservations/my-reservations.
func (h *ReservationHandler) Mine(c echo.Context) error {
	uid, _ := caller(c)
	out, err := h.Reservations.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Owner lists reservations of the caller's restaurants, or of every
// restaurant for an admin.  ?status narrows the list.
func (h *ReservationHandler) Owner(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	switch status {
	case "", model.ReservationPendingApproval, model.ReservationConfirmed, model.ReservationRejected:
	default:
		return badRequest(c, errors.New("unknown status"))
	}
	uid, isAdmin := caller(c)
	ownerID := uid
	if isAdmin {
		ownerID = 0
	}
	out, err := h.Reservations.ListForOwner(c.Request().Context(), ownerID, status)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateStatus confirms or rejects a reservation.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req reservationStatusReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	uid, isAdmin := caller(c)
	res, err := h.Service.UpdateStatus(c.Request().Context(), id, req.Status, uid, isAdmin)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
