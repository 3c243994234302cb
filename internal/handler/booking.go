package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/repository"
	"github.com/selvawasi/selvawasi-api/internal/service"
)

// BookingHandler serves /bookings.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Service  *service.BookingService
}

// NewBookingHandler returns a BookingHandler.
func NewBookingHandler(r *repository.BookingRepo, s *service.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: r, Service: s}
}

type createBookingReq struct {
	ScheduleID        *uint64 `json:"schedule_id" validate:"omitempty,gt=0"`
	ExperienceID      *uint64 `json:"experience_id" validate:"omitempty,gt=0"`
	SeatType          string  `json:"seat_type" validate:"max=40"`
	TotalPriceCents   int64   `json:"total_price_cents" validate:"gte=0"`
	PassengerName     string  `json:"passenger_name" validate:"required,max=160"`
	PassengerDocument string  `json:"passenger_document" validate:"required,max=40"`
	PassengerPhone    *string `json:"passenger_phone" validate:"omitempty,max=30"`
	Status            string  `json:"status"`
}

// Create books a seat (schedule_id) or an experience (experience_id) for
// the caller.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	uid, _ := caller(c)
	b, err := h.Service.Create(c.Request().Context(), service.BookingInput{
		UserID:            uid,
		ScheduleID:        req.ScheduleID,
		ExperienceID:      req.ExperienceID,
		SeatType:          req.SeatType,
		TotalPriceCents:   req.TotalPriceCents,
		PassengerName:     req.PassengerName,
		PassengerDocument: req.PassengerDocument,
		PassengerPhone:    req.PassengerPhone,
		Status:            req.Status,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Mine lists the caller's bookings, newest first.
func (h *BookingHandler) Mine(c echo.Context) error {
	uid, _ := caller(c)
	out, err := h.Bookings.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a booking to its owner or an admin.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, service.ErrBookingNotFound.Error())
	}
	if err != nil {
		return respondErr(c, err)
	}
	if uid, isAdmin := caller(c); !isAdmin && b.UserID != uid {
		return forbidden(c)
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel handles PATCH /bookings/:id/cancel for the booking owner or an admin.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	uid, isAdmin := caller(c)
	b, err := h.Service.Cancel(c.Request().Context(), id, uid, isAdmin)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// List is the admin listing, filtered by ?status and ?schedule_id.
func (h *BookingHandler) List(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	switch status {
	case "", model.BookingConfirmed, model.BookingCancelled, model.BookingPending:
	default:
		return badRequest(c, errors.New("unknown status"))
	}
	out, err := h.Bookings.List(c.Request().Context(), status, queryID(c, "schedule_id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /bookings/:id (admin only).
func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.Bookings.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, service.ErrBookingNotFound.Error())
		}
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
