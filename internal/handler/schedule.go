package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/repository"
)

// ScheduleHandler serves /schedules and /prices.
type ScheduleHandler struct {
	Schedules *repository.ScheduleRepo
	Boats     *repository.BoatRepo
	Routes    *repository.RouteRepo
}

// NewScheduleHandler returns a ScheduleHandler.
func NewScheduleHandler(s *repository.ScheduleRepo, b *repository.BoatRepo, r *repository.RouteRepo) *ScheduleHandler {
	return &ScheduleHandler{Schedules: s, Boats: b, Routes: r}
}

type priceReq struct {
	AmountCents int64  `json:"amount_cents" validate:"gte=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	SeatType    string `json:"seat_type" validate:"omitempty,max=40"`
}

type createScheduleReq struct {
	BoatID        uint64     `json:"boat_id" validate:"required"`
	RouteID       uint64     `json:"route_id" validate:"required"`
	DepartureTime time.Time  `json:"departure_time" validate:"required"`
	ArrivalTime   time.Time  `json:"arrival_time" validate:"required"`
	Prices        []priceReq `json:"prices" validate:"dive"`
}

type updateScheduleReq struct {
	BoatID        *uint64    `json:"boat_id" validate:"omitempty,gt=0"`
	RouteID       *uint64    `json:"route_id" validate:"omitempty,gt=0"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
}

type updatePriceReq struct {
	AmountCents *int64  `json:"amount_cents" validate:"omitempty,gte=0"`
	Currency    *string `json:"currency" validate:"omitempty,len=3"`
	SeatType    *string `json:"seat_type" validate:"omitempty,min=1,max=40"`
}

var (
	errArrivalBeforeDeparture = invalidInput("arrival_time must be after departure_time")
	errBoatBusy               = errors.New("El barco ya tiene un viaje en ese horario")
)

// List filters by origin, destination, date (YYYY-MM-DD), boat_id and
// route_id.
func (h *ScheduleHandler) List(c echo.Context) error {
	f := repository.ScheduleFilter{
		Origin:      c.QueryParam("origin"),
		Destination: c.QueryParam("destination"),
		BoatID:      queryID(c, "boat_id"),
		RouteID:     queryID(c, "route_id"),
	}
	if d := c.QueryParam("date"); d != "" {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			return badRequest(c, errors.New("date must be YYYY-MM-DD"))
		}
		f.Date = &day
	}
	out, err := h.Schedules.List(c.Request().Context(), f)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /schedules/:id.
func (h *ScheduleHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	v, err := h.Schedules.GetView(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Horario no encontrado")
	}
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Availability reports capacity, occupied and free seats of a departure.
func (h *ScheduleHandler) Availability(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	v, err := h.Schedules.GetView(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Horario no encontrado")
	}
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"schedule_id":     v.ID,
		"capacity":        v.BoatCapacity,
		"occupied_seats":  v.OccupiedSeats,
		"available_seats": v.AvailableSeats,
		"sold_out":        v.AvailableSeats == 0,
	})
}

// Create adds a departure and, optionally, its fares.
func (h *ScheduleHandler) Create(c echo.Context) error {
	var req createScheduleReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	if !req.ArrivalTime.After(req.DepartureTime) {
		return badRequest(c, errArrivalBeforeDeparture)
	}
	ctx := c.Request().Context()
	if err := h.parentsExist(ctx, req.BoatID, req.RouteID); err != nil {
		return respondErr(c, err)
	}
	// 0: a new schedule has no id to exclude from the overlap check
	if err := h.boatFree(ctx, req.BoatID, 0, req.DepartureTime, req.ArrivalTime); err != nil {
		return respondErr(c, err)
	}
	s := &model.Schedule{
		BoatID:        req.BoatID,
		RouteID:       req.RouteID,
		DepartureTime: req.DepartureTime.UTC(),
		ArrivalTime:   req.ArrivalTime.UTC(),
	}
	prices := make([]*model.Price, 0, len(req.Prices))
	for _, p := range req.Prices {
		prices = append(prices, newPrice(0, p)) // schedule id is set inside the transaction
	}
	if err := h.Schedules.CreateWithPrices(ctx, s, prices); err != nil {
		return respondErr(c, err)
	}
	// respond with the joined view: seats left and fares
	v, err := h.Schedules.GetView(ctx, s.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// Update handles PATCH /schedules/:id.  The merged times are re-checked
// for order and boat overlap.
func (h *ScheduleHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req updateScheduleReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	s, err := h.Schedules.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Horario no encontrado")
	}
	if err != nil {
		return respondErr(c, err)
	}
	if req.BoatID != nil {
		s.BoatID = *req.BoatID
	}
	if req.RouteID != nil {
		s.RouteID = *req.RouteID
	}
	if req.DepartureTime != nil {
		s.DepartureTime = req.DepartureTime.UTC()
	}
	if req.ArrivalTime != nil {
		s.ArrivalTime = req.ArrivalTime.UTC()
	}
	if !s.ArrivalTime.After(s.DepartureTime) {
		return badRequest(c, errArrivalBeforeDeparture)
	}
	if err := h.parentsExist(ctx, s.BoatID, s.RouteID); err != nil {
		return respondErr(c, err)
	}
	if err := h.boatFree(ctx, s.BoatID, s.ID, s.DepartureTime, s.ArrivalTime); err != nil {
		return respondErr(c, err)
	}
	if err := h.Schedules.Update(ctx, s); err != nil {
		return respondErr(c, err)
	}
	v, err := h.Schedules.GetView(ctx, s.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Delete handles DELETE /schedules/:id.  Prices cascade; bookings block it.
func (h *ScheduleHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.Schedules.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Horario no encontrado")
		}
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreatePrice handles POST /schedules/:id/prices.
func (h *ScheduleHandler) CreatePrice(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req priceReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	if _, err := h.Schedules.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Horario no encontrado")
		}
		return respondErr(c, err)
	}
	p := newPrice(id, req)
	if err := h.Schedules.CreatePrice(ctx, p); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// UpdatePrice handles PATCH /prices/:id.
func (h *ScheduleHandler) UpdatePrice(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req updatePriceReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	p, err := h.Schedules.GetPrice(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Precio no encontrado")
	}
	if err != nil {
		return respondErr(c, err)
	}
	if req.AmountCents != nil {
		p.AmountCents = *req.AmountCents
	}
	if req.Currency != nil {
		p.Currency = strings.ToUpper(*req.Currency)
	}
	if req.SeatType != nil {
		p.SeatType = strings.ToUpper(strings.TrimSpace(*req.SeatType))
	}
	if err := h.Schedules.UpdatePrice(ctx, p); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// DeletePrice handles DELETE /prices/:id.
func (h *ScheduleHandler) DeletePrice(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.Schedules.DeletePrice(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Precio no encontrado")
		}
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// parentsExist reports a missing boat or route as invalid input.
func (h *ScheduleHandler) parentsExist(ctx context.Context, boatID, routeID uint64) error {
	if _, err := h.Boats.GetByID(ctx, boatID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalidInput("Barco no encontrado")
		}
		return err
	}
	if _, err := h.Routes.GetByID(ctx, routeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalidInput("Ruta no encontrada")
		}
		return err
	}
	return nil
}

// boatFree rejects a departure that overlaps another trip of the same boat.
func (h *ScheduleHandler) boatFree(ctx context.Context, boatID, scheduleID uint64, dep, arr time.Time) error {
	clash, err := h.Schedules.FindOverlapping(ctx, boatID, scheduleID, dep, arr)
	if err != nil {
		return err
	}
	if len(clash) > 0 {
		logrus.WithFields(logrus.Fields{"boat_id": boatID, "clashes_with": clash[0].ID}).Debug("schedule: boat busy")
		return errBoatBusy
	}
	return nil
}

// newPrice normalises currency and seat type to upper case.
func newPrice(scheduleID uint64, p priceReq) *model.Price {
	return &model.Price{
		ScheduleID:  scheduleID,
		AmountCents: p.AmountCents,
		Currency:    strings.ToUpper(strings.TrimSpace(p.Currency)),
		SeatType:    strings.ToUpper(strings.TrimSpace(p.SeatType)),
	}
}
