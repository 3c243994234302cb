package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/repository"
)

// BoatHandler serves /boats.  Writes are ADMIN only (enforced by the
// router).
type BoatHandler struct {
	Boats     *repository.BoatRepo
	Operators *repository.OperatorRepo
}

// NewBoatHandler returns a BoatHandler backed by the given repositories.
func NewBoatHandler(b *repository.BoatRepo, o *repository.OperatorRepo) *BoatHandler {
	return &BoatHandler{Boats: b, Operators: o}
}

type createBoatReq struct {
	OperatorID uint64  `json:"operator_id" validate:"required"`
	Name       string  `json:"name" validate:"required,max=120"`
	Capacity   int     `json:"capacity" validate:"required,gt=0,lte=1000"`
	BoatType   string  `json:"boat_type" validate:"omitempty,max=40"`
	ImageURL   *string `json:"image_url" validate:"omitempty,url"`
}

type updateBoatReq struct {
	OperatorID *uint64 `json:"operator_id" validate:"omitempty,gt=0"`
	Name       *string `json:"name" validate:"omitempty,min=1,max=120"`
	Capacity   *int    `json:"capacity" validate:"omitempty,gt=0,lte=1000"`
	BoatType   *string `json:"boat_type" validate:"omitempty,max=40"`
	ImageURL   *string `json:"image_url" validate:"omitempty,url"`
}

// List handles GET /boats.  An operator_id query parameter narrows the list.
func (h *BoatHandler) List(c echo.Context) error {
	boats, err := h.Boats.List(c.Request().Context(), queryID(c, "operator_id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, boats)
}

// Get handles GET /boats/:id.
func (h *BoatHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	b, err := h.Boats.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Barco no encontrado")
	}
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Create handles POST /boats.  The operator must already exist.
func (h *BoatHandler) Create(c echo.Context) error {
	var req createBoatReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	if err := h.operatorExists(ctx, req.OperatorID); err != nil {
		return respondErr(c, err)
	}
	b := &model.Boat{
		OperatorID: req.OperatorID,
		Name:       strings.TrimSpace(req.Name),
		Capacity:   req.Capacity,
		BoatType:   strings.ToUpper(strings.TrimSpace(req.BoatType)),
		ImageURL:   req.ImageURL,
	}
	if b.BoatType == "" {
		b.BoatType = "LANCHA"
	}
	if err := h.Boats.Create(ctx, b); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Update handles PATCH /boats/:id; absent fields keep their stored value.
func (h *BoatHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req updateBoatReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	b, err := h.Boats.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Barco no encontrado")
	}
	if err != nil {
		return respondErr(c, err)
	}
	// moving a boat to another operator needs that operator to exist
	if req.OperatorID != nil {
		if err := h.operatorExists(ctx, *req.OperatorID); err != nil {
			return respondErr(c, err)
		}
		b.OperatorID = *req.OperatorID
	}
	if req.Name != nil {
		b.Name = strings.TrimSpace(*req.Name)
	}
	if req.Capacity != nil {
		b.Capacity = *req.Capacity
	}
	if req.BoatType != nil { // stored upper case, as on create
		b.BoatType = strings.ToUpper(strings.TrimSpace(*req.BoatType))
	}
	if req.ImageURL != nil {
		b.ImageURL = req.ImageURL
	}
	if err := h.Boats.Update(ctx, b); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /boats/:id.  Boats with schedules answer 409.
func (h *BoatHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.Boats.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Barco no encontrado")
		}
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// operatorExists turns a missing operator into a 400.
func (h *BoatHandler) operatorExists(ctx context.Context, id uint64) error {
	_, err := h.Operators.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return invalidInput("Operador no encontrado")
	}
	return err
}
