package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/repository"
)

// OperatorHandler serves /operators.
type OperatorHandler struct {
	Operators *repository.OperatorRepo
	Users     *repository.UserRepo
	Boats     *repository.BoatRepo
}

// NewOperatorHandler returns an OperatorHandler.
func NewOperatorHandler(o *repository.OperatorRepo, u *repository.UserRepo, b *repository.BoatRepo) *OperatorHandler {
	return &OperatorHandler{Operators: o, Users: u, Boats: b}
}

type createOperatorReq struct {
	UserID      uint64  `json:"user_id" validate:"required"`
	CompanyName string  `json:"company_name" validate:"required,max=160"`
	Description *string `json:"description"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
}

type updateOperatorReq struct {
	CompanyName *string `json:"company_name" validate:"omitempty,min=1,max=160"`
	Description *string `json:"description"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
}

type operatorView struct {
	*model.Operator
	Boats []model.Boat `json:"boats"`
}

// List handles GET /operators.
func (h *OperatorHandler) List(c echo.Context) error {
	ops, err := h.Operators.List(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, ops)
}

// Get returns the operator with its fleet.
func (h *OperatorHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	op, err := h.Operators.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Operador no encontrado")
	}
	if err != nil {
		return respondErr(c, err)
	}
	boats, err := h.Boats.List(ctx, op.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, operatorView{Operator: op, Boats: boats})
}

// Create handles POST /operators.  The linked user must exist and may own
// only one operator.
func (h *OperatorHandler) Create(c echo.Context) error {
	var req createOperatorReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return badRequest(c, invalidInput("Usuario no encontrado"))
		}
		return respondErr(c, err)
	}
	op := &model.Operator{
		UserID:      req.UserID,
		CompanyName: strings.TrimSpace(req.CompanyName),
		Description: req.Description,
		Phone:       req.Phone,
	}
	if err := h.Operators.Create(ctx, op); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, op)
}

// Update handles PATCH /operators/:id.
func (h *OperatorHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req updateOperatorReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	op, err := h.Operators.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Operador no encontrado")
	}
	if err != nil {
		return respondErr(c, err)
	}
	if req.CompanyName != nil {
		op.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.Description != nil {
		op.Description = req.Description
	}
	if req.Phone != nil {
		op.Phone = req.Phone
	}
	if err := h.Operators.Update(ctx, op); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, op)
}

// Delete handles DELETE /operators/:id.
func (h *OperatorHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.Operators.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Operador no encontrado")
		}
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
