package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/repository"
)

// ExperienceHandler serves /experiences.
type ExperienceHandler struct {
	Experiences *repository.ExperienceRepo
	Operators   *repository.OperatorRepo
}

// NewExperienceHandler returns an ExperienceHandler.
func NewExperienceHandler(e *repository.ExperienceRepo, o *repository.OperatorRepo) *ExperienceHandler {
	return &ExperienceHandler{Experiences: e, Operators: o}
}

type createExperienceReq struct {
	OperatorID  uint64   `json:"operator_id" validate:"required"`
	Title       string   `json:"title" validate:"required,max=160"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents" validate:"gte=0"`
	Duration    string   `json:"duration" validate:"max=60"`
	Location    string   `json:"location" validate:"max=120"`
	Images      []string `json:"images" validate:"dive,url"`
}

type updateExperienceReq struct {
	OperatorID  *uint64   `json:"operator_id" validate:"omitempty,gt=0"`
	Title       *string   `json:"title" validate:"omitempty,min=1,max=160"`
	Description *string   `json:"description"`
	PriceCents  *int64    `json:"price_cents" validate:"omitempty,gte=0"`
	Duration    *string   `json:"duration" validate:"omitempty,max=60"`
	Location    *string   `json:"location" validate:"omitempty,max=120"`
	Images      *[]string `json:"images" validate:"omitempty,dive,url"`
}

// List filters by ?location prefix.
func (h *ExperienceHandler) List(c echo.Context) error {
	out, err := h.Experiences.List(c.Request().Context(), c.QueryParam("location"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /experiences/:id.
func (h *ExperienceHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	e, err := h.Experiences.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Experiencia no encontrada")
	}
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// Create handles POST /experiences.
func (h *ExperienceHandler) Create(c echo.Context) error {
	var req createExperienceReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	if _, err := h.Operators.GetByID(ctx, req.OperatorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, invalidInput("Operador no encontrado"))
		}
		return respondErr(c, err)
	}
	e := &model.Experience{
		OperatorID:  req.OperatorID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Duration:    req.Duration,
		Location:    strings.TrimSpace(req.Location),
		Images:      model.EncodeImages(req.Images),
	}
	if err := h.Experiences.Create(ctx, e); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

// Update handles PATCH /experiences/:id.  Only supplied fields change;
// images, when given, replace the whole list.
func (h *ExperienceHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req updateExperienceReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	e, err := h.Experiences.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Experiencia no encontrada")
	}
	if err != nil {
		return respondErr(c, err)
	}
	if req.OperatorID != nil {
		if _, err := h.Operators.GetByID(ctx, *req.OperatorID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return respondErr(c, invalidInput("Operador no encontrado"))
			}
			return respondErr(c, err)
		}
		e.OperatorID = *req.OperatorID
	}
	if req.Title != nil {
		e.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.PriceCents != nil {
		e.PriceCents = *req.PriceCents
	}
	if req.Duration != nil {
		e.Duration = *req.Duration
	}
	if req.Location != nil {
		e.Location = strings.TrimSpace(*req.Location)
	}
	if req.Images != nil {
		e.Images = model.EncodeImages(*req.Images)
	}
	if err := h.Experiences.Update(ctx, e); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// Delete handles DELETE /experiences/:id.
func (h *ExperienceHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.Experiences.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Experiencia no encontrada")
		}
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
