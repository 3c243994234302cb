package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/repository"
	"github.com/selvawasi/selvawasi-api/internal/service"
)

// RestaurantHandler serves /restaurants and /dishes.  Writes are limited to
// the owning user or an admin.
type RestaurantHandler struct {
	Restaurants *repository.RestaurantRepo
	Users       *repository.UserRepo
}

// NewRestaurantHandler returns a RestaurantHandler.
func NewRestaurantHandler(r *repository.RestaurantRepo, u *repository.UserRepo) *RestaurantHandler {
	return &RestaurantHandler{Restaurants: r, Users: u}
}

type createRestaurantReq struct {
	OwnerID     uint64  `json:"owner_id"`
	Name        string  `json:"name" validate:"required,max=160"`
	Description string  `json:"description"`
	Address     string  `json:"address" validate:"required,max=255"`
	Cuisine     string  `json:"cuisine" validate:"max=80"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

type updateRestaurantReq struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=160"`
	Description *string `json:"description"`
	Address     *string `json:"address" validate:"omitempty,min=1,max=255"`
	Cuisine     *string `json:"cuisine" validate:"omitempty,max=80"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

type createDishReq struct {
	Name        string `json:"name" validate:"required,max=160"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" validate:"gte=0"`
}

type createReviewReq struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// List filters by ?cuisine prefix.
func (h *RestaurantHandler) List(c echo.Context) error {
	out, err := h.Restaurants.List(c.Request().Context(), c.QueryParam("cuisine"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns the restaurant with its menu, reviews and rating summary.
func (h *RestaurantHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	v, err := h.Restaurants.GetView(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Restaurante no encontrado")
	}
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Create registers a restaurant.  Owners register their own; an admin
// names the owner in owner_id.
func (h *RestaurantHandler) Create(c echo.Context) error {
	var req createRestaurantReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	uid, isAdmin := caller(c)
	ownerID := uid // owners always create for themselves
	if isAdmin {
		if req.OwnerID == 0 {
			return badRequest(c, errors.New("owner_id is required"))
		}
		owner, err := h.Users.GetByID(ctx, req.OwnerID)
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, invalidInput("Usuario no encontrado"))
		}
		if err != nil {
			return respondErr(c, err)
		}
		// admins may only hand restaurants to RESTAURANT_OWNER accounts
		if owner.Role != model.RoleRestaurantOwner {
			return respondErr(c, invalidInput("El usuario no es propietario de restaurante"))
		}
		ownerID = owner.ID
	}
	rs := &model.Restaurant{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Address:     strings.TrimSpace(req.Address),
		Cuisine:     strings.TrimSpace(req.Cuisine),
		Phone:       req.Phone,
		ImageURL:    req.ImageURL,
	}
	if err := h.Restaurants.Create(ctx, rs); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, rs)
}

// Update handles PATCH /restaurants/:id for the owner or an admin.
func (h *RestaurantHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req updateRestaurantReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	rs, err := h.owned(ctx, c, id)
	if err != nil {
		return respondErr(c, err)
	}
	if req.Name != nil {
		rs.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		rs.Description = *req.Description
	}
	if req.Address != nil {
		rs.Address = strings.TrimSpace(*req.Address)
	}
	if req.Cuisine != nil {
		rs.Cuisine = strings.TrimSpace(*req.Cuisine)
	}
	if req.Phone != nil {
		rs.Phone = req.Phone
	}
	if req.ImageURL != nil {
		rs.ImageURL = req.ImageURL
	}
	if err := h.Restaurants.Update(ctx, rs); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, rs)
}

// Delete handles DELETE /restaurants/:id.  Dishes and reviews go with it;
// outstanding reservations block the delete.
func (h *RestaurantHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	if _, err := h.owned(ctx, c, id); err != nil {
		return respondErr(c, err)
	}
	if err := h.Restaurants.Delete(ctx, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateDish adds a menu entry to the caller's restaurant.
func (h *RestaurantHandler) CreateDish(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req createDishReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	if _, err := h.owned(ctx, c, id); err != nil {
		return respondErr(c, err)
	}
	d := &model.Dish{
		RestaurantID: id,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		PriceCents:   req.PriceCents,
	}
	if err := h.Restaurants.CreateDish(ctx, d); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// DeleteDish handles DELETE /dishes/:id.
func (h *RestaurantHandler) DeleteDish(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	d, err := h.Restaurants.GetDish(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Plato no encontrado")
	}
	if err != nil {
		return respondErr(c, err)
	}
	// dishes inherit ownership from their restaurant
	if _, err := h.owned(ctx, c, d.RestaurantID); err != nil {
		return respondErr(c, err)
	}
	if err := h.Restaurants.DeleteDish(ctx, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateReview lets any signed-in user rate a restaurant.
func (h *RestaurantHandler) CreateReview(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req createReviewReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	if _, err := h.Restaurants.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Restaurante no encontrado")
		}
		return respondErr(c, err)
	}
	uid, _ := caller(c)
	rv := &model.Review{
		RestaurantID: id,
		UserID:       uid,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
	}
	if err := h.Restaurants.CreateReview(ctx, rv); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, rv)
}

// owned loads a restaurant the caller may modify.
func (h *RestaurantHandler) owned(ctx context.Context, c echo.Context, id uint64) (*model.Restaurant, error) {
	rs, err := h.Restaurants.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, service.ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}
	uid, isAdmin := caller(c)
	if !isAdmin && rs.OwnerID != uid {
		return nil, repository.ErrForbidden
	}
	return rs, nil
}
