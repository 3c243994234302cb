package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/repository"
	"github.com/selvawasi/selvawasi-api/internal/utils"
)

// RouteHandler serves /routes.  The river path travels as GeoJSON and is
// stored as WKB.
type RouteHandler struct {
	Routes *repository.RouteRepo
}

// NewRouteHandler returns a RouteHandler.
func NewRouteHandler(r *repository.RouteRepo) *RouteHandler { return &RouteHandler{Routes: r} }

type createRouteReq struct {
	Origin          string          `json:"origin" validate:"required,max=120"`
	Destination     string          `json:"destination" validate:"required,max=120,nefield=Origin"`
	DurationMinutes int             `json:"duration_minutes" validate:"gte=0"`
	DistanceKm      *float64        `json:"distance_km" validate:"omitempty,gte=0"`
	Path            json.RawMessage `json:"path"`
}

type updateRouteReq struct {
	Origin          *string         `json:"origin" validate:"omitempty,min=1,max=120"`
	Destination     *string         `json:"destination" validate:"omitempty,min=1,max=120"`
	DurationMinutes *int            `json:"duration_minutes" validate:"omitempty,gte=0"`
	DistanceKm      *float64        `json:"distance_km" validate:"omitempty,gte=0"`
	Path            json.RawMessage `json:"path"`
}

type routeView struct {
	*model.Route
	Path json.RawMessage `json:"path,omitempty"`
}

// toRouteView decodes the stored WKB path for the response.
func toRouteView(r *model.Route) routeView {
	path, err := utils.WKBToPath(r.Geometry)
	if err != nil {
		logrus.WithError(err).WithField("route_id", r.ID).Warn("route: stored geometry is not valid WKB")
	}
	return routeView{Route: r, Path: path}
}

// List handles GET /routes.
func (h *RouteHandler) List(c echo.Context) error {
	routes, err := h.Routes.List(c.Request().Context(), c.QueryParam("origin"), c.QueryParam("destination"))
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]routeView, len(routes))
	for i := range routes {
		out[i] = toRouteView(&routes[i])
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /routes/:id.
func (h *RouteHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	r, err := h.Routes.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Ruta no encontrada")
	}
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toRouteView(r))
}

// Create handles POST /routes.  path is an optional GeoJSON LineString.
func (h *RouteHandler) Create(c echo.Context) error {
	var req createRouteReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	geometry, err := utils.PathToWKB(req.Path)
	if err != nil {
		return badRequest(c, err)
	}
	r := &model.Route{
		Origin:          strings.TrimSpace(req.Origin),
		Destination:     strings.TrimSpace(req.Destination),
		DurationMinutes: req.DurationMinutes,
		DistanceKm:      req.DistanceKm,
		Geometry:        geometry,
	}
	if err := h.Routes.Create(c.Request().Context(), r); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, toRouteView(r))
}

// Update handles PATCH /routes/:id.
func (h *RouteHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req updateRouteReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	r, err := h.Routes.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Ruta no encontrada")
	}
	if err != nil {
		return respondErr(c, err)
	}
	if req.Origin != nil {
		r.Origin = strings.TrimSpace(*req.Origin)
	}
	if req.Destination != nil {
		r.Destination = strings.TrimSpace(*req.Destination)
	}
	if req.DurationMinutes != nil {
		r.DurationMinutes = *req.DurationMinutes
	}
	if req.DistanceKm != nil {
		r.DistanceKm = req.DistanceKm
	}
	if len(req.Path) > 0 {
		// an explicit null clears the path
		if r.Geometry, err = utils.PathToWKB(req.Path); err != nil {
			return badRequest(c, err)
		}
	}
	if err := h.Routes.Update(ctx, r); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toRouteView(r))
}

// Delete handles DELETE /routes/:id.
func (h *RouteHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.Routes.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Ruta no encontrada")
		}
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
