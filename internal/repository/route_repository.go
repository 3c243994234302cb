package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/selvawasi/selvawasi-api/internal/model"
)

// RouteRepo manages river routes.  Geometry is stored as WKB.
type RouteRepo struct{ db *sqlx.DB }

// NewRouteRepo constructs a RouteRepo.
func NewRouteRepo(db *sqlx.DB) *RouteRepo { return &RouteRepo{db: db} }

const routeColumns = "id, origin, destination, duration_minutes, distance_km, geometry, created_at, updated_at"

// Create inserts rt.  Geometry holds WKB or is nil.
func (r *RouteRepo) Create(ctx context.Context, rt *model.Route) error {
	rt.CreatedAt, rt.UpdatedAt = now(), now()
	id, err := insertID(ctx, r.db,
		"INSERT INTO routes (origin, destination, duration_minutes, distance_km, geometry, created_at, updated_at) VALUES (?,?,?,?,?,?,?)",
		rt.Origin, rt.Destination, rt.DurationMinutes, rt.DistanceKm, rt.Geometry, rt.CreatedAt, rt.UpdatedAt)
	if err != nil {
		return err
	}
	rt.ID = id
	return nil
}

// GetByID returns ErrNotFound for an unknown id.
func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (*model.Route, error) {
	var rt model.Route
	if err := r.db.GetContext(ctx, &rt, "SELECT "+routeColumns+" FROM routes WHERE id = ?", id); err != nil {
		return nil, mapErr(err)
	}
	return &rt, nil
}

// List returns routes filtered by case-insensitive origin/destination
// prefixes when given.
func (r *RouteRepo) List(ctx context.Context, origin, destination string) ([]model.Route, error) {
	out := []model.Route{}
	q := "SELECT " + routeColumns + " FROM routes WHERE 1=1"
	var args []interface{}
	if origin != "" {
		q += " AND LOWER(origin) LIKE ?"
		args = append(args, likePrefix(origin))
	}
	if destination != "" {
		q += " AND LOWER(destination) LIKE ?"
		args = append(args, likePrefix(destination))
	}
	err := r.db.SelectContext(ctx, &out, q+" ORDER BY origin, destination, id", args...)
	return out, err
}

// FindByEnds is used by the seeder for natural-key upserts.
func (r *RouteRepo) FindByEnds(ctx context.Context, origin, destination string) (*model.Route, error) {
	var rt model.Route
	err := r.db.GetContext(ctx, &rt, "SELECT "+routeColumns+" FROM routes WHERE origin = ? AND destination = ? LIMIT 1", origin, destination)
	if err != nil {
		return nil, mapErr(err)
	}
	return &rt, nil
}

// Update rewrites every mutable column of rt.
func (r *RouteRepo) Update(ctx context.Context, rt *model.Route) error {
	rt.UpdatedAt = now()
	return affected(r.db.ExecContext(ctx,
		"UPDATE routes SET origin = ?, destination = ?, duration_minutes = ?, distance_km = ?, geometry = ?, updated_at = ? WHERE id = ?",
		rt.Origin, rt.Destination, rt.DurationMinutes, rt.DistanceKm, rt.Geometry, rt.UpdatedAt, rt.ID))
}

// Delete removes a route.  Routes used by schedules yield ErrConflict.
func (r *RouteRepo) Delete(ctx context.Context, id uint64) error {
	return affected(r.db.ExecContext(ctx, "DELETE FROM routes WHERE id = ?", id))
}
