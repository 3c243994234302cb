package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/selvawasi/selvawasi-api/internal/model"
)

// BoatRepo manages boats.
type BoatRepo struct{ db *sqlx.DB }

// NewBoatRepo constructs a BoatRepo.
func NewBoatRepo(db *sqlx.DB) *BoatRepo { return &BoatRepo{db: db} }

const boatColumns = "id, operator_id, name, capacity, boat_type, image_url, created_at, updated_at"

// Create inserts b and sets its ID and timestamps.
func (r *BoatRepo) Create(ctx context.Context, b *model.Boat) error {
	b.CreatedAt, b.UpdatedAt = now(), now()
	id, err := insertID(ctx, r.db,
		"INSERT INTO boats (operator_id, name, capacity, boat_type, image_url, created_at, updated_at) VALUES (?,?,?,?,?,?,?)",
		b.OperatorID, b.Name, b.Capacity, b.BoatType, b.ImageURL, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// GetByID returns ErrNotFound when no boat has id.
func (r *BoatRepo) GetByID(ctx context.Context, id uint64) (*model.Boat, error) {
	var b model.Boat
	if err := r.db.GetContext(ctx, &b, "SELECT "+boatColumns+" FROM boats WHERE id = ?", id); err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

// List returns all boats, optionally restricted to one operator.
func (r *BoatRepo) List(ctx context.Context, operatorID uint64) ([]model.Boat, error) {
	out := []model.Boat{}
	q := "SELECT " + boatColumns + " FROM boats"
	var args []interface{}
	if operatorID > 0 {
		q += " WHERE operator_id = ?"
		args = append(args, operatorID)
	}
	err := r.db.SelectContext(ctx, &out, q+" ORDER BY name, id", args...)
	return out, err
}

// FindByName is used by the seeder for natural-key upserts.
func (r *BoatRepo) FindByName(ctx context.Context, operatorID uint64, name string) (*model.Boat, error) {
	var b model.Boat
	err := r.db.GetContext(ctx, &b, "SELECT "+boatColumns+" FROM boats WHERE operator_id = ? AND name = ? LIMIT 1", operatorID, name)
	if err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

// Update rewrites every mutable column of b.
func (r *BoatRepo) Update(ctx context.Context, b *model.Boat) error {
	b.UpdatedAt = now()
	return affected(r.db.ExecContext(ctx,
		"UPDATE boats SET operator_id = ?, name = ?, capacity = ?, boat_type = ?, image_url = ?, updated_at = ? WHERE id = ?",
		b.OperatorID, b.Name, b.Capacity, b.BoatType, b.ImageURL, b.UpdatedAt, b.ID))
}

// Delete removes a boat.  Boats with schedules yield ErrConflict.
func (r *BoatRepo) Delete(ctx context.Context, id uint64) error {
	return affected(r.db.ExecContext(ctx, "DELETE FROM boats WHERE id = ?", id))
}
