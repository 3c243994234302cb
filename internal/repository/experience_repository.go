package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/selvawasi/selvawasi-api/internal/model"
)

// ExperienceRepo manages eco-tourism experiences.
type ExperienceRepo struct{ db *sqlx.DB }

// NewExperienceRepo constructs an ExperienceRepo.
func NewExperienceRepo(db *sqlx.DB) *ExperienceRepo { return &ExperienceRepo{db: db} }

const experienceColumns = "id, operator_id, title, description, price_cents, duration, location, images, created_at, updated_at"

// Create inserts e.  Images must already be JSON encoded.
func (r *ExperienceRepo) Create(ctx context.Context, e *model.Experience) error {
	if e.Images == "" {
		e.Images = "[]"
	}
	e.CreatedAt, e.UpdatedAt = now(), now()
	id, err := insertID(ctx, r.db,
		`INSERT INTO experiences (operator_id, title, description, price_cents, duration, location, images, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		e.OperatorID, e.Title, e.Description, e.PriceCents, e.Duration, e.Location, e.Images, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// GetByID returns ErrNotFound for an unknown id.
func (r *ExperienceRepo) GetByID(ctx context.Context, id uint64) (*model.Experience, error) {
	var e model.Experience
	if err := r.db.GetContext(ctx, &e, "SELECT "+experienceColumns+" FROM experiences WHERE id = ?", id); err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

// List returns experiences, optionally filtered by a location prefix.
func (r *ExperienceRepo) List(ctx context.Context, location string) ([]model.Experience, error) {
	out := []model.Experience{}
	q := "SELECT " + experienceColumns + " FROM experiences"
	var args []interface{}
	if location != "" {
		q += " WHERE LOWER(location) LIKE ?"
		args = append(args, likePrefix(location))
	}
	err := r.db.SelectContext(ctx, &out, q+" ORDER BY title, id", args...)
	return out, err
}

// FindByTitle is used by the seeder for natural-key upserts.
func (r *ExperienceRepo) FindByTitle(ctx context.Context, title string) (*model.Experience, error) {
	var e model.Experience
	if err := r.db.GetContext(ctx, &e, "SELECT "+experienceColumns+" FROM experiences WHERE title = ? LIMIT 1", title); err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

// Update rewrites every mutable column of e.
func (r *ExperienceRepo) Update(ctx context.Context, e *model.Experience) error {
	e.UpdatedAt = now()
	return affected(r.db.ExecContext(ctx,
		`UPDATE experiences SET operator_id = ?, title = ?, description = ?, price_cents = ?, duration = ?,
		 location = ?, images = ?, updated_at = ? WHERE id = ?`,
		e.OperatorID, e.Title, e.Description, e.PriceCents, e.Duration, e.Location, e.Images, e.UpdatedAt, e.ID))
}

// Delete removes an experience.  Experiences with bookings yield ErrConflict.
func (r *ExperienceRepo) Delete(ctx context.Context, id uint64) error {
	return affected(r.db.ExecContext(ctx, "DELETE FROM experiences WHERE id = ?", id))
}
