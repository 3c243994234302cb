package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/selvawasi/selvawasi-api/internal/model"
)

// OperatorRepo manages transport/tour company profiles.
type OperatorRepo struct{ db *sqlx.DB }

// NewOperatorRepo constructs an OperatorRepo.
func NewOperatorRepo(db *sqlx.DB) *OperatorRepo { return &OperatorRepo{db: db} }

const operatorColumns = "id, user_id, company_name, description, phone, created_at, updated_at"

// Create inserts o.  A second operator for the same user is ErrConflict.
func (r *OperatorRepo) Create(ctx context.Context, o *model.Operator) error {
	o.CreatedAt, o.UpdatedAt = now(), now()
	id, err := insertID(ctx, r.db,
		"INSERT INTO operators (user_id, company_name, description, phone, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		o.UserID, o.CompanyName, o.Description, o.Phone, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}

// GetByID returns ErrNotFound for an unknown id.
func (r *OperatorRepo) GetByID(ctx context.Context, id uint64) (*model.Operator, error) {
	var o model.Operator
	if err := r.db.GetContext(ctx, &o, "SELECT "+operatorColumns+" FROM operators WHERE id = ?", id); err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

// GetByUserID returns the operator profile owned by a user.
func (r *OperatorRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Operator, error) {
	var o model.Operator
	if err := r.db.GetContext(ctx, &o, "SELECT "+operatorColumns+" FROM operators WHERE user_id = ?", userID); err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

// List returns every operator ordered by company name.
func (r *OperatorRepo) List(ctx context.Context) ([]model.Operator, error) {
	out := []model.Operator{}
	err := r.db.SelectContext(ctx, &out, "SELECT "+operatorColumns+" FROM operators ORDER BY company_name, id")
	return out, err
}

// Update writes every mutable column of o.
func (r *OperatorRepo) Update(ctx context.Context, o *model.Operator) error {
	o.UpdatedAt = now()
	return affected(r.db.ExecContext(ctx,
		"UPDATE operators SET company_name = ?, description = ?, phone = ?, updated_at = ? WHERE id = ?",
		o.CompanyName, o.Description, o.Phone, o.UpdatedAt, o.ID))
}

// Delete removes an operator.  Operators that still own boats or
// experiences yield ErrConflict.
func (r *OperatorRepo) Delete(ctx context.Context, id uint64) error {
	return affected(r.db.ExecContext(ctx, "DELETE FROM operators WHERE id = ?", id))
}
