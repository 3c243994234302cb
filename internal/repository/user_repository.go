package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/selvawasi/selvawasi-api/internal/database"
	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/utils"
)

type UserRepo struct{ db *sqlx.DB }

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, email, password_hash, name, phone, role, created_at, updated_at"

// Create hashes the password, inserts the user and populates ID and
// timestamps on u.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.CreatedAt, u.UpdatedAt = now(), now()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, name, phone, role, created_at, updated_at) VALUES (?,?,?,?,?,?,?)",
		u.Email, u.PasswordHash, u.Name, u.Phone, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	if err := r.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := r.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// SetRole changes a user's role.  The seeder uses it to promote fixture
// accounts.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role string) error {
	return affected(r.db.ExecContext(ctx, "UPDATE users SET role = ?, updated_at = ? WHERE id = ?", role, now(), id))
}
