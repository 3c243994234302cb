package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/selvawasi/selvawasi-api/internal/model"
)

// ReservationRepo manages restaurant table reservations.
type ReservationRepo struct{ db *sqlx.DB }

// NewReservationRepo constructs a ReservationRepo.
func NewReservationRepo(db *sqlx.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationView carries the restaurant's name and owner so callers can
// render and authorise without a second query.
type ReservationView struct {
	model.RestaurantReservation
	RestaurantName string `db:"restaurant_name" json:"restaurant_name"`
	OwnerID        uint64 `db:"owner_id" json:"-"`
	UserName       string `db:"user_name" json:"user_name"`
}

const reservationViewSelect = `
SELECT rr.id, rr.user_id, rr.restaurant_id, rr.pax, rr.requested_date, rr.notes, rr.status, rr.created_at, rr.updated_at,
       r.name AS restaurant_name, r.owner_id, u.name AS user_name
FROM restaurant_reservations rr
JOIN restaurants r ON r.id = rr.restaurant_id
JOIN users u ON u.id = rr.user_id`

// Create inserts res and sets its ID.
func (r *ReservationRepo) Create(ctx context.Context, res *model.RestaurantReservation) error {
	res.CreatedAt, res.UpdatedAt = now(), now()
	id, err := insertID(ctx, r.db,
		`INSERT INTO restaurant_reservations (user_id, restaurant_id, pax, requested_date, notes, status, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		res.UserID, res.RestaurantID, res.Pax, res.RequestedDate.UTC(), res.Notes, res.Status, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return err
	}
	res.ID = id
	return nil
}

// GetByID returns ErrNotFound for an unknown id.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*ReservationView, error) {
	var v ReservationView
	if err := r.db.GetContext(ctx, &v, reservationViewSelect+" WHERE rr.id = ?", id); err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

// ListByUser returns the reservations a traveller made, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationView, error) {
	out := []ReservationView{}
	err := r.db.SelectContext(ctx, &out, reservationViewSelect+" WHERE rr.user_id = ? ORDER BY rr.created_at DESC, rr.id DESC", userID)
	return out, err
}

// ListForOwner returns reservations of the restaurants owned by ownerID.
// A zero ownerID lists every reservation (admin view).
func (r *ReservationRepo) ListForOwner(ctx context.Context, ownerID uint64, status string) ([]ReservationView, error) {
	q := reservationViewSelect + " WHERE 1=1"
	var args []interface{}
	if ownerID > 0 {
		q += " AND r.owner_id = ?"
		args = append(args, ownerID)
	}
	if status != "" {
		q += " AND rr.status = ?"
		args = append(args, status)
	}
	out := []ReservationView{}
	err := r.db.SelectContext(ctx, &out, q+" ORDER BY rr.requested_date, rr.id", args...)
	return out, err
}

// UpdateStatus sets the status column.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	return affected(r.db.ExecContext(ctx,
		"UPDATE restaurant_reservations SET status = ?, updated_at = ? WHERE id = ?", status, now(), id))
}
