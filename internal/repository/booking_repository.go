package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/selvawasi/selvawasi-api/internal/database"
	"github.com/selvawasi/selvawasi-api/internal/model"
)

// BookingRepo manages bookings.  The *Tx methods run inside a transaction
// opened by the booking service so that the capacity check and the insert
// see the same state.
type BookingRepo struct{ db *sqlx.DB }

// NewBookingRepo constructs a BookingRepo.
func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the handle so callers can begin transactions.
func (r *BookingRepo) DB() *sqlx.DB { return r.db }

// BookingView is a booking with a summary of what was booked.
type BookingView struct {
	model.Booking
	UserName        string     `db:"user_name" json:"user_name"`
	Origin          *string    `db:"origin" json:"origin,omitempty"`
	Destination     *string    `db:"destination" json:"destination,omitempty"`
	DepartureTime   *time.Time `db:"departure_time" json:"departure_time,omitempty"`
	BoatName        *string    `db:"boat_name" json:"boat_name,omitempty"`
	ExperienceTitle *string    `db:"experience_title" json:"experience_title,omitempty"`
}

const bookingViewSelect = `
SELECT bk.id, bk.user_id, bk.schedule_id, bk.experience_id, bk.status, bk.total_price_cents, bk.seat_number,
       bk.passenger_name, bk.passenger_document, bk.passenger_phone, bk.ticket_code, bk.created_at, bk.updated_at,
       u.name AS user_name,
       r.origin, r.destination, s.departure_time, b.name AS boat_name,
       e.title AS experience_title
FROM bookings bk
JOIN users u ON u.id = bk.user_id
LEFT JOIN schedules s ON s.id = bk.schedule_id
LEFT JOIN routes r ON r.id = s.route_id
LEFT JOIN boats b ON b.id = s.boat_id
LEFT JOIN experiences e ON e.id = bk.experience_id`

// CapacityForUpdateTx returns the capacity of the boat serving a schedule
// and locks the schedule row until tx ends.  A missing schedule is
// ErrNotFound.
func (r *BookingRepo) CapacityForUpdateTx(ctx context.Context, tx *sqlx.Tx, scheduleID uint64) (int, error) {
	var capacity int
	q := "SELECT b.capacity FROM schedules s JOIN boats b ON b.id = s.boat_id WHERE s.id = ?" + database.LockClause(r.db.DriverName())
	if err := tx.GetContext(ctx, &capacity, q, scheduleID); err != nil {
		return 0, mapErr(err)
	}
	return capacity, nil
}

// ConfirmedSeatsTx lists the seat numbers held by CONFIRMED bookings.
func (r *BookingRepo) ConfirmedSeatsTx(ctx context.Context, tx *sqlx.Tx, scheduleID uint64) ([]string, error) {
	var seats []string
	err := tx.SelectContext(ctx, &seats,
		"SELECT COALESCE(seat_number, '') FROM bookings WHERE schedule_id = ? AND status = ?",
		scheduleID, model.BookingConfirmed)
	return seats, err
}

// PriceForSeatTx returns the fare for seatType on a schedule, or the
// cheapest fare when that seat type has none.  Zero means no fare exists.
func (r *BookingRepo) PriceForSeatTx(ctx context.Context, tx *sqlx.Tx, scheduleID uint64, seatType string) (int64, error) {
	var prices []model.Price
	err := tx.SelectContext(ctx, &prices,
		"SELECT "+priceColumns+" FROM prices WHERE schedule_id = ? ORDER BY amount_cents, id", scheduleID)
	if err != nil || len(prices) == 0 {
		return 0, err
	}
	for _, p := range prices {
		if p.SeatType == seatType {
			return p.AmountCents, nil
		}
	}
	return prices[0].AmountCents, nil
}

// CreateTx inserts b inside tx.  Duplicate seats surface as ErrConflict.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, b *model.Booking) error {
	return r.insert(ctx, tx, b)
}

// Create inserts b outside of any transaction (experience bookings).
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	return r.insert(ctx, r.db, b)
}

// insert runs on either the pool or a transaction.
func (r *BookingRepo) insert(ctx context.Context, ex sqlx.ExecerContext, b *model.Booking) error {
	b.CreatedAt, b.UpdatedAt = now(), now()
	id, err := insertID(ctx, ex,
		`INSERT INTO bookings (user_id, schedule_id, experience_id, status, total_price_cents, seat_number,
		 passenger_name, passenger_document, passenger_phone, ticket_code, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.UserID, b.ScheduleID, b.ExperienceID, b.Status, b.TotalPriceCents, b.SeatNumber,
		b.PassengerName, b.PassengerDocument, b.PassengerPhone, b.TicketCode, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// GetByID returns one booking with its summary.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*BookingView, error) {
	var v BookingView
	if err := r.db.GetContext(ctx, &v, bookingViewSelect+" WHERE bk.id = ?", id); err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingView, error) {
	out := []BookingView{}
	err := r.db.SelectContext(ctx, &out, bookingViewSelect+" WHERE bk.user_id = ? ORDER BY bk.created_at DESC, bk.id DESC", userID)
	return out, err
}

// List returns all bookings, optionally filtered by status and schedule.
func (r *BookingRepo) List(ctx context.Context, status string, scheduleID uint64) ([]BookingView, error) {
	q := bookingViewSelect + " WHERE 1=1"
	var args []interface{}
	if status != "" {
		q += " AND bk.status = ?"
		args = append(args, status)
	}
	if scheduleID > 0 {
		q += " AND bk.schedule_id = ?"
		args = append(args, scheduleID)
	}
	out := []BookingView{}
	err := r.db.SelectContext(ctx, &out, q+" ORDER BY bk.created_at DESC, bk.id DESC", args...)
	return out, err
}

// Cancel marks a booking CANCELLED and releases its seat.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) error {
	return affected(r.db.ExecContext(ctx,
		"UPDATE bookings SET status = ?, seat_number = NULL, updated_at = ? WHERE id = ?",
		model.BookingCancelled, now(), id))
}

// Delete removes a booking regardless of status.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	return affected(r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id))
}
