package repository

import (
	"context"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/selvawasi/selvawasi-api/internal/model"
)

// StatsRepo serves the admin dashboard.
type StatsRepo struct{ db *sqlx.DB }

// NewStatsRepo constructs a StatsRepo.
func NewStatsRepo(db *sqlx.DB) *StatsRepo { return &StatsRepo{db: db} }

// Stats are the dashboard counters.  Revenue sums CONFIRMED booking totals.
type Stats struct {
	Users               int   `db:"users" json:"users"`
	Operators           int   `db:"operators" json:"operators"`
	Boats               int   `db:"boats" json:"boats"`
	Routes              int   `db:"routes" json:"routes"`
	Schedules           int   `db:"schedules" json:"schedules"`
	ConfirmedBookings   int   `db:"confirmed_bookings" json:"confirmed_bookings"`
	CancelledBookings   int   `db:"cancelled_bookings" json:"cancelled_bookings"`
	Restaurants         int   `db:"restaurants" json:"restaurants"`
	PendingReservations int   `db:"pending_reservations" json:"pending_reservations"`
	Experiences         int   `db:"experiences" json:"experiences"`
	RevenueCents        int64 `db:"revenue_cents" json:"revenue_cents"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	Kind      string    `db:"kind" json:"kind"`
	ID        uint64    `db:"id" json:"id"`
	UserName  string    `db:"user_name" json:"user_name"`
	Status    string    `db:"status" json:"status"`
	Summary   string    `db:"-" json:"summary"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Activity kinds.
const (
	ActivityBooking     = "booking"
	ActivityReservation = "reservation"
)

// Stats gathers the dashboard counters.
func (r *StatsRepo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.GetContext(ctx, &s, `
SELECT
  (SELECT COUNT(*) FROM users) AS users,
  (SELECT COUNT(*) FROM operators) AS operators,
  (SELECT COUNT(*) FROM boats) AS boats,
  (SELECT COUNT(*) FROM routes) AS routes,
  (SELECT COUNT(*) FROM schedules) AS schedules,
  (SELECT COUNT(*) FROM bookings WHERE status = ?) AS confirmed_bookings,
  (SELECT COUNT(*) FROM bookings WHERE status = ?) AS cancelled_bookings,
  (SELECT COUNT(*) FROM restaurants) AS restaurants,
  (SELECT COUNT(*) FROM restaurant_reservations WHERE status = ?) AS pending_reservations,
  (SELECT COUNT(*) FROM experiences) AS experiences,
  (SELECT COALESCE(SUM(total_price_cents), 0) FROM bookings WHERE status = ?) AS revenue_cents`,
		model.BookingConfirmed, model.BookingCancelled, model.ReservationPendingApproval, model.BookingConfirmed)
	return s, err
}

// activityRow is scanned from both feeds; Summary is derived in Go so the
// query stays portable across dialects.
type activityRow struct {
	Activity
	Origin      *string `db:"origin"`
	Destination *string `db:"destination"`
	Title       *string `db:"title"`
}

func (a activityRow) summarise() Activity {
	out := a.Activity
	switch {
	case a.Origin != nil && a.Destination != nil:
		out.Summary = *a.Origin + " - " + *a.Destination
	case a.Title != nil:
		out.Summary = *a.Title
	}
	return out
}

// RecentActivity merges the latest bookings and reservations, newest first.
func (r *StatsRepo) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	var rows []activityRow
	err := r.db.SelectContext(ctx, &rows, `
SELECT 'booking' AS kind, bk.id, u.name AS user_name, bk.status, bk.created_at,
       r.origin, r.destination, e.title
FROM bookings bk
JOIN users u ON u.id = bk.user_id
LEFT JOIN schedules s ON s.id = bk.schedule_id
LEFT JOIN routes r ON r.id = s.route_id
LEFT JOIN experiences e ON e.id = bk.experience_id
ORDER BY bk.created_at DESC, bk.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	var reservations []activityRow
	err = r.db.SelectContext(ctx, &reservations, `
SELECT 'reservation' AS kind, rr.id, u.name AS user_name, rr.status, rr.created_at,
       NULL AS origin, NULL AS destination, rs.name AS title
FROM restaurant_reservations rr
JOIN users u ON u.id = rr.user_id
JOIN restaurants rs ON rs.id = rr.restaurant_id
ORDER BY rr.created_at DESC, rr.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Activity, 0, len(rows)+len(reservations))
	for _, row := range append(rows, reservations...) {
		out = append(out, row.summarise())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
