package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/selvawasi/selvawasi-api/internal/model"
)

// ScheduleRepo manages departures and their fares.
type ScheduleRepo struct{ db *sqlx.DB }

// NewScheduleRepo constructs a ScheduleRepo.
func NewScheduleRepo(db *sqlx.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// ScheduleView is a schedule joined with its boat and route plus the number
// of CONFIRMED bookings.  Prices and AvailableSeats are filled in Go.
type ScheduleView struct {
	model.Schedule
	BoatName       string        `db:"boat_name" json:"boat_name"`
	BoatCapacity   int           `db:"boat_capacity" json:"boat_capacity"`
	OperatorID     uint64        `db:"operator_id" json:"operator_id"`
	Origin         string        `db:"origin" json:"origin"`
	Destination    string        `db:"destination" json:"destination"`
	OccupiedSeats  int           `db:"occupied_seats" json:"occupied_seats"`
	AvailableSeats int           `db:"-" json:"available_seats"`
	Prices         []model.Price `db:"-" json:"prices"`
}

// ScheduleFilter narrows List.  Zero values are ignored; Date matches the
// UTC calendar day of the departure.
type ScheduleFilter struct {
	Origin      string
	Destination string
	Date        *time.Time
	BoatID      uint64
	RouteID     uint64
}

const scheduleViewSelect = `
SELECT s.id, s.boat_id, s.route_id, s.departure_time, s.arrival_time, s.created_at, s.updated_at,
       b.name AS boat_name, b.capacity AS boat_capacity, b.operator_id,
       r.origin, r.destination,
       (SELECT COUNT(*) FROM bookings bk WHERE bk.schedule_id = s.id AND bk.status = 'CONFIRMED') AS occupied_seats
FROM schedules s
JOIN boats b ON b.id = s.boat_id
JOIN routes r ON r.id = s.route_id`

// Create inserts s without fares.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	return r.insert(ctx, r.db, s)
}

// CreateWithPrices inserts s together with its fares.  Either every row is
// written or none is.
func (r *ScheduleRepo) CreateWithPrices(ctx context.Context, s *model.Schedule, prices []*model.Price) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := r.insert(ctx, tx, s); err != nil {
		return err
	}
	for _, p := range prices {
		p.ScheduleID = s.ID
		if err := r.insertPrice(ctx, tx, p); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *ScheduleRepo) insert(ctx context.Context, ex sqlx.ExecerContext, s *model.Schedule) error {
	s.CreatedAt, s.UpdatedAt = now(), now()
	id, err := insertID(ctx, ex,
		"INSERT INTO schedules (boat_id, route_id, departure_time, arrival_time, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		s.BoatID, s.RouteID, s.DepartureTime.UTC(), s.ArrivalTime.UTC(), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// GetByID returns the bare schedule row.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	var s model.Schedule
	err := r.db.GetContext(ctx, &s,
		"SELECT id, boat_id, route_id, departure_time, arrival_time, created_at, updated_at FROM schedules WHERE id = ?", id)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

// GetView returns the schedule with boat, route, prices and seat counts.
func (r *ScheduleRepo) GetView(ctx context.Context, id uint64) (*ScheduleView, error) {
	var v ScheduleView
	if err := r.db.GetContext(ctx, &v, scheduleViewSelect+" WHERE s.id = ?", id); err != nil {
		return nil, mapErr(err)
	}
	views := []ScheduleView{v}
	if err := r.attachPrices(ctx, views); err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns schedule views ordered by departure.
func (r *ScheduleRepo) List(ctx context.Context, f ScheduleFilter) ([]ScheduleView, error) {
	q := scheduleViewSelect + " WHERE 1=1"
	var args []interface{}
	if f.Origin != "" {
		q += " AND LOWER(r.origin) LIKE ?"
		args = append(args, likePrefix(f.Origin))
	}
	if f.Destination != "" {
		q += " AND LOWER(r.destination) LIKE ?"
		args = append(args, likePrefix(f.Destination))
	}
	if f.Date != nil {
		day := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC)
		q += " AND s.departure_time >= ? AND s.departure_time < ?"
		args = append(args, day, day.AddDate(0, 0, 1))
	}
	if f.BoatID > 0 {
		q += " AND s.boat_id = ?"
		args = append(args, f.BoatID)
	}
	if f.RouteID > 0 {
		q += " AND s.route_id = ?"
		args = append(args, f.RouteID)
	}
	out := []ScheduleView{}
	if err := r.db.SelectContext(ctx, &out, q+" ORDER BY s.departure_time, s.id", args...); err != nil {
		return nil, err
	}
	if err := r.attachPrices(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachPrices loads prices for all views in one query and computes the
// remaining seats.
func (r *ScheduleRepo) attachPrices(ctx context.Context, views []ScheduleView) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]uint64, len(views))
	for i := range views {
		ids[i] = views[i].ID
		views[i].Prices = []model.Price{}
		if free := views[i].BoatCapacity - views[i].OccupiedSeats; free > 0 {
			views[i].AvailableSeats = free
		}
	}
	q, args, err := sqlx.In("SELECT "+priceColumns+" FROM prices WHERE schedule_id IN (?) ORDER BY amount_cents, id", ids)
	if err != nil {
		return err
	}
	var prices []model.Price
	if err := r.db.SelectContext(ctx, &prices, r.db.Rebind(q), args...); err != nil {
		return err
	}
	idx := make(map[uint64]int, len(views))
	for i := range views {
		idx[views[i].ID] = i
	}
	for _, p := range prices {
		if i, ok := idx[p.ScheduleID]; ok {
			views[i].Prices = append(views[i].Prices, p)
		}
	}
	return nil
}

// Update rewrites boat, route and times of s.
func (r *ScheduleRepo) Update(ctx context.Context, s *model.Schedule) error {
	s.UpdatedAt = now()
	return affected(r.db.ExecContext(ctx,
		"UPDATE schedules SET boat_id = ?, route_id = ?, departure_time = ?, arrival_time = ?, updated_at = ? WHERE id = ?",
		s.BoatID, s.RouteID, s.DepartureTime.UTC(), s.ArrivalTime.UTC(), s.UpdatedAt, s.ID))
}

// Delete removes a schedule and, by cascade, its prices.  Schedules with
// bookings yield ErrConflict.
func (r *ScheduleRepo) Delete(ctx context.Context, id uint64) error {
	return affected(r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id))
}

// FindOverlapping returns the schedules of a boat whose [departure,
// arrival) interval intersects [start, end).  excludeID skips the schedule
// being edited; pass 0 on create.
func (r *ScheduleRepo) FindOverlapping(ctx context.Context, boatID, excludeID uint64, start, end time.Time) ([]model.Schedule, error) {
	out := []model.Schedule{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, boat_id, route_id, departure_time, arrival_time, created_at, updated_at
		 FROM schedules
		 WHERE boat_id = ? AND id <> ? AND NOT (arrival_time <= ? OR departure_time >= ?)
		 ORDER BY departure_time, id`,
		boatID, excludeID, start.UTC(), end.UTC())
	return out, err
}

const priceColumns = "id, schedule_id, amount_cents, currency, seat_type, created_at"

// CreatePrice adds a fare to a schedule.
func (r *ScheduleRepo) CreatePrice(ctx context.Context, p *model.Price) error {
	return r.insertPrice(ctx, r.db, p)
}

// insertPrice fills the PEN / STANDARD defaults before writing p.
func (r *ScheduleRepo) insertPrice(ctx context.Context, ex sqlx.ExecerContext, p *model.Price) error {
	if p.Currency == "" {
		p.Currency = model.DefaultCurrency
	}
	if p.SeatType == "" {
		p.SeatType = model.DefaultSeatType
	}
	p.CreatedAt = now()
	id, err := insertID(ctx, ex,
		"INSERT INTO prices (schedule_id, amount_cents, currency, seat_type, created_at) VALUES (?,?,?,?,?)",
		p.ScheduleID, p.AmountCents, p.Currency, p.SeatType, p.CreatedAt)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// ListPrices returns the fares of one schedule, cheapest first.
func (r *ScheduleRepo) ListPrices(ctx context.Context, scheduleID uint64) ([]model.Price, error) {
	out := []model.Price{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+priceColumns+" FROM prices WHERE schedule_id = ? ORDER BY amount_cents, id", scheduleID)
	return out, err
}

// GetPrice returns ErrNotFound for an unknown id.
func (r *ScheduleRepo) GetPrice(ctx context.Context, id uint64) (*model.Price, error) {
	var p model.Price
	if err := r.db.GetContext(ctx, &p, "SELECT "+priceColumns+" FROM prices WHERE id = ?", id); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// UpdatePrice rewrites amount, currency and seat type of p.
func (r *ScheduleRepo) UpdatePrice(ctx context.Context, p *model.Price) error {
	return affected(r.db.ExecContext(ctx,
		"UPDATE prices SET amount_cents = ?, currency = ?, seat_type = ? WHERE id = ?",
		p.AmountCents, p.Currency, p.SeatType, p.ID))
}

// DeletePrice removes one fare.
func (r *ScheduleRepo) DeletePrice(ctx context.Context, id uint64) error {
	return affected(r.db.ExecContext(ctx, "DELETE FROM prices WHERE id = ?", id))
}
