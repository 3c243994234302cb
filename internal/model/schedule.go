package model

import "time"

// Schedule is a single departure of a boat on a route.
type Schedule struct {
	ID            uint64    `db:"id" json:"id"`
	BoatID        uint64    `db:"boat_id" json:"boat_id"`
	RouteID       uint64    `db:"route_id" json:"route_id"`
	DepartureTime time.Time `db:"departure_time" json:"departure_time"`
	ArrivalTime   time.Time `db:"arrival_time" json:"arrival_time"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Price is a fare for one seat type on a schedule.
type Price struct {
	ID          uint64    `db:"id" json:"id"`
	ScheduleID  uint64    `db:"schedule_id" json:"schedule_id"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	Currency    string    `db:"currency" json:"currency"`
	SeatType    string    `db:"seat_type" json:"seat_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Default price attributes.
const (
	DefaultCurrency = "PEN"
	DefaultSeatType = "STANDARD"
)
