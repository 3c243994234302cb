package model

import "time"

// Booking statuses.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
	BookingPending   = "PENDING"
)

// Booking is a traveller's seat on a schedule or a place on an experience.
// Exactly one of ScheduleID and ExperienceID is set.  SeatNumber is only
// assigned for schedule bookings and is cleared when the booking is
// cancelled so the seat can be allocated again.
type Booking struct {
	ID                uint64    `db:"id" json:"id"`
	UserID            uint64    `db:"user_id" json:"user_id"`
	ScheduleID        *uint64   `db:"schedule_id" json:"schedule_id,omitempty"`
	ExperienceID      *uint64   `db:"experience_id" json:"experience_id,omitempty"`
	Status            string    `db:"status" json:"status"`
	TotalPriceCents   int64     `db:"total_price_cents" json:"total_price_cents"`
	SeatNumber        *string   `db:"seat_number" json:"seat_number,omitempty"`
	PassengerName     string    `db:"passenger_name" json:"passenger_name"`
	PassengerDocument string    `db:"passenger_document" json:"passenger_document"`
	PassengerPhone    *string   `db:"passenger_phone" json:"passenger_phone,omitempty"`
	TicketCode        string    `db:"ticket_code" json:"ticket_code"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
