package model

import "time"

// Restaurant reservation statuses.
const (
	ReservationPendingApproval = "PENDING_APPROVAL"
	ReservationConfirmed       = "CONFIRMED"
	ReservationRejected        = "REJECTED"
)

// RestaurantReservation is a table request that the restaurant owner
// approves or rejects.
type RestaurantReservation struct {
	ID            uint64    `db:"id" json:"id"`
	UserID        uint64    `db:"user_id" json:"user_id"`
	RestaurantID  uint64    `db:"restaurant_id" json:"restaurant_id"`
	Pax           int       `db:"pax" json:"pax"`
	RequestedDate time.Time `db:"requested_date" json:"requested_date"`
	Notes         string    `db:"notes" json:"notes"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
