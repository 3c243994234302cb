package model

import "time"

// Boat is a river vessel run by an operator.  Capacity bounds the number of
// CONFIRMED bookings on each of its schedules.
type Boat struct {
	ID         uint64    `db:"id" json:"id"`
	OperatorID uint64    `db:"operator_id" json:"operator_id"`
	Name       string    `db:"name" json:"name"`
	Capacity   int       `db:"capacity" json:"capacity"`
	BoatType   string    `db:"boat_type" json:"boat_type"`
	ImageURL   *string   `db:"image_url" json:"image_url,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
