package model

import "time"

// Route is an origin/destination pair on the river network.  Geometry holds
// the optional river path as WKB; the API exchanges it as GeoJSON.
type Route struct {
	ID              uint64    `db:"id" json:"id"`
	Origin          string    `db:"origin" json:"origin"`
	Destination     string    `db:"destination" json:"destination"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	DistanceKm      *float64  `db:"distance_km" json:"distance_km,omitempty"`
	Geometry        []byte    `db:"geometry" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
