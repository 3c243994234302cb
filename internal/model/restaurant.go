package model

import "time"

// Restaurant belongs to a RESTAURANT_OWNER user (one per owner).
type Restaurant struct {
	ID          uint64    `db:"id" json:"id"`
	OwnerID     uint64    `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Address     string    `db:"address" json:"address"`
	Cuisine     string    `db:"cuisine" json:"cuisine"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	ImageURL    *string   `db:"image_url" json:"image_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Dish is a menu entry.
type Dish struct {
	ID           uint64    `db:"id" json:"id"`
	RestaurantID uint64    `db:"restaurant_id" json:"restaurant_id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	PriceCents   int64     `db:"price_cents" json:"price_cents"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Review is a 1..5 star rating left by a user.
type Review struct {
	ID           uint64    `db:"id" json:"id"`
	RestaurantID uint64    `db:"restaurant_id" json:"restaurant_id"`
	UserID       uint64    `db:"user_id" json:"user_id"`
	Rating       int       `db:"rating" json:"rating"`
	Comment      string    `db:"comment" json:"comment"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
