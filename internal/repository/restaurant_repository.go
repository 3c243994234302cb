package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/selvawasi/selvawasi-api/internal/model"
)

// RestaurantRepo manages restaurants together with their dishes and
// reviews.
type RestaurantRepo struct{ db *sqlx.DB }

// NewRestaurantRepo constructs a RestaurantRepo.
func NewRestaurantRepo(db *sqlx.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

// RestaurantView adds the rating summary and, for single reads, the menu
// and reviews.
type RestaurantView struct {
	model.Restaurant
	AvgRating   *float64       `db:"avg_rating" json:"avg_rating,omitempty"`
	ReviewCount int            `db:"review_count" json:"review_count"`
	Dishes      []model.Dish   `db:"-" json:"dishes,omitempty"`
	Reviews     []model.Review `db:"-" json:"reviews,omitempty"`
}

const restaurantColumns = "id, owner_id, name, description, address, cuisine, phone, image_url, created_at, updated_at"

const restaurantViewSelect = `
SELECT r.id, r.owner_id, r.name, r.description, r.address, r.cuisine, r.phone, r.image_url, r.created_at, r.updated_at,
       (SELECT AVG(rating) FROM reviews rv WHERE rv.restaurant_id = r.id) AS avg_rating,
       (SELECT COUNT(*) FROM reviews rv WHERE rv.restaurant_id = r.id) AS review_count
FROM restaurants r`

// Create inserts rs.  Each owner may hold a single restaurant.
func (r *RestaurantRepo) Create(ctx context.Context, rs *model.Restaurant) error {
	rs.CreatedAt, rs.UpdatedAt = now(), now()
	id, err := insertID(ctx, r.db,
		`INSERT INTO restaurants (owner_id, name, description, address, cuisine, phone, image_url, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		rs.OwnerID, rs.Name, rs.Description, rs.Address, rs.Cuisine, rs.Phone, rs.ImageURL, rs.CreatedAt, rs.UpdatedAt)
	if err != nil {
		return err
	}
	rs.ID = id
	return nil
}

// GetByID returns the bare restaurant row.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	var rs model.Restaurant
	if err := r.db.GetContext(ctx, &rs, "SELECT "+restaurantColumns+" FROM restaurants WHERE id = ?", id); err != nil {
		return nil, mapErr(err)
	}
	return &rs, nil
}

// GetByOwner returns the restaurant of a RESTAURANT_OWNER.
func (r *RestaurantRepo) GetByOwner(ctx context.Context, ownerID uint64) (*model.Restaurant, error) {
	var rs model.Restaurant
	if err := r.db.GetContext(ctx, &rs, "SELECT "+restaurantColumns+" FROM restaurants WHERE owner_id = ?", ownerID); err != nil {
		return nil, mapErr(err)
	}
	return &rs, nil
}

// GetView returns the restaurant with rating summary, dishes and reviews.
func (r *RestaurantRepo) GetView(ctx context.Context, id uint64) (*RestaurantView, error) {
	var v RestaurantView
	if err := r.db.GetContext(ctx, &v, restaurantViewSelect+" WHERE r.id = ?", id); err != nil {
		return nil, mapErr(err)
	}
	var err error
	if v.Dishes, err = r.ListDishes(ctx, id); err != nil {
		return nil, err
	}
	if v.Reviews, err = r.ListReviews(ctx, id); err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns restaurants with their rating summary, filtered by cuisine
// prefix when given.
func (r *RestaurantRepo) List(ctx context.Context, cuisine string) ([]RestaurantView, error) {
	q := restaurantViewSelect
	var args []interface{}
	if cuisine != "" {
		q += " WHERE LOWER(r.cuisine) LIKE ?"
		args = append(args, likePrefix(cuisine))
	}
	out := []RestaurantView{}
	err := r.db.SelectContext(ctx, &out, q+" ORDER BY r.name, r.id", args...)
	return out, err
}

// Update rewrites every mutable column of rs.
func (r *RestaurantRepo) Update(ctx context.Context, rs *model.Restaurant) error {
	rs.UpdatedAt = now()
	return affected(r.db.ExecContext(ctx,
		`UPDATE restaurants SET name = ?, description = ?, address = ?, cuisine = ?, phone = ?, image_url = ?, updated_at = ?
		 WHERE id = ?`,
		rs.Name, rs.Description, rs.Address, rs.Cuisine, rs.Phone, rs.ImageURL, rs.UpdatedAt, rs.ID))
}

// Delete removes a restaurant with its dishes and reviews.  Restaurants
// with reservations yield ErrConflict.
func (r *RestaurantRepo) Delete(ctx context.Context, id uint64) error {
	return affected(r.db.ExecContext(ctx, "DELETE FROM restaurants WHERE id = ?", id))
}

const dishColumns = "id, restaurant_id, name, description, price_cents, created_at"

// CreateDish adds d to its restaurant's menu.
func (r *RestaurantRepo) CreateDish(ctx context.Context, d *model.Dish) error {
	d.CreatedAt = now()
	id, err := insertID(ctx, r.db,
		"INSERT INTO dishes (restaurant_id, name, description, price_cents, created_at) VALUES (?,?,?,?,?)",
		d.RestaurantID, d.Name, d.Description, d.PriceCents, d.CreatedAt)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

// GetDish returns ErrNotFound for an unknown id.
func (r *RestaurantRepo) GetDish(ctx context.Context, id uint64) (*model.Dish, error) {
	var d model.Dish
	if err := r.db.GetContext(ctx, &d, "SELECT "+dishColumns+" FROM dishes WHERE id = ?", id); err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

// ListDishes returns a restaurant's menu ordered by name.
func (r *RestaurantRepo) ListDishes(ctx context.Context, restaurantID uint64) ([]model.Dish, error) {
	out := []model.Dish{}
	err := r.db.SelectContext(ctx, &out, "SELECT "+dishColumns+" FROM dishes WHERE restaurant_id = ? ORDER BY name, id", restaurantID)
	return out, err
}

// DeleteDish removes one menu entry.
func (r *RestaurantRepo) DeleteDish(ctx context.Context, id uint64) error {
	return affected(r.db.ExecContext(ctx, "DELETE FROM dishes WHERE id = ?", id))
}

const reviewColumns = "id, restaurant_id, user_id, rating, comment, created_at"

// CreateReview stores rv.  Ratings are 1 to 5.
func (r *RestaurantRepo) CreateReview(ctx context.Context, rv *model.Review) error {
	rv.CreatedAt = now()
	id, err := insertID(ctx, r.db,
		"INSERT INTO reviews (restaurant_id, user_id, rating, comment, created_at) VALUES (?,?,?,?,?)",
		rv.RestaurantID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt)
	if err != nil {
		return err
	}
	rv.ID = id
	return nil
}

// ListReviews returns reviews newest first.
func (r *RestaurantRepo) ListReviews(ctx context.Context, restaurantID uint64) ([]model.Review, error) {
	out := []model.Review{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+reviewColumns+" FROM reviews WHERE restaurant_id = ? ORDER BY created_at DESC, id DESC", restaurantID)
	return out, err
}
