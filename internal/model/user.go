package model

import "time"

// Roles stored in users.role and carried in the access token "role" claim.
const (
	RoleAdmin           = "ADMIN"
	RoleOperator        = "OPERATOR"
	RoleRestaurantOwner = "RESTAURANT_OWNER"
	RoleTourist         = "TOURIST"
)

// User represents an application user record as stored in the `users`
// table.  PasswordHash never leaves the server.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hashed password.
//	Name         – display name.
//	Phone        – optional contact number.
//	Role         – one of the Role* constants.
type User struct {
	ID           uint64    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
	ID        uint64     `db:"id"`
	UserID    uint64     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleRestaurantOwner, RoleTourist:
		return true
	}
	return false
}
