package model

import "time"

// Operator is the transport/tour company profile of an OPERATOR user.  A
// user owns at most one operator; boats and experiences hang off it.
type Operator struct {
	ID          uint64    `db:"id" json:"id"`
	UserID      uint64    `db:"user_id" json:"user_id"`
	CompanyName string    `db:"company_name" json:"company_name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
