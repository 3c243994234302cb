package model

import (
	"encoding/json"
	"time"
)

// Experience is an eco-tourism activity sold by an operator.  Images holds
// the JSON-encoded list of image URLs exactly as stored; it is expanded to
// an array when the experience is serialised.
type Experience struct {
	ID          uint64    `db:"id" json:"id"`
	OperatorID  uint64    `db:"operator_id" json:"operator_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	Duration    string    `db:"duration" json:"duration"`
	Location    string    `db:"location" json:"location"`
	Images      string    `db:"images" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ImageList decodes Images.  Malformed values decode to an empty list.
func (e Experience) ImageList() []string {
	var out []string
	if err := json.Unmarshal([]byte(e.Images), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// EncodeImages is the inverse of ImageList.
func EncodeImages(urls []string) string {
	if len(urls) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(urls)
	return string(b)
}

func (e Experience) MarshalJSON() ([]byte, error) {
	type plain Experience
	return json.Marshal(struct {
		plain
		Images []string `json:"images"`
	}{plain: plain(e), Images: e.ImageList()})
}
