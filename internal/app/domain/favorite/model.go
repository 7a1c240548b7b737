// Package favorite defines the user favorite entity.
package favorite

import "time"

// Favorite marks a product saved by a user. A user holds at most one
// favorite per product.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}
