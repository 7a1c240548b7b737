// Package product defines the catalog product entity.
package product

import "time"

// Product is a bakery catalog item. MinOrderTime is the advance notice in
// hours required for pre-order items.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Price        float64   `json:"price"`
	Image        string    `json:"image,omitempty"`
	CategoryID   string    `json:"category_id"`
	InStock      bool      `json:"in_stock"`
	Featured     bool      `json:"featured"`
	PreOrder     bool      `json:"pre_order"`
	MinOrderTime int       `json:"min_order_time"`
	Ingredients  string    `json:"ingredients,omitempty"`
	Allergens    string    `json:"allergens,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
