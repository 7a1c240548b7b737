// Package cart implements the session shopping cart state container.
//
// The cart owns the authoritative list of items a customer intends to
// purchase within one browsing session, together with the sidebar visibility
// flag. Display fields and the unit price are copied from the product at the
// moment an item is added and never re-fetched, so order totals always
// reflect the price the customer saw.
package cart

import (
	"math"

	"github.com/rosewood-bakery/storefront/internal/app/domain/product"
)

// Line is a single product entry in the cart.
type Line struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unit_price"`
	Image        string  `json:"image"`
	Quantity     int     `json:"quantity"`
	PreOrder     bool    `json:"pre_order"`
	MinOrderTime int     `json:"min_order_time"`
}

// Cart holds cart lines in insertion order plus the sidebar visibility flag.
// At most one line exists per product ID, and every present line has
// quantity >= 1; a quantity reaching zero removes the line.
type Cart struct {
	lines []Line
	open  bool
}

// New returns an empty, closed cart.
func New() *Cart {
	return &Cart{}
}

// AddItem inserts a line for the product with quantity 1, or increments the
// quantity when a line for the same product already exists. Prices and
// lead-time fields are snapshotted from the product at call time.
func (c *Cart) AddItem(p product.Product) {
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{
		ProductID:    p.ID,
		Name:         p.Name,
		UnitPrice:    p.Price,
		Image:        p.Image,
		Quantity:     1,
		PreOrder:     p.PreOrder,
		MinOrderTime: p.MinOrderTime,
	})
}

// RemoveItem deletes the line for the product. Absent products are a no-op.
func (c *Cart) RemoveItem(productID string) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity for the product's line. A quantity of
// zero or less removes the line. No upper bound is enforced here; stock
// limits are a presentation concern.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// Clear empties all lines. The visibility flag is untouched.
func (c *Cart) Clear() {
	c.lines = nil
}

// Toggle flips the sidebar visibility flag.
func (c *Cart) Toggle() { c.open = !c.open }

// Open shows the cart sidebar.
func (c *Cart) Open() { c.open = true }

// Close hides the cart sidebar.
func (c *Cart) Close() { c.open = false }

// IsOpen reports the sidebar visibility flag.
func (c *Cart) IsOpen() bool { return c.open }

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalItems returns the sum of quantities across all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice returns the sum of unit price times quantity over all lines,
// rounded to two decimal places for display.
func (c *Cart) TotalPrice() float64 {
	total := 0.0
	for _, line := range c.lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return math.Round(total*100) / 100
}

// MinOrderTime returns the maximum lead time in hours among pre-order
// lines, or zero when no pre-order items are present.
func (c *Cart) MinOrderTime() int {
	max := 0
	for _, line := range c.lines {
		if line.PreOrder && line.MinOrderTime > max {
			max = line.MinOrderTime
		}
	}
	return max
}
