// Package order defines the order entity and its status state machine.
package order

import (
	"fmt"
	"time"
)

// Status is the fulfillment state of an order.
type Status string

// Order statuses. StatusPending is the sole initial state; StatusCompleted
// and StatusCancelled are terminal.
const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every valid status.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// transitions is the allowed progression. Cancellation is reachable from any
// non-terminal state; terminal states admit nothing.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports a rejected status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition %s -> %s", e.From, e.To)
}

// LineItem is a product snapshot inside an order: the quantity purchased and
// the unit price at the time the item was added to the cart.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is a customer pickup order created at checkout. Items and Total are
// frozen at creation; only Status changes afterwards, via admin action.
type Order struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id,omitempty"`
	CustomerName        string     `json:"customer_name"`
	CustomerEmail       string     `json:"customer_email"`
	CustomerPhone       string     `json:"customer_phone,omitempty"`
	PickupDate          time.Time  `json:"pickup_date"`
	PickupTime          string     `json:"pickup_time"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
	Items               []LineItem `json:"items"`
	Total               float64    `json:"total"`
	Status              Status     `json:"status"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
