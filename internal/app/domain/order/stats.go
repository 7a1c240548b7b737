package order

// Stats is an aggregate view of order volume for the admin dashboard.
type Stats struct {
	TotalOrders     int     `json:"total_orders"`
	PendingOrders   int     `json:"pending_orders"`
	CompletedOrders int     `json:"completed_orders"`
	OrdersToday     int     `json:"orders_today"`
	Revenue         float64 `json:"revenue"`
}
