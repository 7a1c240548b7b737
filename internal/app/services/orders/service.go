// Package orders implements checkout and order lifecycle management.
package orders

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rosewood-bakery/storefront/internal/app/domain/cart"
	"github.com/rosewood-bakery/storefront/internal/app/domain/order"
	"github.com/rosewood-bakery/storefront/internal/app/metrics"
	"github.com/rosewood-bakery/storefront/internal/app/services/mailer"
	"github.com/rosewood-bakery/storefront/internal/app/storage"
	"github.com/rosewood-bakery/storefront/pkg/logger"
)

const (
	minNameLen             = 2
	maxNameLen             = 50
	maxSpecialInstructions = 500
)

var (
	nameRe       = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe      = regexp.MustCompile(`^[\+]?[1-9][\d]{0,15}$`)
	pickupTimeRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

// CheckoutInput carries the customer-supplied checkout form.
type CheckoutInput struct {
	SessionID           string `json:"session_id"`
	UserID              string `json:"user_id,omitempty"`
	CustomerName        string `json:"customer_name"`
	CustomerEmail       string `json:"customer_email"`
	CustomerPhone       string `json:"customer_phone"`
	PickupDate          string `json:"pickup_date"`
	PickupTime          string `json:"pickup_time"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

// Service turns carts into orders and drives order status changes.
type Service struct {
	store  storage.OrderStore
	carts  storage.CartStore
	mailer mailer.Sender
	log    *logger.Logger
	now    func() time.Time
}

// New constructs an orders service. A nil sender disables confirmation mail.
func New(store storage.OrderStore, carts storage.CartStore, sender mailer.Sender, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("orders")
	}
	if sender == nil {
		sender = mailer.NoopSender{}
	}
	return &Service{
		store:  store,
		carts:  carts,
		mailer: sender,
		log:    log,
		now:    time.Now,
	}
}

func validateCheckout(in CheckoutInput) error {
	name := strings.TrimSpace(in.CustomerName)
	if len(name) < minNameLen || len(name) > maxNameLen {
		return fmt.Errorf("customer_name must be between %d and %d characters", minNameLen, maxNameLen)
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("customer_name contains invalid characters")
	}
	if !emailRe.MatchString(strings.TrimSpace(in.CustomerEmail)) {
		return fmt.Errorf("customer_email is invalid")
	}
	if phone := strings.TrimSpace(in.CustomerPhone); phone != "" && !phoneRe.MatchString(strings.ReplaceAll(phone, " ", "")) {
		return fmt.Errorf("customer_phone is invalid")
	}
	if !pickupTimeRe.MatchString(strings.TrimSpace(in.PickupTime)) {
		return fmt.Errorf("pickup_time must be HH:MM")
	}
	if len(in.SpecialInstructions) > maxSpecialInstructions {
		return fmt.Errorf("special_instructions must be at most %d characters", maxSpecialInstructions)
	}
	return nil
}

func pickupMoment(date, clock string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("pickup_date must be YYYY-MM-DD")
	}
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("pickup_time must be HH:MM")
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// Checkout converts the session's cart into a pending order. The cart must
// be non-empty, the pickup moment must honor the longest pre-order lead
// time among cart items, and the total is always recomputed server-side.
// The cart is cleared after the order is stored; confirmation mail is best
// effort and never fails the checkout.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (order.Order, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return order.Order{}, fmt.Errorf("session id is required")
	}

	snap, ok, err := s.carts.LoadCart(ctx, in.SessionID)
	if err != nil {
		return order.Order{}, fmt.Errorf("cart load failed: %w", err)
	}
	c := cart.New()
	if ok {
		if restored, err := cart.FromSnapshot(snap); err == nil {
			c = restored
		} else {
			s.log.WithError(err).WithField("session_id", in.SessionID).Warn("discarding corrupt cart snapshot at checkout")
		}
	}
	if c.TotalItems() == 0 {
		return order.Order{}, fmt.Errorf("cart is empty")
	}

	if err := validateCheckout(in); err != nil {
		return order.Order{}, err
	}

	pickup, err := pickupMoment(in.PickupDate, in.PickupTime)
	if err != nil {
		return order.Order{}, err
	}
	if lead := c.MinOrderTime(); lead > 0 {
		earliest := s.now().UTC().Add(time.Duration(lead) * time.Hour)
		if pickup.Before(earliest) {
			return order.Order{}, fmt.Errorf("pickup must be at least %d hours from now", lead)
		}
	} else if pickup.Before(s.now().UTC()) {
		return order.Order{}, fmt.Errorf("pickup must be in the future")
	}

	items := make([]order.LineItem, 0, len(c.Lines()))
	for _, line := range c.Lines() {
		items = append(items, order.LineItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
		})
	}

	o := order.Order{
		UserID:              strings.TrimSpace(in.UserID),
		CustomerName:        strings.TrimSpace(in.CustomerName),
		CustomerEmail:       strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:       strings.ReplaceAll(strings.TrimSpace(in.CustomerPhone), " ", ""),
		PickupDate:          pickup.Truncate(24 * time.Hour),
		PickupTime:          strings.TrimSpace(in.PickupTime),
		SpecialInstructions: strings.TrimSpace(in.SpecialInstructions),
		Items:               items,
		Total:               c.TotalPrice(),
		Status:              order.StatusPending,
	}

	created, err := s.store.CreateOrder(ctx, o)
	if err != nil {
		return order.Order{}, err
	}

	if err := s.carts.DeleteCart(ctx, in.SessionID); err != nil {
		s.log.WithError(err).WithField("session_id", in.SessionID).Warn("cart clear after checkout failed")
	}

	s.log.WithField("order_id", created.ID).
		WithField("total", created.Total).
		WithField("items", len(created.Items)).
		Info("order placed")
	metrics.RecordOrderPlaced(created.Total)

	if err := s.mailer.Send(ctx, confirmationMessage(created)); err != nil {
		s.log.WithError(err).WithField("order_id", created.ID).Warn("confirmation mail failed")
	}

	return created, nil
}

func confirmationMessage(o order.Order) mailer.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>Thank you for your order, %s!</h1>", o.CustomerName)
	fmt.Fprintf(&b, "<p>Order %s is confirmed for pickup on %s at %s.</p>", o.ID, o.PickupDate.Format("January 2, 2006"), o.PickupTime)
	b.WriteString("<ul>")
	for _, item := range o.Items {
		fmt.Fprintf(&b, "<li>%d x %s ($%.2f)</li>", item.Quantity, item.Name, item.Price)
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, "<p>Total: $%.2f</p>", o.Total)
	return mailer.Message{
		To:      o.CustomerEmail,
		Subject: fmt.Sprintf("Order confirmation %s", o.ID),
		HTML:    b.String(),
	}
}

// UpdateStatus advances an order through its lifecycle. Disallowed
// transitions return *order.InvalidTransitionError.
func (s *Service) UpdateStatus(ctx context.Context, id string, next order.Status) (order.Order, error) {
	if !next.Valid() {
		return order.Order{}, fmt.Errorf("unknown order status %q", next)
	}

	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	if !current.Status.CanTransition(next) {
		return order.Order{}, &order.InvalidTransitionError{From: current.Status, To: next}
	}

	updated, err := s.store.UpdateOrderStatus(ctx, id, next)
	if err != nil {
		return order.Order{}, err
	}
	s.log.WithField("order_id", id).
		WithField("from", current.Status).
		WithField("to", next).
		Info("order status updated")
	metrics.RecordStatusTransition(string(current.Status), string(next))
	return updated, nil
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, id string) (order.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// List returns all orders, newest first.
func (s *Service) List(ctx context.Context) ([]order.Order, error) {
	return s.store.ListOrders(ctx)
}

// ListByUser returns the orders placed by one account.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	return s.store.ListOrdersByUser(ctx, userID)
}

// Stats aggregates order volume for the admin dashboard. Today's window
// starts at UTC midnight.
func (s *Service) Stats(ctx context.Context) (order.Stats, error) {
	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.store.OrderStats(ctx, dayStart)
}
