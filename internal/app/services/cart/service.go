// Package cart exposes session-scoped cart operations over a cart store.
package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/rosewood-bakery/storefront/internal/app/domain/cart"
	"github.com/rosewood-bakery/storefront/internal/app/storage"
	"github.com/rosewood-bakery/storefront/pkg/logger"
)

// View is the cart as returned to callers, with derived totals included.
type View struct {
	Lines        []cart.Line `json:"lines"`
	Open         bool        `json:"open"`
	TotalItems   int         `json:"total_items"`
	TotalPrice   float64     `json:"total_price"`
	MinOrderTime int         `json:"min_order_time"`
}

// Service loads a session's cart, applies a mutation, and saves it back.
// Corrupt stored snapshots are discarded in favor of an empty cart, and a
// failed save never fails the request; the mutation already happened from
// the customer's point of view.
type Service struct {
	store    storage.CartStore
	products storage.ProductStore
	log      *logger.Logger
}

// New constructs a cart service.
func New(store storage.CartStore, products storage.ProductStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("cart")
	}
	return &Service{
		store:    store,
		products: products,
		log:      log,
	}
}

func (s *Service) load(ctx context.Context, sessionID string) *Cart {
	snap, ok, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("cart load failed, starting empty")
		return &Cart{inner: cart.New(), sessionID: sessionID}
	}
	if !ok {
		return &Cart{inner: cart.New(), sessionID: sessionID}
	}
	inner, err := cart.FromSnapshot(snap)
	if err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("discarding corrupt cart snapshot")
		return &Cart{inner: cart.New(), sessionID: sessionID}
	}
	return &Cart{inner: inner, sessionID: sessionID}
}

func (s *Service) save(ctx context.Context, c *Cart) {
	if err := s.store.SaveCart(ctx, c.sessionID, c.inner.Snapshot()); err != nil {
		s.log.WithError(err).WithField("session_id", c.sessionID).Warn("cart save failed")
	}
}

// Cart pairs a domain cart with its owning session.
type Cart struct {
	inner     *cart.Cart
	sessionID string
}

func (s *Service) view(c *Cart) View {
	return View{
		Lines:        c.inner.Lines(),
		Open:         c.inner.IsOpen(),
		TotalItems:   c.inner.TotalItems(),
		TotalPrice:   c.inner.TotalPrice(),
		MinOrderTime: c.inner.MinOrderTime(),
	}
}

// Get returns the session's cart.
func (s *Service) Get(ctx context.Context, sessionID string) (View, error) {
	if strings.TrimSpace(sessionID) == "" {
		return View{}, fmt.Errorf("session id is required")
	}
	return s.view(s.load(ctx, sessionID)), nil
}

// AddItem adds one unit of the product to the session's cart. Out-of-stock
// products are rejected.
func (s *Service) AddItem(ctx context.Context, sessionID, productID string) (View, error) {
	if strings.TrimSpace(sessionID) == "" {
		return View{}, fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(productID) == "" {
		return View{}, fmt.Errorf("product id is required")
	}

	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return View{}, fmt.Errorf("product lookup failed: %w", err)
	}
	if !p.InStock {
		return View{}, fmt.Errorf("product %s is out of stock", productID)
	}

	c := s.load(ctx, sessionID)
	c.inner.AddItem(p)
	s.save(ctx, c)
	s.log.WithField("session_id", sessionID).
		WithField("product_id", productID).
		Info("cart item added")
	return s.view(c), nil
}

// UpdateQuantity sets the quantity for a cart line. Zero or negative
// removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (View, error) {
	if strings.TrimSpace(sessionID) == "" {
		return View{}, fmt.Errorf("session id is required")
	}
	c := s.load(ctx, sessionID)
	c.inner.UpdateQuantity(productID, quantity)
	s.save(ctx, c)
	return s.view(c), nil
}

// RemoveItem deletes a line from the session's cart.
func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (View, error) {
	if strings.TrimSpace(sessionID) == "" {
		return View{}, fmt.Errorf("session id is required")
	}
	c := s.load(ctx, sessionID)
	c.inner.RemoveItem(productID)
	s.save(ctx, c)
	return s.view(c), nil
}

// Clear empties the session's cart lines.
func (s *Service) Clear(ctx context.Context, sessionID string) (View, error) {
	if strings.TrimSpace(sessionID) == "" {
		return View{}, fmt.Errorf("session id is required")
	}
	c := s.load(ctx, sessionID)
	c.inner.Clear()
	s.save(ctx, c)
	s.log.WithField("session_id", sessionID).Info("cart cleared")
	return s.view(c), nil
}

// Toggle flips the cart sidebar visibility flag.
func (s *Service) Toggle(ctx context.Context, sessionID string) (View, error) {
	if strings.TrimSpace(sessionID) == "" {
		return View{}, fmt.Errorf("session id is required")
	}
	c := s.load(ctx, sessionID)
	c.inner.Toggle()
	s.save(ctx, c)
	return s.view(c), nil
}

// SetOpen shows or hides the cart sidebar.
func (s *Service) SetOpen(ctx context.Context, sessionID string, open bool) (View, error) {
	if strings.TrimSpace(sessionID) == "" {
		return View{}, fmt.Errorf("session id is required")
	}
	c := s.load(ctx, sessionID)
	if open {
		c.inner.Open()
	} else {
		c.inner.Close()
	}
	s.save(ctx, c)
	return s.view(c), nil
}
