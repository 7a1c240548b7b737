// Package memory provides a thread-safe in-memory implementation of the
// storage interfaces. It is intended for tests and local development and
// deliberately keeps the implementation simple.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rosewood-bakery/storefront/internal/app/domain/cart"
	"github.com/rosewood-bakery/storefront/internal/app/domain/category"
	"github.com/rosewood-bakery/storefront/internal/app/domain/favorite"
	"github.com/rosewood-bakery/storefront/internal/app/domain/order"
	"github.com/rosewood-bakery/storefront/internal/app/domain/product"
	"github.com/rosewood-bakery/storefront/internal/app/domain/user"
)

// Store is the in-memory persistence layer.
type Store struct {
	mu         sync.RWMutex
	nextID     int64
	products   map[string]product.Product
	categories map[string]category.Category
	orders     map[string]order.Order
	users      map[string]user.User
	favorites  map[string]favorite.Favorite
	carts      map[string]cart.Snapshot
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:     1,
		products:   make(map[string]product.Product),
		categories: make(map[string]category.Category),
		orders:     make(map[string]order.Order),
		users:      make(map[string]user.User),
		favorites:  make(map[string]favorite.Favorite),
		carts:      make(map[string]cart.Snapshot),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// ProductStore implementation ------------------------------------------------

func (s *Store) CreateProduct(_ context.Context, p product.Product) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	} else if _, exists := s.products[p.ID]; exists {
		return product.Product{}, fmt.Errorf("product %s already exists", p.ID)
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	s.products[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProduct(_ context.Context, p product.Product) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.products[p.ID]
	if !ok {
		return product.Product{}, fmt.Errorf("product %s: %w", p.ID, sql.ErrNoRows)
	}

	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return product.Product{}, fmt.Errorf("product %s: %w", id, sql.ErrNoRows)
	}
	return p, nil
}

func (s *Store) ListProducts(_ context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, p)
	}
	sortByCreated(result, func(p product.Product) (time.Time, string) { return p.CreatedAt, p.ID })
	return result, nil
}

func (s *Store) ListProductsByCategory(_ context.Context, categoryID string) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]product.Product, 0)
	for _, p := range s.products {
		if p.CategoryID == categoryID {
			result = append(result, p)
		}
	}
	sortByCreated(result, func(p product.Product) (time.Time, string) { return p.CreatedAt, p.ID })
	return result, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, sql.ErrNoRows)
	}
	delete(s.products, id)
	return nil
}

// CategoryStore implementation -----------------------------------------------

func (s *Store) CreateCategory(_ context.Context, c category.Category) (category.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = s.nextIDLocked()
	} else if _, exists := s.categories[c.ID]; exists {
		return category.Category{}, fmt.Errorf("category %s already exists", c.ID)
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c category.Category) (category.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.categories[c.ID]
	if !ok {
		return category.Category{}, fmt.Errorf("category %s: %w", c.ID, sql.ErrNoRows)
	}

	c.CreatedAt = original.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return category.Category{}, fmt.Errorf("category %s: %w", id, sql.ErrNoRows)
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context) ([]category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]category.Category, 0, len(s.categories))
	for _, c := range s.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("category %s: %w", id, sql.ErrNoRows)
	}
	delete(s.categories, id)
	return nil
}

// OrderStore implementation --------------------------------------------------

func (s *Store) CreateOrder(_ context.Context, o order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = s.nextIDLocked()
	} else if _, exists := s.orders[o.ID]; exists {
		return order.Order{}, fmt.Errorf("order %s already exists", o.ID)
	}

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	o.Items = cloneItems(o.Items)

	s.orders[o.ID] = o
	return cloneOrder(o), nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, id string, status order.Status) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, fmt.Errorf("order %s: %w", id, sql.ErrNoRows)
	}

	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	return cloneOrder(o), nil
}

func (s *Store) GetOrder(_ context.Context, id string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, fmt.Errorf("order %s: %w", id, sql.ErrNoRows)
	}
	return cloneOrder(o), nil
}

func (s *Store) ListOrders(_ context.Context) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		result = append(result, cloneOrder(o))
	}
	sortByCreated(result, func(o order.Order) (time.Time, string) { return o.CreatedAt, o.ID })
	return result, nil
}

func (s *Store) ListOrdersByUser(_ context.Context, userID string) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]order.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			result = append(result, cloneOrder(o))
		}
	}
	sortByCreated(result, func(o order.Order) (time.Time, string) { return o.CreatedAt, o.ID })
	return result, nil
}

func (s *Store) OrderStats(_ context.Context, dayStart time.Time) (order.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats order.Stats
	for _, o := range s.orders {
		stats.TotalOrders++
		switch o.Status {
		case order.StatusPending:
			stats.PendingOrders++
		case order.StatusCompleted:
			stats.CompletedOrders++
		}
		if o.Status != order.StatusCancelled {
			stats.Revenue += o.Total
		}
		if !o.CreatedAt.Before(dayStart) {
			stats.OrdersToday++
		}
	}
	return stats, nil
}

// UserStore implementation ---------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = s.nextIDLocked()
	} else if _, exists := s.users[u.ID]; exists {
		return user.User{}, fmt.Errorf("user %s already exists", u.ID)
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.User{}, fmt.Errorf("email %s already registered", u.Email)
		}
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.users[u.ID]
	if !ok {
		return user.User{}, fmt.Errorf("user %s: %w", u.ID, sql.ErrNoRows)
	}

	u.CreatedAt = original.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, fmt.Errorf("user %s: %w", id, sql.ErrNoRows)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, fmt.Errorf("user %s: %w", email, sql.ErrNoRows)
}

// FavoriteStore implementation -----------------------------------------------

func favKey(userID, productID string) string {
	return userID + "/" + productID
}

func (s *Store) CreateFavorite(_ context.Context, f favorite.Favorite) (favorite.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := favKey(f.UserID, f.ProductID)
	if _, exists := s.favorites[key]; exists {
		return favorite.Favorite{}, fmt.Errorf("favorite for product %s already exists", f.ProductID)
	}

	if f.ID == "" {
		f.ID = s.nextIDLocked()
	}
	f.CreatedAt = time.Now().UTC()

	s.favorites[key] = f
	return f, nil
}

func (s *Store) DeleteFavorite(_ context.Context, userID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := favKey(userID, productID)
	if _, ok := s.favorites[key]; !ok {
		return fmt.Errorf("favorite for product %s: %w", productID, sql.ErrNoRows)
	}
	delete(s.favorites, key)
	return nil
}

func (s *Store) GetFavorite(_ context.Context, userID, productID string) (favorite.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.favorites[favKey(userID, productID)]
	if !ok {
		return favorite.Favorite{}, fmt.Errorf("favorite for product %s: %w", productID, sql.ErrNoRows)
	}
	return f, nil
}

func (s *Store) ListFavorites(_ context.Context, userID string) ([]favorite.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]favorite.Favorite, 0)
	for _, f := range s.favorites {
		if f.UserID == userID {
			result = append(result, f)
		}
	}
	sortByCreated(result, func(f favorite.Favorite) (time.Time, string) { return f.CreatedAt, f.ID })
	return result, nil
}

// CartStore implementation ---------------------------------------------------

func (s *Store) LoadCart(_ context.Context, sessionID string) (cart.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.carts[sessionID]
	if !ok {
		return cart.Snapshot{}, false, nil
	}
	return cloneSnapshot(snap), true, nil
}

func (s *Store) SaveCart(_ context.Context, sessionID string, snap cart.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[sessionID] = cloneSnapshot(snap)
	return nil
}

func (s *Store) DeleteCart(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}

// Helpers ----------------------------------------------------------------------

func cloneOrder(o order.Order) order.Order {
	o.Items = cloneItems(o.Items)
	return o
}

func cloneItems(items []order.LineItem) []order.LineItem {
	if items == nil {
		return nil
	}
	out := make([]order.LineItem, len(items))
	copy(out, items)
	return out
}

func cloneSnapshot(snap cart.Snapshot) cart.Snapshot {
	if snap.Lines != nil {
		lines := make([]cart.Line, len(snap.Lines))
		copy(lines, snap.Lines)
		snap.Lines = lines
	}
	return snap
}

func sortByCreated[T any](items []T, key func(T) (time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if ti.Equal(tj) {
			if len(idi) != len(idj) {
				return len(idi) < len(idj)
			}
			return idi < idj
		}
		return ti.Before(tj)
	})
}
