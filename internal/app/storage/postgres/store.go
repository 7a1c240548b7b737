// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/rosewood-bakery/storefront/internal/app/domain/category"
	"github.com/rosewood-bakery/storefront/internal/app/domain/favorite"
	"github.com/rosewood-bakery/storefront/internal/app/domain/order"
	"github.com/rosewood-bakery/storefront/internal/app/domain/product"
	"github.com/rosewood-bakery/storefront/internal/app/domain/user"
	"github.com/rosewood-bakery/storefront/internal/app/storage"
)

// Store implements the storage interfaces over a PostgreSQL handle.
type Store struct {
	db *sql.DB
}

var _ storage.ProductStore = (*Store)(nil)
var _ storage.CategoryStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)
var _ storage.FavoriteStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- ProductStore -----------------------------------------------------------

const productColumns = `id, name, description, price, image, category_id, in_stock, featured, pre_order, min_order_time, ingredients, allergens, created_at, updated_at`

func (s *Store) CreateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO store_products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, p.ID, p.Name, p.Description, p.Price, p.Image, p.CategoryID, p.InStock, p.Featured, p.PreOrder, p.MinOrderTime, p.Ingredients, p.Allergens, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	existing, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return product.Product{}, err
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE store_products
		SET name = $2, description = $3, price = $4, image = $5, category_id = $6,
		    in_stock = $7, featured = $8, pre_order = $9, min_order_time = $10,
		    ingredients = $11, allergens = $12, updated_at = $13
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Price, p.Image, p.CategoryID, p.InStock, p.Featured, p.PreOrder, p.MinOrderTime, p.Ingredients, p.Allergens, p.UpdatedAt)
	if err != nil {
		return product.Product{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return product.Product{}, sql.ErrNoRows
	}
	return p, nil
}

func scanProduct(row interface{ Scan(...any) error }) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.CategoryID, &p.InStock, &p.Featured, &p.PreOrder, &p.MinOrderTime, &p.Ingredients, &p.Allergens, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) GetProduct(ctx context.Context, id string) (product.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM store_products
		WHERE id = $1
	`, id)
	return scanProduct(row)
}

func (s *Store) ListProducts(ctx context.Context) ([]product.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM store_products
		ORDER BY created_at DESC
	`)
}

func (s *Store) ListProductsByCategory(ctx context.Context, categoryID string) ([]product.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM store_products
		WHERE category_id = $1
		ORDER BY created_at DESC
	`, categoryID)
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]product.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM store_products WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- CategoryStore ----------------------------------------------------------

func (s *Store) CreateCategory(ctx context.Context, c category.Category) (category.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO store_categories (id, name, description, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Name, c.Description, c.Image, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return category.Category{}, err
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c category.Category) (category.Category, error) {
	existing, err := s.GetCategory(ctx, c.ID)
	if err != nil {
		return category.Category{}, err
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE store_categories
		SET name = $2, description = $3, image = $4, updated_at = $5
		WHERE id = $1
	`, c.ID, c.Name, c.Description, c.Image, c.UpdatedAt)
	if err != nil {
		return category.Category{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return category.Category{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (category.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, image, created_at, updated_at
		FROM store_categories
		WHERE id = $1
	`, id)

	var c category.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Image, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return category.Category{}, err
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]category.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, image, created_at, updated_at
		FROM store_categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []category.Category
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Image, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM store_categories WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- OrderStore -------------------------------------------------------------

func (s *Store) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = order.StatusPending
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO store_orders (id, user_id, customer_name, customer_email, customer_phone, pickup_date, pickup_time, special_instructions, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, o.ID, nullString(o.UserID), o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.PickupDate, o.PickupTime, o.SpecialInstructions, o.Total, o.Status, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return order.Order{}, err
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO store_order_items (id, order_id, product_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), o.ID, item.ProductID, item.Name, item.Quantity, item.Price)
		if err != nil {
			return order.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE store_orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, id, status, time.Now().UTC())
	if err != nil {
		return order.Order{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return order.Order{}, sql.ErrNoRows
	}
	return s.GetOrder(ctx, id)
}

func (s *Store) GetOrder(ctx context.Context, id string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, customer_name, customer_email, customer_phone, pickup_date, pickup_time, special_instructions, total, status, created_at, updated_at
		FROM store_orders
		WHERE id = $1
	`, id)

	o, err := scanOrder(row)
	if err != nil {
		return order.Order{}, err
	}

	items, err := s.orderItems(ctx, o.ID)
	if err != nil {
		return order.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]order.Order, error) {
	return s.queryOrders(ctx, `
		SELECT id, user_id, customer_name, customer_email, customer_phone, pickup_date, pickup_time, special_instructions, total, status, created_at, updated_at
		FROM store_orders
		ORDER BY created_at DESC
	`)
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return s.queryOrders(ctx, `
		SELECT id, user_id, customer_name, customer_email, customer_phone, pickup_date, pickup_time, special_instructions, total, status, created_at, updated_at
		FROM store_orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (s *Store) queryOrders(ctx context.Context, query string, args ...any) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		items, err := s.orderItems(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func scanOrder(row interface{ Scan(...any) error }) (order.Order, error) {
	var o order.Order
	var userID sql.NullString
	err := row.Scan(&o.ID, &userID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.PickupDate, &o.PickupTime, &o.SpecialInstructions, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return order.Order{}, err
	}
	o.UserID = userID.String
	return o, nil
}

func (s *Store) orderItems(ctx context.Context, orderID string) ([]order.LineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, quantity, price
		FROM store_order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []order.LineItem
	for rows.Next() {
		var item order.LineItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) OrderStats(ctx context.Context, dayStart time.Time) (order.Stats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'PENDING'),
		       COUNT(*) FILTER (WHERE status = 'COMPLETED'),
		       COUNT(*) FILTER (WHERE created_at >= $1),
		       COALESCE(SUM(total) FILTER (WHERE status <> 'CANCELLED'), 0)
		FROM store_orders
	`, dayStart)

	var stats order.Stats
	if err := row.Scan(&stats.TotalOrders, &stats.PendingOrders, &stats.CompletedOrders, &stats.OrdersToday, &stats.Revenue); err != nil {
		return order.Stats{}, err
	}
	return stats, nil
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO store_users (id, name, email, password_hash, phone, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	existing, err := s.GetUser(ctx, u.ID)
	if err != nil {
		return user.User{}, err
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE store_users
		SET name = $2, email = $3, password_hash = $4, phone = $5, role = $6, updated_at = $7
		WHERE id = $1
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, u.Role, u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, phone, role, created_at, updated_at
		FROM store_users
		WHERE id = $1
	`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, phone, role, created_at, updated_at
		FROM store_users
		WHERE LOWER(email) = LOWER($1)
	`, email))
}

func (s *Store) scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// --- FavoriteStore ----------------------------------------------------------

func (s *Store) CreateFavorite(ctx context.Context, f favorite.Favorite) (favorite.Favorite, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO store_favorites (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, f.ID, f.UserID, f.ProductID, f.CreatedAt)
	if err != nil {
		return favorite.Favorite{}, err
	}
	return f, nil
}

func (s *Store) DeleteFavorite(ctx context.Context, userID, productID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM store_favorites WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) GetFavorite(ctx context.Context, userID, productID string) (favorite.Favorite, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, product_id, created_at
		FROM store_favorites
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID)

	var f favorite.Favorite
	if err := row.Scan(&f.ID, &f.UserID, &f.ProductID, &f.CreatedAt); err != nil {
		return favorite.Favorite{}, err
	}
	return f, nil
}

func (s *Store) ListFavorites(ctx context.Context, userID string) ([]favorite.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, created_at
		FROM store_favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []favorite.Favorite
	for rows.Next() {
		var f favorite.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.ProductID, &f.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
