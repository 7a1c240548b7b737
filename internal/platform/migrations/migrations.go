// Package migrations applies the storefront database schema.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// statements run in order. Each uses IF NOT EXISTS so Apply is safe to run
// on every startup.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS store_categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS store_products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price DOUBLE PRECISION NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		category_id TEXT NOT NULL REFERENCES store_categories(id),
		in_stock BOOLEAN NOT NULL DEFAULT TRUE,
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		pre_order BOOLEAN NOT NULL DEFAULT FALSE,
		min_order_time INTEGER NOT NULL DEFAULT 0,
		ingredients TEXT NOT NULL DEFAULT '',
		allergens TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS store_users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'customer',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS store_orders (
		id TEXT PRIMARY KEY,
		user_id TEXT REFERENCES store_users(id),
		customer_name TEXT NOT NULL,
		customer_email TEXT NOT NULL,
		customer_phone TEXT NOT NULL,
		pickup_date TIMESTAMPTZ NOT NULL,
		pickup_time TEXT NOT NULL,
		special_instructions TEXT NOT NULL DEFAULT '',
		total DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS store_order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES store_orders(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS store_favorites (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES store_users(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL REFERENCES store_products(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, product_id)
	)`,
}

// Apply runs the schema statements against db.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
