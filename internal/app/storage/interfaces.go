// Package storage defines the persistence interfaces for the storefront.
package storage

import (
	"context"
	"time"

	"github.com/rosewood-bakery/storefront/internal/app/domain/cart"
	"github.com/rosewood-bakery/storefront/internal/app/domain/category"
	"github.com/rosewood-bakery/storefront/internal/app/domain/favorite"
	"github.com/rosewood-bakery/storefront/internal/app/domain/order"
	"github.com/rosewood-bakery/storefront/internal/app/domain/product"
	"github.com/rosewood-bakery/storefront/internal/app/domain/user"
)

// ProductStore persists catalog products.
type ProductStore interface {
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
	UpdateProduct(ctx context.Context, p product.Product) (product.Product, error)
	GetProduct(ctx context.Context, id string) (product.Product, error)
	ListProducts(ctx context.Context) ([]product.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]product.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// CategoryStore persists catalog categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c category.Category) (category.Category, error)
	UpdateCategory(ctx context.Context, c category.Category) (category.Category, error)
	GetCategory(ctx context.Context, id string) (category.Category, error)
	ListCategories(ctx context.Context) ([]category.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// OrderStore persists orders with their line items.
type OrderStore interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status order.Status) (order.Order, error)
	GetOrder(ctx context.Context, id string) (order.Order, error)
	ListOrders(ctx context.Context) ([]order.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]order.Order, error)
	OrderStats(ctx context.Context, dayStart time.Time) (order.Stats, error)
}

// UserStore persists storefront accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
}

// FavoriteStore persists user favorites.
type FavoriteStore interface {
	CreateFavorite(ctx context.Context, f favorite.Favorite) (favorite.Favorite, error)
	DeleteFavorite(ctx context.Context, userID, productID string) error
	GetFavorite(ctx context.Context, userID, productID string) (favorite.Favorite, error)
	ListFavorites(ctx context.Context, userID string) ([]favorite.Favorite, error)
}

// CartStore persists session cart snapshots. LoadCart reports ok=false when
// no snapshot exists for the session.
type CartStore interface {
	LoadCart(ctx context.Context, sessionID string) (cart.Snapshot, bool, error)
	SaveCart(ctx context.Context, sessionID string, snap cart.Snapshot) error
	DeleteCart(ctx context.Context, sessionID string) error
}
