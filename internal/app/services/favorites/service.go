// Package favorites manages per-user product favorites.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rosewood-bakery/storefront/internal/app/domain/favorite"
	"github.com/rosewood-bakery/storefront/internal/app/domain/product"
	"github.com/rosewood-bakery/storefront/internal/app/storage"
	"github.com/rosewood-bakery/storefront/pkg/logger"
)

// ErrAlreadyFavorite is returned when a product is favorited twice.
var ErrAlreadyFavorite = errors.New("product is already a favorite")

// Service manages the favorites list.
type Service struct {
	store    storage.FavoriteStore
	products storage.ProductStore
	log      *logger.Logger
}

// New constructs a favorites service.
func New(store storage.FavoriteStore, products storage.ProductStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("favorites")
	}
	return &Service{
		store:    store,
		products: products,
		log:      log,
	}
}

// Add favorites a product for the user. Favoriting the same product twice
// returns ErrAlreadyFavorite.
func (s *Service) Add(ctx context.Context, userID, productID string) (favorite.Favorite, error) {
	userID = strings.TrimSpace(userID)
	productID = strings.TrimSpace(productID)
	if userID == "" {
		return favorite.Favorite{}, fmt.Errorf("user id is required")
	}
	if productID == "" {
		return favorite.Favorite{}, fmt.Errorf("product id is required")
	}

	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return favorite.Favorite{}, fmt.Errorf("product lookup failed: %w", err)
	}
	if _, err := s.store.GetFavorite(ctx, userID, productID); err == nil {
		return favorite.Favorite{}, ErrAlreadyFavorite
	}

	created, err := s.store.CreateFavorite(ctx, favorite.Favorite{UserID: userID, ProductID: productID})
	if err != nil {
		return favorite.Favorite{}, err
	}
	s.log.WithField("user_id", userID).
		WithField("product_id", productID).
		Info("favorite added")
	return created, nil
}

// Remove unfavorites a product for the user.
func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(productID) == "" {
		return fmt.Errorf("user id and product id are required")
	}
	if err := s.store.DeleteFavorite(ctx, userID, productID); err != nil {
		return err
	}
	s.log.WithField("user_id", userID).
		WithField("product_id", productID).
		Info("favorite removed")
	return nil
}

// ListIDs returns only the favorited product ids, newest first.
func (s *Service) ListIDs(ctx context.Context, userID string) ([]string, error) {
	favs, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.ProductID)
	}
	return ids, nil
}

// ListProducts returns the favorited products with full catalog data.
// Favorites whose product no longer exists are skipped.
func (s *Service) ListProducts(ctx context.Context, userID string) ([]product.Product, error) {
	favs, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}

	products := make([]product.Product, 0, len(favs))
	for _, f := range favs {
		p, err := s.products.GetProduct(ctx, f.ProductID)
		if err != nil {
			s.log.WithError(err).WithField("product_id", f.ProductID).Warn("skipping favorite with missing product")
			continue
		}
		products = append(products, p)
	}
	return products, nil
}
