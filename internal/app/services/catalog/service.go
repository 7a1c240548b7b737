// Package catalog manages products and categories.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rosewood-bakery/storefront/internal/app/domain/category"
	"github.com/rosewood-bakery/storefront/internal/app/domain/product"
	"github.com/rosewood-bakery/storefront/internal/app/storage"
	"github.com/rosewood-bakery/storefront/pkg/logger"
)

const (
	maxPrice        = 10000
	maxMinOrderTime = 168 // one week of lead time, in hours
	maxFeatured     = 6
)

// ErrCategoryInUse is returned when deleting a category that still has
// products assigned to it.
var ErrCategoryInUse = fmt.Errorf("category has products assigned")

// Service manages the product catalog.
type Service struct {
	products   storage.ProductStore
	categories storage.CategoryStore
	log        *logger.Logger
}

// New constructs a catalog service.
func New(products storage.ProductStore, categories storage.CategoryStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	return &Service{
		products:   products,
		categories: categories,
		log:        log,
	}
}

func validateProduct(p product.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if p.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	if p.Price >= maxPrice {
		return fmt.Errorf("price must be below %d", maxPrice)
	}
	if p.MinOrderTime < 0 || p.MinOrderTime > maxMinOrderTime {
		return fmt.Errorf("min_order_time must be between 0 and %d hours", maxMinOrderTime)
	}
	if strings.TrimSpace(p.CategoryID) == "" {
		return fmt.Errorf("category_id is required")
	}
	return nil
}

// CreateProduct validates and stores a new product.
func (s *Service) CreateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.CategoryID = strings.TrimSpace(p.CategoryID)
	if err := validateProduct(p); err != nil {
		return product.Product{}, err
	}
	if _, err := s.categories.GetCategory(ctx, p.CategoryID); err != nil {
		return product.Product{}, fmt.Errorf("category validation failed: %w", err)
	}

	created, err := s.products.CreateProduct(ctx, p)
	if err != nil {
		return product.Product{}, err
	}
	s.log.WithField("product_id", created.ID).
		WithField("category_id", created.CategoryID).
		Info("product created")
	return created, nil
}

// UpdateProduct validates and persists changes to an existing product.
func (s *Service) UpdateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.CategoryID = strings.TrimSpace(p.CategoryID)
	if strings.TrimSpace(p.ID) == "" {
		return product.Product{}, fmt.Errorf("product id is required")
	}
	if err := validateProduct(p); err != nil {
		return product.Product{}, err
	}
	if _, err := s.categories.GetCategory(ctx, p.CategoryID); err != nil {
		return product.Product{}, fmt.Errorf("category validation failed: %w", err)
	}

	updated, err := s.products.UpdateProduct(ctx, p)
	if err != nil {
		return product.Product{}, err
	}
	s.log.WithField("product_id", updated.ID).Info("product updated")
	return updated, nil
}

// GetProduct returns a single product.
func (s *Service) GetProduct(ctx context.Context, id string) (product.Product, error) {
	return s.products.GetProduct(ctx, id)
}

// ListProducts returns products, optionally filtered by category.
func (s *Service) ListProducts(ctx context.Context, categoryID string) ([]product.Product, error) {
	if categoryID = strings.TrimSpace(categoryID); categoryID != "" {
		return s.products.ListProductsByCategory(ctx, categoryID)
	}
	return s.products.ListProducts(ctx)
}

// FeaturedProducts returns up to six in-stock products flagged as featured.
func (s *Service) FeaturedProducts(ctx context.Context) ([]product.Product, error) {
	all, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	var featured []product.Product
	for _, p := range all {
		if p.Featured && p.InStock {
			featured = append(featured, p)
			if len(featured) == maxFeatured {
				break
			}
		}
	}
	return featured, nil
}

// DeleteProduct removes a product from the catalog.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

// CreateCategory validates and stores a new category.
func (s *Service) CreateCategory(ctx context.Context, c category.Category) (category.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return category.Category{}, fmt.Errorf("name is required")
	}

	existing, err := s.categories.ListCategories(ctx)
	if err != nil {
		return category.Category{}, err
	}
	for _, other := range existing {
		if strings.EqualFold(other.Name, c.Name) {
			return category.Category{}, fmt.Errorf("category %q already exists", c.Name)
		}
	}

	created, err := s.categories.CreateCategory(ctx, c)
	if err != nil {
		return category.Category{}, err
	}
	s.log.WithField("category_id", created.ID).Info("category created")
	return created, nil
}

// UpdateCategory persists changes to an existing category.
func (s *Service) UpdateCategory(ctx context.Context, c category.Category) (category.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if strings.TrimSpace(c.ID) == "" {
		return category.Category{}, fmt.Errorf("category id is required")
	}
	if c.Name == "" {
		return category.Category{}, fmt.Errorf("name is required")
	}

	updated, err := s.categories.UpdateCategory(ctx, c)
	if err != nil {
		return category.Category{}, err
	}
	s.log.WithField("category_id", updated.ID).Info("category updated")
	return updated, nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]category.Category, error) {
	return s.categories.ListCategories(ctx)
}

// GetCategory returns a single category.
func (s *Service) GetCategory(ctx context.Context, id string) (category.Category, error) {
	return s.categories.GetCategory(ctx, id)
}

// DeleteCategory removes a category. Categories with products assigned
// cannot be deleted.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	products, err := s.products.ListProductsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if len(products) > 0 {
		return ErrCategoryInUse
	}
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.log.WithField("category_id", id).Info("category deleted")
	return nil
}
