package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rosewood-bakery/storefront/internal/app/domain/category"
	"github.com/rosewood-bakery/storefront/internal/app/domain/product"
	"github.com/rosewood-bakery/storefront/internal/app/storage/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store, category.Category) {
	t.Helper()
	store := memory.New()
	svc := New(store, store, nil)
	cat, err := svc.CreateCategory(context.Background(), category.Category{Name: "Breads"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return svc, store, cat
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, cat := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		product product.Product
	}{
		{"missing name", product.Product{Price: 5, CategoryID: cat.ID}},
		{"zero price", product.Product{Name: "Roll", Price: 0, CategoryID: cat.ID}},
		{"negative price", product.Product{Name: "Roll", Price: -2, CategoryID: cat.ID}},
		{"price above limit", product.Product{Name: "Roll", Price: 10000, CategoryID: cat.ID}},
		{"negative lead time", product.Product{Name: "Roll", Price: 5, MinOrderTime: -1, CategoryID: cat.ID}},
		{"lead time above a week", product.Product{Name: "Roll", Price: 5, MinOrderTime: 169, CategoryID: cat.ID}},
		{"missing category", product.Product{Name: "Roll", Price: 5}},
		{"unknown category", product.Product{Name: "Roll", Price: 5, CategoryID: "missing"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateProduct(ctx, tc.product); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateAndGetProduct(t *testing.T) {
	svc, _, cat := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, product.Product{
		Name:         "Wedding Cake",
		Price:        250,
		CategoryID:   cat.ID,
		PreOrder:     true,
		MinOrderTime: 72,
		InStock:      true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	got, err := svc.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Name != "Wedding Cake" || got.MinOrderTime != 72 {
		t.Fatalf("unexpected product: %+v", got)
	}
}

func TestFeaturedProductsCapsAtSixInStock(t *testing.T) {
	svc, _, cat := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		if _, err := svc.CreateProduct(ctx, product.Product{
			Name:       fmt.Sprintf("Featured %d", i),
			Price:      5,
			CategoryID: cat.ID,
			Featured:   true,
			InStock:    true,
		}); err != nil {
			t.Fatalf("create product %d: %v", i, err)
		}
	}
	if _, err := svc.CreateProduct(ctx, product.Product{
		Name:       "Featured out of stock",
		Price:      5,
		CategoryID: cat.ID,
		Featured:   true,
		InStock:    false,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	featured, err := svc.FeaturedProducts(ctx)
	if err != nil {
		t.Fatalf("featured products: %v", err)
	}
	if len(featured) != 6 {
		t.Fatalf("expected six featured products, got %d", len(featured))
	}
	for _, p := range featured {
		if !p.InStock {
			t.Fatalf("out-of-stock product %s in featured list", p.Name)
		}
	}
}

func TestListProductsByCategory(t *testing.T) {
	svc, _, breads := newTestService(t)
	ctx := context.Background()

	cakes, err := svc.CreateCategory(ctx, category.Category{Name: "Cakes"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := svc.CreateProduct(ctx, product.Product{Name: "Baguette", Price: 4, CategoryID: breads.ID}); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if _, err := svc.CreateProduct(ctx, product.Product{Name: "Carrot Cake", Price: 18, CategoryID: cakes.ID}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	got, err := svc.ListProducts(ctx, cakes.ID)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Carrot Cake" {
		t.Fatalf("unexpected listing: %+v", got)
	}
}

func TestDuplicateCategoryNameRejected(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.CreateCategory(context.Background(), category.Category{Name: "breads"}); err == nil {
		t.Fatal("expected case-insensitive duplicate rejection")
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	svc, _, cat := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, product.Product{Name: "Baguette", Price: 4, CategoryID: cat.ID}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	err := svc.DeleteCategory(ctx, cat.ID)
	if !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
}

func TestDeleteEmptyCategory(t *testing.T) {
	svc, _, cat := newTestService(t)
	ctx := context.Background()

	if err := svc.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if _, err := svc.GetCategory(ctx, cat.ID); err == nil {
		t.Fatal("expected category to be gone")
	}
}
