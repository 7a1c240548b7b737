package favorites

import (
	"context"
	"errors"
	"testing"

	"github.com/rosewood-bakery/storefront/internal/app/domain/category"
	"github.com/rosewood-bakery/storefront/internal/app/domain/product"
	"github.com/rosewood-bakery/storefront/internal/app/domain/user"
	"github.com/rosewood-bakery/storefront/internal/app/storage/memory"
)

func seed(t *testing.T, store *memory.Store) (user.User, product.Product) {
	t.Helper()
	ctx := context.Background()
	cat, err := store.CreateCategory(ctx, category.Category{Name: "Breads"})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	p, err := store.CreateProduct(ctx, product.Product{Name: "Sourdough", Price: 8.50, CategoryID: cat.ID, InStock: true})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	u, err := store.CreateUser(ctx, user.User{Name: "Jane", Email: "jane@example.com", PasswordHash: "x", Role: user.RoleCustomer})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u, p
}

func TestAddAndListFavorites(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()
	u, p := seed(t, store)

	if _, err := svc.Add(ctx, u.ID, p.ID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}

	ids, err := svc.ListIDs(ctx, u.ID)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != p.ID {
		t.Fatalf("unexpected ids: %v", ids)
	}

	products, err := svc.ListProducts(ctx, u.ID)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Sourdough" {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestAddDuplicateFavorite(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()
	u, p := seed(t, store)

	if _, err := svc.Add(ctx, u.ID, p.ID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	_, err := svc.Add(ctx, u.ID, p.ID)
	if !errors.Is(err, ErrAlreadyFavorite) {
		t.Fatalf("expected ErrAlreadyFavorite, got %v", err)
	}
}

func TestAddUnknownProduct(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	u, _ := seed(t, store)

	if _, err := svc.Add(context.Background(), u.ID, "missing"); err == nil {
		t.Fatal("expected unknown product rejection")
	}
}

func TestRemoveFavorite(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()
	u, p := seed(t, store)

	if _, err := svc.Add(ctx, u.ID, p.ID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	if err := svc.Remove(ctx, u.ID, p.ID); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}

	ids, err := svc.ListIDs(ctx, u.ID)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no favorites, got %v", ids)
	}
}

func TestListSkipsDeletedProducts(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()
	u, p := seed(t, store)

	if _, err := svc.Add(ctx, u.ID, p.ID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	if err := store.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	products, err := svc.ListProducts(ctx, u.ID)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected deleted product to be skipped, got %+v", products)
	}
}
