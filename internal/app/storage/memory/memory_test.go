package memory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/rosewood-bakery/storefront/internal/app/domain/cart"
	"github.com/rosewood-bakery/storefront/internal/app/domain/category"
	"github.com/rosewood-bakery/storefront/internal/app/domain/order"
	"github.com/rosewood-bakery/storefront/internal/app/domain/product"
	"github.com/rosewood-bakery/storefront/internal/app/domain/user"
)

func TestProductLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, category.Category{Name: "Breads"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	created, err := store.CreateProduct(ctx, product.Product{Name: "Baguette", Price: 4, CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps, got %+v", created)
	}

	created.Price = 4.50
	if _, err := store.UpdateProduct(ctx, created); err != nil {
		t.Fatalf("update product: %v", err)
	}
	got, err := store.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Price != 4.50 {
		t.Fatalf("expected updated price, got %v", got.Price)
	}

	if err := store.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if _, err := store.GetProduct(ctx, created.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestMissingRowsReportErrNoRows(t *testing.T) {
	store := New()
	ctx := context.Background()

	checks := []struct {
		name string
		call func() error
	}{
		{"get product", func() error { _, err := store.GetProduct(ctx, "nope"); return err }},
		{"update product", func() error { _, err := store.UpdateProduct(ctx, product.Product{ID: "nope"}); return err }},
		{"delete product", func() error { return store.DeleteProduct(ctx, "nope") }},
		{"get category", func() error { _, err := store.GetCategory(ctx, "nope"); return err }},
		{"get order", func() error { _, err := store.GetOrder(ctx, "nope"); return err }},
		{"update order status", func() error { _, err := store.UpdateOrderStatus(ctx, "nope", order.StatusConfirmed); return err }},
		{"get user", func() error { _, err := store.GetUser(ctx, "nope"); return err }},
		{"get user by email", func() error { _, err := store.GetUserByEmail(ctx, "nope@example.com"); return err }},
		{"get favorite", func() error { _, err := store.GetFavorite(ctx, "u1", "nope"); return err }},
		{"delete favorite", func() error { return store.DeleteFavorite(ctx, "u1", "nope") }},
	}
	for _, tc := range checks {
		if err := tc.call(); !errors.Is(err, sql.ErrNoRows) {
			t.Fatalf("%s: expected sql.ErrNoRows, got %v", tc.name, err)
		}
	}
}

func TestReturnedProductIsACopy(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateProduct(ctx, product.Product{Name: "Baguette", Price: 4, CategoryID: "c1"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	created.Name = "Mutated"
	got, err := store.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Name != "Baguette" {
		t.Fatalf("store state mutated through returned value: %s", got.Name)
	}
}

func TestDuplicateUserEmail(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, user.User{Name: "Jane", Email: "jane@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := store.CreateUser(ctx, user.User{Name: "Janet", Email: "JANE@example.com", PasswordHash: "x"}); err == nil {
		t.Fatal("expected duplicate email rejection")
	}
}

func TestOrderStatsExcludesCancelledRevenue(t *testing.T) {
	store := New()
	ctx := context.Background()

	first, err := store.CreateOrder(ctx, order.Order{CustomerName: "Jane", Total: 20, Status: order.StatusPending})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := store.CreateOrder(ctx, order.Order{CustomerName: "Joe", Total: 30, Status: order.StatusPending}); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := store.UpdateOrderStatus(ctx, first.ID, order.StatusCancelled); err != nil {
		t.Fatalf("cancel order: %v", err)
	}

	stats, err := store.OrderStats(ctx, first.CreatedAt)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalOrders != 2 {
		t.Fatalf("expected two orders, got %d", stats.TotalOrders)
	}
	if stats.Revenue != 30 {
		t.Fatalf("expected cancelled order excluded from revenue, got %v", stats.Revenue)
	}
}

func TestCartRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, ok, err := store.LoadCart(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if ok {
		t.Fatal("expected no cart for fresh session")
	}

	snap := cart.Snapshot{
		Lines: []cart.Line{{ProductID: "p1", Name: "Baguette", UnitPrice: 4, Quantity: 2}},
		Open:  true,
	}
	if err := store.SaveCart(ctx, "sess-1", snap); err != nil {
		t.Fatalf("save cart: %v", err)
	}

	got, ok, err := store.LoadCart(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if !ok || len(got.Lines) != 1 || !got.Open {
		t.Fatalf("unexpected snapshot: %+v ok=%v", got, ok)
	}

	if err := store.DeleteCart(ctx, "sess-1"); err != nil {
		t.Fatalf("delete cart: %v", err)
	}
	if _, ok, _ := store.LoadCart(ctx, "sess-1"); ok {
		t.Fatal("expected cart to be gone")
	}
}
