package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rosewood-bakery/storefront/internal/app/domain/cart"
	"github.com/rosewood-bakery/storefront/internal/app/domain/order"
	"github.com/rosewood-bakery/storefront/internal/app/services/mailer"
	"github.com/rosewood-bakery/storefront/internal/app/storage/memory"
)

var testNow = time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

func newTestService(store *memory.Store, sender mailer.Sender) *Service {
	svc := New(store, store, sender, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func seedCart(t *testing.T, store *memory.Store, session string, lines ...cart.Line) {
	t.Helper()
	if err := store.SaveCart(context.Background(), session, cart.Snapshot{Lines: lines}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
}

func validInput(session string) CheckoutInput {
	return CheckoutInput{
		SessionID:     session,
		CustomerName:  "Jane Dough",
		CustomerEmail: "jane@example.com",
		CustomerPhone: "+12025550123",
		PickupDate:    "2026-08-29",
		PickupTime:    "10:30",
	}
}

func TestCheckoutEmptyCartRejectedBeforeValidation(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, nil)

	// Even an invalid form must first hit the empty-cart rejection.
	in := validInput("sess-1")
	in.CustomerName = "!"

	_, err := svc.Checkout(context.Background(), in)
	if err == nil || err.Error() != "cart is empty" {
		t.Fatalf("expected empty cart error, got %v", err)
	}
}

func TestCheckoutCreatesPendingOrderAndClearsCart(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, nil)
	ctx := context.Background()

	seedCart(t, store, "sess-1",
		cart.Line{ProductID: "p1", Name: "Croissant Box", UnitPrice: 24.99, Quantity: 1},
		cart.Line{ProductID: "p2", Name: "Baguette", UnitPrice: 15.99, Quantity: 1},
	)

	created, err := svc.Checkout(ctx, validInput("sess-1"))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if created.Status != order.StatusPending {
		t.Fatalf("expected PENDING, got %s", created.Status)
	}
	if created.Total != 40.98 {
		t.Fatalf("expected server-side total 40.98, got %v", created.Total)
	}
	if len(created.Items) != 2 {
		t.Fatalf("expected two line items, got %d", len(created.Items))
	}

	_, ok, err := store.LoadCart(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if ok {
		t.Fatal("expected cart to be cleared after checkout")
	}
}

func TestCheckoutFieldValidation(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CheckoutInput)
	}{
		{"short name", func(in *CheckoutInput) { in.CustomerName = "J" }},
		{"name with digits", func(in *CheckoutInput) { in.CustomerName = "Jane 99" }},
		{"bad email", func(in *CheckoutInput) { in.CustomerEmail = "not-an-email" }},
		{"bad phone", func(in *CheckoutInput) { in.CustomerPhone = "0123" }},
		{"bad pickup time", func(in *CheckoutInput) { in.PickupTime = "25:99" }},
		{"bad pickup date", func(in *CheckoutInput) { in.PickupDate = "tomorrow" }},
		{"long instructions", func(in *CheckoutInput) {
			long := make([]byte, 501)
			for i := range long {
				long[i] = 'a'
			}
			in.SpecialInstructions = string(long)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seedCart(t, store, "sess-1", cart.Line{ProductID: "p1", Name: "Baguette", UnitPrice: 4, Quantity: 1})
			in := validInput("sess-1")
			tc.mutate(&in)
			if _, err := svc.Checkout(ctx, in); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCheckoutEnforcesPreOrderLeadTime(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, nil)
	ctx := context.Background()

	seedCart(t, store, "sess-1", cart.Line{
		ProductID: "p3", Name: "Wedding Cake", UnitPrice: 250, Quantity: 1,
		PreOrder: true, MinOrderTime: 72,
	})

	// Next morning is well inside the 72 hour lead.
	if _, err := svc.Checkout(ctx, validInput("sess-1")); err == nil {
		t.Fatal("expected lead time rejection")
	}

	seedCart(t, store, "sess-1", cart.Line{
		ProductID: "p3", Name: "Wedding Cake", UnitPrice: 250, Quantity: 1,
		PreOrder: true, MinOrderTime: 72,
	})
	in := validInput("sess-1")
	in.PickupDate = "2026-09-02"
	if _, err := svc.Checkout(ctx, in); err != nil {
		t.Fatalf("expected pickup past the lead time to succeed: %v", err)
	}
}

func TestCheckoutRejectsPastPickup(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, nil)

	seedCart(t, store, "sess-1", cart.Line{ProductID: "p1", Name: "Baguette", UnitPrice: 4, Quantity: 1})
	in := validInput("sess-1")
	in.PickupDate = "2026-08-27"

	if _, err := svc.Checkout(context.Background(), in); err == nil {
		t.Fatal("expected past pickup rejection")
	}
}

// recordingSender captures sent mail.
type recordingSender struct {
	sent []mailer.Message
	fail bool
}

func (r *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	if r.fail {
		return errors.New("provider down")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestCheckoutSendsConfirmationMail(t *testing.T) {
	store := memory.New()
	sender := &recordingSender{}
	svc := newTestService(store, sender)

	seedCart(t, store, "sess-1", cart.Line{ProductID: "p1", Name: "Baguette", UnitPrice: 4, Quantity: 2})

	created, err := svc.Checkout(context.Background(), validInput("sess-1"))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one confirmation mail, got %d", len(sender.sent))
	}
	if sender.sent[0].To != created.CustomerEmail {
		t.Fatalf("mail sent to %s", sender.sent[0].To)
	}
}

func TestCheckoutSucceedsWhenMailFails(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, &recordingSender{fail: true})

	seedCart(t, store, "sess-1", cart.Line{ProductID: "p1", Name: "Baguette", UnitPrice: 4, Quantity: 1})

	if _, err := svc.Checkout(context.Background(), validInput("sess-1")); err != nil {
		t.Fatalf("mail failure must not fail checkout: %v", err)
	}
}

func TestUpdateStatusHappyPath(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, nil)
	ctx := context.Background()

	seedCart(t, store, "sess-1", cart.Line{ProductID: "p1", Name: "Baguette", UnitPrice: 4, Quantity: 1})
	created, err := svc.Checkout(ctx, validInput("sess-1"))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	for _, next := range []order.Status{order.StatusConfirmed, order.StatusPreparing, order.StatusReady, order.StatusCompleted} {
		updated, err := svc.UpdateStatus(ctx, created.ID, next)
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected %s, got %s", next, updated.Status)
		}
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, nil)
	ctx := context.Background()

	seedCart(t, store, "sess-1", cart.Line{ProductID: "p1", Name: "Baguette", UnitPrice: 4, Quantity: 1})
	created, err := svc.Checkout(ctx, validInput("sess-1"))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	_, err = svc.UpdateStatus(ctx, created.ID, order.StatusReady)
	var transition *order.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transition.From != order.StatusPending || transition.To != order.StatusReady {
		t.Fatalf("unexpected transition error: %+v", transition)
	}
}

func TestStatsAggregation(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		seedCart(t, store, "sess-1", cart.Line{ProductID: "p1", Name: "Baguette", UnitPrice: 10, Quantity: 1})
		if _, err := svc.Checkout(ctx, validInput("sess-1")); err != nil {
			t.Fatalf("checkout %d: %v", i, err)
		}
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalOrders != 3 || stats.PendingOrders != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Revenue != 30 {
		t.Fatalf("expected revenue 30, got %v", stats.Revenue)
	}
}
