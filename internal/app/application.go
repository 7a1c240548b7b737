// Package app composes the storefront services and manages their lifecycle.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rosewood-bakery/storefront/internal/app/services/accounts"
	cartsvc "github.com/rosewood-bakery/storefront/internal/app/services/cart"
	"github.com/rosewood-bakery/storefront/internal/app/services/catalog"
	"github.com/rosewood-bakery/storefront/internal/app/services/favorites"
	"github.com/rosewood-bakery/storefront/internal/app/services/mailer"
	"github.com/rosewood-bakery/storefront/internal/app/services/orders"
	"github.com/rosewood-bakery/storefront/internal/app/services/reports"
	"github.com/rosewood-bakery/storefront/internal/app/storage"
	"github.com/rosewood-bakery/storefront/internal/app/storage/memory"
	"github.com/rosewood-bakery/storefront/internal/app/system"
	"github.com/rosewood-bakery/storefront/internal/middleware"
	"github.com/rosewood-bakery/storefront/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Products   storage.ProductStore
	Categories storage.CategoryStore
	Orders     storage.OrderStore
	Users      storage.UserStore
	Favorites  storage.FavoriteStore
	Carts      storage.CartStore
}

// Options carries optional collaborators for the application.
type Options struct {
	Tokens         accounts.TokenIssuer
	Mailer         mailer.Sender
	ReportSchedule string
	ReportTo       string
}

// Application ties the storefront services together and manages their
// lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Catalog   *catalog.Service
	Cart      *cartsvc.Service
	Orders    *orders.Service
	Favorites *favorites.Service
	Accounts  *accounts.Service
	Reports   *reports.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Products == nil {
		stores.Products = mem
	}
	if stores.Categories == nil {
		stores.Categories = mem
	}
	if stores.Orders == nil {
		stores.Orders = mem
	}
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Favorites == nil {
		stores.Favorites = mem
	}
	if stores.Carts == nil {
		stores.Carts = mem
	}

	if opts.Tokens == nil {
		log.Warn("no token issuer configured; using ephemeral dev secret")
		opts.Tokens = middleware.NewAuthenticator("storefront-dev-secret", 24*time.Hour, log)
	}
	if opts.Mailer == nil {
		opts.Mailer = mailer.NoopSender{}
	}
	if opts.ReportSchedule == "" {
		opts.ReportSchedule = "0 18 * * *"
	}

	manager := system.NewManager()

	catalogService := catalog.New(stores.Products, stores.Categories, log)
	cartService := cartsvc.New(stores.Carts, stores.Products, log)
	orderService := orders.New(stores.Orders, stores.Carts, opts.Mailer, log)
	favoriteService := favorites.New(stores.Favorites, stores.Products, log)
	accountService := accounts.New(stores.Users, opts.Tokens, log)
	reportService := reports.New(orderService, opts.Mailer, opts.ReportSchedule, opts.ReportTo, log)

	for _, name := range []string{"catalog", "cart", "orders", "favorites", "accounts"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}
	if err := manager.Register(reportService); err != nil {
		return nil, fmt.Errorf("register reports service: %w", err)
	}

	return &Application{
		manager:   manager,
		log:       log,
		Catalog:   catalogService,
		Cart:      cartService,
		Orders:    orderService,
		Favorites: favoriteService,
		Accounts:  accountService,
		Reports:   reportService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
