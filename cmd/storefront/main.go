// Package main runs the storefront API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	app "github.com/rosewood-bakery/storefront/internal/app"
	"github.com/rosewood-bakery/storefront/internal/app/httpapi"
	"github.com/rosewood-bakery/storefront/internal/app/metrics"
	"github.com/rosewood-bakery/storefront/internal/app/services/mailer"
	"github.com/rosewood-bakery/storefront/internal/app/storage/postgres"
	redisstore "github.com/rosewood-bakery/storefront/internal/app/storage/redis"
	"github.com/rosewood-bakery/storefront/internal/config"
	"github.com/rosewood-bakery/storefront/internal/middleware"
	"github.com/rosewood-bakery/storefront/internal/platform/migrations"
	"github.com/rosewood-bakery/storefront/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores := app.Stores{}

	switch {
	case cfg.Database.Driver == "postgres" && cfg.Database.DSN != "":
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		if err := migrations.Apply(ctx, db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}

		pg := postgres.New(db)
		stores.Products = pg
		stores.Categories = pg
		stores.Orders = pg
		stores.Users = pg
		stores.Favorites = pg
		log.Info("using postgres storage")
	case cfg.Database.Driver == "" || cfg.Database.Driver == "memory" || cfg.Database.DSN == "":
		log.Warn("using in-memory storage; data is lost on restart")
	default:
		return fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		defer client.Close()
		stores.Carts = redisstore.NewCartStore(client, time.Duration(cfg.Redis.CartTTLHrs)*time.Hour)
		log.WithField("addr", cfg.Redis.Addr).Info("using redis cart storage")
	}

	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHrs)*time.Hour, log)

	var sender mailer.Sender = mailer.NoopSender{}
	if cfg.Mailer.Endpoint != "" {
		sender = mailer.NewHTTPSender(cfg.Mailer.Endpoint, cfg.Mailer.APIKey, cfg.Mailer.From, log)
	} else {
		log.Warn("no mailer endpoint configured; outbound mail disabled")
	}

	application, err := app.New(stores, app.Options{
		Tokens:         auth,
		Mailer:         sender,
		ReportSchedule: cfg.Reports.Schedule,
		ReportTo:       cfg.Reports.AdminTo,
	}, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	api, err := httpapi.NewHandler(application, httpapi.Config{AuditFile: cfg.Server.AuditLogPath})
	if err != nil {
		return fmt.Errorf("build api handler: %w", err)
	}

	limiter := middleware.NewRateLimiter(cfg.Server.RatePerSecond, cfg.Server.RateBurst, log)
	limiter.StartCleanup(5*time.Minute, ctx.Done())
	cors := middleware.NewCORS(cfg.Server.AllowedOrigins)

	handler := metrics.InstrumentHandler(cors.Handler(auth.OptionalHandler(limiter.Handler(api))))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("storefront API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown failed")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application stop failed")
	}
	return nil
}
