// Package reports emails a daily order summary to the bakery staff.
package reports

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/rosewood-bakery/storefront/internal/app/services/mailer"
	"github.com/rosewood-bakery/storefront/internal/app/services/orders"
	"github.com/rosewood-bakery/storefront/pkg/logger"
)

// Service runs a scheduled daily report job. It satisfies the system
// service lifecycle so the application manager can own it.
type Service struct {
	orders   *orders.Service
	mailer   mailer.Sender
	schedule string
	to       string
	log      *logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// New constructs a reports service. schedule is a cron expression; to is
// the recipient address.
func New(ordersSvc *orders.Service, sender mailer.Sender, schedule, to string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reports")
	}
	if sender == nil {
		sender = mailer.NoopSender{}
	}
	return &Service{
		orders:   ordersSvc,
		mailer:   sender,
		schedule: schedule,
		to:       to,
		log:      log,
	}
}

// Name identifies the service to the lifecycle manager.
func (s *Service) Name() string { return "reports" }

// Start schedules the daily report job.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if s.to == "" {
		s.log.Info("no report recipient configured, reports disabled")
		s.running = true
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.run(context.Background()) }); err != nil {
		return fmt.Errorf("schedule report job: %w", err)
	}
	c.Start()
	s.cron = c
	s.running = true
	s.log.WithField("schedule", s.schedule).WithField("to", s.to).Info("daily report scheduled")
	return nil
}

// Stop cancels the scheduled job and waits for an in-flight run.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	if s.cron == nil {
		return nil
	}
	stopped := s.cron.Stop()
	s.cron = nil
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run builds and sends one report. Exposed through RunOnce for tests and
// manual triggering.
func (s *Service) run(ctx context.Context) {
	stats, err := s.orders.Stats(ctx)
	if err != nil {
		s.log.WithError(err).Warn("daily report stats failed")
		return
	}

	msg := mailer.Message{
		To:      s.to,
		Subject: "Daily order report",
		HTML: fmt.Sprintf(
			"<h1>Daily order report</h1><ul><li>Orders today: %d</li><li>Pending: %d</li><li>Completed: %d</li><li>Total orders: %d</li><li>Revenue: $%.2f</li></ul>",
			stats.OrdersToday, stats.PendingOrders, stats.CompletedOrders, stats.TotalOrders, stats.Revenue,
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.WithError(err).Warn("daily report mail failed")
		return
	}
	s.log.WithField("orders_today", stats.OrdersToday).Info("daily report sent")
}

// RunOnce sends a report immediately.
func (s *Service) RunOnce(ctx context.Context) {
	s.run(ctx)
}
