package system

import (
	"context"
	"fmt"
	"sync"
)

// Manager starts services in registration order and stops them in reverse.
// A failed start stops the services already running before returning.
type Manager struct {
	mu       sync.Mutex
	services []Service
	started  []Service
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register adds a service to be managed. Registration order is start order;
// duplicate names are rejected.
func (m *Manager) Register(svc Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.services {
		if existing.Name() == svc.Name() {
			return fmt.Errorf("service %s already registered", svc.Name())
		}
	}
	m.services = append(m.services, svc)
	return nil
}

// Start starts every registered service.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, svc := range m.services {
		if err := svc.Start(ctx); err != nil {
			m.stopStartedLocked(ctx)
			return fmt.Errorf("start %s: %w", svc.Name(), err)
		}
		m.started = append(m.started, svc)
	}
	return nil
}

// Stop stops all running services in reverse start order. The first error
// is returned but every service is asked to stop.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopStartedLocked(ctx)
}

func (m *Manager) stopStartedLocked(ctx context.Context) error {
	var firstErr error
	for i := len(m.started) - 1; i >= 0; i-- {
		if err := m.started[i].Stop(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop %s: %w", m.started[i].Name(), err)
		}
	}
	m.started = nil
	return firstErr
}

// NoopService satisfies the lifecycle for components with no background
// work of their own.
type NoopService struct {
	ServiceName string
}

// Name identifies the service.
func (s NoopService) Name() string { return s.ServiceName }

// Start is a no-op.
func (s NoopService) Start(context.Context) error { return nil }

// Stop is a no-op.
func (s NoopService) Stop(context.Context) error { return nil }
