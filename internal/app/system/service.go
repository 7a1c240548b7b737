// Package system manages the lifecycle of long-running storefront components.
package system

import "context"

// Service is a component with a managed lifecycle. The manager starts
// registered services in registration order and stops them in reverse;
// Name must be unique within a manager.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
