// Package user defines the storefront account entity.
package user

import "time"

// Roles recognised by the admin middleware.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is a registered storefront account. PasswordHash is a bcrypt hash
// and never leaves the service boundary.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
