// Package accounts implements customer signup, signin and profile changes.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rosewood-bakery/storefront/internal/app/domain/user"
	"github.com/rosewood-bakery/storefront/internal/app/storage"
	"github.com/rosewood-bakery/storefront/pkg/logger"
)

const minPasswordLen = 8

// ErrInvalidCredentials is returned on a failed signin. It deliberately
// does not distinguish unknown email from wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// TokenIssuer mints an auth token for a signed-in user.
type TokenIssuer interface {
	Issue(u user.User) (string, error)
}

// Service manages storefront accounts.
type Service struct {
	users  storage.UserStore
	tokens TokenIssuer
	log    *logger.Logger
}

// New constructs an accounts service.
func New(users storage.UserStore, tokens TokenIssuer, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("accounts")
	}
	return &Service{
		users:  users,
		tokens: tokens,
		log:    log,
	}
}

// Register creates a new customer account.
func (s *Service) Register(ctx context.Context, name, email, password, phone string) (user.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	phone = strings.TrimSpace(phone)

	if name == "" {
		return user.User{}, fmt.Errorf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, fmt.Errorf("a valid email is required")
	}
	if len(password) < minPasswordLen {
		return user.User{}, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.CreateUser(ctx, user.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        phone,
		Role:         user.RoleCustomer,
	})
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("user_id", created.ID).Info("account registered")
	return created, nil
}

// Authenticate verifies credentials and mints a session token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (user.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return user.User{}, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.WithField("user_id", u.ID).Warn("signin rejected")
		return user.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return user.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	s.log.WithField("user_id", u.ID).Info("signin succeeded")
	return u, token, nil
}

// Get returns an account by id.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.users.GetUser(ctx, id)
}

// UpdateProfile changes the account's name and phone.
func (s *Service) UpdateProfile(ctx context.Context, id, name, phone string) (user.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if name = strings.TrimSpace(name); name != "" {
		u.Name = name
	}
	u.Phone = strings.TrimSpace(phone)

	updated, err := s.users.UpdateUser(ctx, u)
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("user_id", id).Info("profile updated")
	return updated, nil
}

// ChangePassword replaces the account password after verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	if _, err := s.users.UpdateUser(ctx, u); err != nil {
		return err
	}
	s.log.WithField("user_id", id).Info("password changed")
	return nil
}
