// Package middleware provides HTTP middleware for the storefront API.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rosewood-bakery/storefront/internal/app/domain/user"
	"github.com/rosewood-bakery/storefront/pkg/logger"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// Claims are the JWT claims carried in a storefront session token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator issues and validates HMAC-signed session tokens.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	log    *logger.Logger
}

// NewAuthenticator creates an Authenticator with the given signing secret
// and token lifetime.
func NewAuthenticator(secret string, ttl time.Duration, log *logger.Logger) *Authenticator {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Authenticator{
		secret: []byte(secret),
		ttl:    ttl,
		log:    log,
	}
}

// Issue mints a signed token for the user.
func (a *Authenticator) Issue(u user.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Validate parses and verifies a token string.
func (a *Authenticator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Handler authenticates Bearer tokens and stores the identity in the
// request context. Requests without a valid token are rejected.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.claimsFromRequest(r)
		if err != nil {
			a.log.WithError(err).WithField("path", r.URL.Path).Warn("authentication failed")
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, roleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalHandler attaches the identity when a valid token is present but
// lets anonymous requests through. Used on checkout, which serves both
// guests and signed-in customers.
func (a *Authenticator) OptionalHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := a.claimsFromRequest(r); err == nil {
			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) claimsFromRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fmt.Errorf("malformed Authorization header")
	}
	return a.Validate(parts[1])
}

// RequireAdmin rejects requests whose authenticated role is not admin.
// It must run after Handler.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserRole(r.Context()) != user.RoleAdmin {
			http.Error(w, `{"error":"admin access required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID extracts the authenticated user id from the context.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// GetUserRole extracts the authenticated role from the context.
func GetUserRole(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprint(w, `{"error":"authentication required"}`)
}
