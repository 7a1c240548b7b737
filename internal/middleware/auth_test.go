package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rosewood-bakery/storefront/internal/app/domain/user"
)

func testUser(role string) user.User {
	return user.User{ID: "u-1", Email: "jane@example.com", Role: role}
}

func TestIssueAndValidate(t *testing.T) {
	auth := NewAuthenticator("test-secret", time.Hour, nil)

	token, err := auth.Issue(testUser(user.RoleCustomer))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := auth.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != user.RoleCustomer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewAuthenticator("secret-a", time.Hour, nil).Issue(testUser(user.RoleCustomer))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewAuthenticator("secret-b", time.Hour, nil).Validate(token); err == nil {
		t.Fatal("expected token signed with other secret to fail")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	auth := NewAuthenticator("test-secret", -time.Minute, nil)
	token, err := auth.Issue(testUser(user.RoleCustomer))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := auth.Validate(token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestHandlerRejectsMissingToken(t *testing.T) {
	auth := NewAuthenticator("test-secret", time.Hour, nil)
	handler := auth.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not reach the next handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favorites", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandlerStoresIdentity(t *testing.T) {
	auth := NewAuthenticator("test-secret", time.Hour, nil)
	token, err := auth.Issue(testUser(user.RoleAdmin))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var gotUser, gotRole string
	handler := auth.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUserID(r.Context())
		gotRole = GetUserRole(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/favorites", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != "u-1" || gotRole != user.RoleAdmin {
		t.Fatalf("identity not propagated: user=%q role=%q", gotUser, gotRole)
	}
}

func TestOptionalHandlerAllowsAnonymous(t *testing.T) {
	auth := NewAuthenticator("test-secret", time.Hour, nil)

	var gotUser string
	handler := auth.OptionalHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUserID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != "" {
		t.Fatalf("expected anonymous request, got user %q", gotUser)
	}
}

func TestRequireAdmin(t *testing.T) {
	auth := NewAuthenticator("test-secret", time.Hour, nil)
	handler := auth.Handler(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	token, err := auth.Issue(testUser(user.RoleCustomer))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", rec.Code)
	}

	adminToken, err := auth.Issue(testUser(user.RoleAdmin))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}
