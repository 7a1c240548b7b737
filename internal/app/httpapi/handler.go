// Package httpapi exposes the storefront REST API.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	app "github.com/rosewood-bakery/storefront/internal/app"
	"github.com/rosewood-bakery/storefront/internal/app/domain/category"
	"github.com/rosewood-bakery/storefront/internal/app/domain/order"
	"github.com/rosewood-bakery/storefront/internal/app/domain/product"
	"github.com/rosewood-bakery/storefront/internal/app/domain/user"
	"github.com/rosewood-bakery/storefront/internal/app/metrics"
	"github.com/rosewood-bakery/storefront/internal/app/services/accounts"
	"github.com/rosewood-bakery/storefront/internal/app/services/catalog"
	"github.com/rosewood-bakery/storefront/internal/app/services/favorites"
	"github.com/rosewood-bakery/storefront/internal/app/services/orders"
	"github.com/rosewood-bakery/storefront/internal/middleware"
)

// sessionHeader carries the anonymous cart session id.
const sessionHeader = "X-Session-ID"

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app   *app.Application
	audit *auditLog
}

// Config tunes handler behavior.
type Config struct {
	// AuditFile, when set, appends admin audit entries as JSONL.
	AuditFile string
	// AuditMax bounds the in-memory audit ring. Zero means the default.
	AuditMax int
}

// NewHandler returns a mux exposing the storefront REST API. Identity is
// read from the request context, so the authenticator's OptionalHandler
// must wrap the returned handler.
func NewHandler(application *app.Application, cfg Config) (http.Handler, error) {
	sink, err := newFileAuditSink(cfg.AuditFile)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	h := &handler{
		app:   application,
		audit: newAuditLog(cfg.AuditMax, sink),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/products", h.products)
	mux.HandleFunc("/products/", h.productResources)
	mux.HandleFunc("/categories", h.categories)
	mux.HandleFunc("/categories/", h.categoryResources)
	mux.HandleFunc("/cart", h.cart)
	mux.HandleFunc("/cart/", h.cartResources)
	mux.HandleFunc("/orders", h.orders)
	mux.HandleFunc("/orders/", h.orderResources)
	mux.HandleFunc("/favorites", h.favorites)
	mux.HandleFunc("/favorites/", h.favoriteResources)
	mux.HandleFunc("/auth/signup", h.signup)
	mux.HandleFunc("/auth/signin", h.signin)
	mux.HandleFunc("/auth/me", h.me)
	mux.HandleFunc("/auth/password", h.changePassword)
	mux.HandleFunc("/admin/stats", h.adminStats)
	mux.HandleFunc("/admin/audit", h.adminAudit)
	mux.HandleFunc("/healthz", h.healthz)
	mux.Handle("/metrics", metrics.Handler())
	return mux, nil
}

// requireUser extracts the authenticated user id or rejects the request.
func (h *handler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errors.New("authentication required"))
		return "", false
	}
	return userID, true
}

// requireAdmin rejects the request unless the authenticated role is admin.
// Admin requests are recorded in the audit log.
func (h *handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetUserRole(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errors.New("authentication required"))
		return false
	}
	if role != user.RoleAdmin {
		writeError(w, http.StatusForbidden, errors.New("admin access required"))
		return false
	}
	h.audit.record(r, userID, role)
	return true
}

func (h *handler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	session := strings.TrimSpace(r.Header.Get(sessionHeader))
	if session == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%s header is required", sessionHeader))
		return "", false
	}
	return session, true
}

// --- catalog ----------------------------------------------------------------

func (h *handler) products(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("featured") == "true" {
			featured, err := h.app.Catalog.FeaturedProducts(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, emptyList(featured))
			return
		}
		products, err := h.app.Catalog.ListProducts(r.Context(), r.URL.Query().Get("category"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, emptyList(products))

	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		var payload product.Product
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := h.app.Catalog.CreateProduct(r.Context(), payload)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) productResources(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/products")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.app.Catalog.GetProduct(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case http.MethodPut:
		if !h.requireAdmin(w, r) {
			return
		}
		var payload product.Product
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		payload.ID = id
		updated, err := h.app.Catalog.UpdateProduct(r.Context(), payload)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if !h.requireAdmin(w, r) {
			return
		}
		if err := h.app.Catalog.DeleteProduct(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) categories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := h.app.Catalog.ListCategories(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, emptyList(categories))

	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		var payload category.Category
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := h.app.Catalog.CreateCategory(r.Context(), payload)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) categoryResources(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/categories")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := h.app.Catalog.GetCategory(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, c)

	case http.MethodPut:
		if !h.requireAdmin(w, r) {
			return
		}
		var payload category.Category
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		payload.ID = id
		updated, err := h.app.Catalog.UpdateCategory(r.Context(), payload)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if !h.requireAdmin(w, r) {
			return
		}
		if err := h.app.Catalog.DeleteCategory(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// --- cart -------------------------------------------------------------------

func (h *handler) cart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		view, err := h.app.Cart.Get(r.Context(), session)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	case http.MethodDelete:
		view, err := h.app.Cart.Clear(r.Context(), session)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		metrics.RecordCartOperation("clear")
		writeJSON(w, http.StatusOK, view)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) cartResources(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/cart"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch parts[0] {
	case "items":
		h.cartItems(w, r, session, parts[1:])
	case "open", "close", "toggle":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var view interface{}
		var err error
		switch parts[0] {
		case "open":
			view, err = h.app.Cart.SetOpen(r.Context(), session, true)
		case "close":
			view, err = h.app.Cart.SetOpen(r.Context(), session, false)
		default:
			view, err = h.app.Cart.Toggle(r.Context(), session)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) cartItems(w http.ResponseWriter, r *http.Request, session string, rest []string) {
	if len(rest) == 0 || rest[0] == "" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			ProductID string `json:"product_id"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		view, err := h.app.Cart.AddItem(r.Context(), session, payload.ProductID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		metrics.RecordCartOperation("add")
		writeJSON(w, http.StatusOK, view)
		return
	}

	productID := rest[0]
	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		var payload struct {
			Quantity int `json:"quantity"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		view, err := h.app.Cart.UpdateQuantity(r.Context(), session, productID, payload.Quantity)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		metrics.RecordCartOperation("update")
		writeJSON(w, http.StatusOK, view)

	case http.MethodDelete:
		view, err := h.app.Cart.RemoveItem(r.Context(), session, productID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		metrics.RecordCartOperation("remove")
		writeJSON(w, http.StatusOK, view)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// --- orders -----------------------------------------------------------------

func (h *handler) orders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		session, ok := h.sessionID(w, r)
		if !ok {
			return
		}
		var payload orders.CheckoutInput
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		payload.SessionID = session
		payload.UserID = middleware.GetUserID(r.Context())

		created, err := h.app.Orders.Checkout(r.Context(), payload)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		role := middleware.GetUserRole(r.Context())
		if role == user.RoleAdmin {
			h.audit.record(r, middleware.GetUserID(r.Context()), role)
			all, err := h.app.Orders.List(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, emptyList(all))
			return
		}
		userID, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		own, err := h.app.Orders.ListByUser(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, emptyList(own))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) orderResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/orders"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	orderID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		o, err := h.app.Orders.Get(r.Context(), orderID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		// Customers can only read their own orders; admins read all.
		if middleware.GetUserRole(r.Context()) != user.RoleAdmin && o.UserID != "" && o.UserID != middleware.GetUserID(r.Context()) {
			writeError(w, http.StatusForbidden, errors.New("not your order"))
			return
		}
		writeJSON(w, http.StatusOK, o)
		return
	}

	if parts[1] == "status" {
		if r.Method != http.MethodPatch && r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !h.requireAdmin(w, r) {
			return
		}
		var payload struct {
			Status string `json:"status"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		next := order.Status(strings.ToUpper(strings.TrimSpace(payload.Status)))
		updated, err := h.app.Orders.UpdateStatus(r.Context(), orderID, next)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

// --- favorites --------------------------------------------------------------

func (h *handler) favorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("idsOnly") == "true" {
			ids, err := h.app.Favorites.ListIDs(r.Context(), userID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			if ids == nil {
				ids = []string{}
			}
			writeJSON(w, http.StatusOK, ids)
			return
		}
		products, err := h.app.Favorites.ListProducts(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, emptyList(products))

	case http.MethodPost:
		var payload struct {
			ProductID string `json:"product_id"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := h.app.Favorites.Add(r.Context(), userID, payload.ProductID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) favoriteResources(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	productID := resourceID(r.URL.Path, "/favorites")
	if productID == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := h.app.Favorites.Remove(r.Context(), userID, productID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- auth -------------------------------------------------------------------

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.app.Accounts.Register(r.Context(), payload.Name, payload.Email, payload.Password, payload.Phone)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) signin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	u, token, err := h.app.Accounts.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  u,
		"token": token,
	})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		u, err := h.app.Accounts.Get(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, u)

	case http.MethodPut:
		var payload struct {
			Name  string `json:"name"`
			Phone string `json:"phone"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		updated, err := h.app.Accounts.UpdateProfile(r.Context(), userID, payload.Name, payload.Phone)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) changePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var payload struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.app.Accounts.ChangePassword(r.Context(), userID, payload.OldPassword, payload.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- admin ------------------------------------------------------------------

func (h *handler) adminStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}
	stats, err := h.app.Orders.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) adminAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.audit.listLimit(limit))
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- helpers ----------------------------------------------------------------

// resourceID extracts the single path segment after prefix, or "" when the
// path has extra segments.
func resourceID(path, prefix string) string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" || strings.Contains(trimmed, "/") {
		return ""
	}
	return trimmed
}

// emptyList keeps JSON list responses as [] instead of null.
func emptyList[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var transition *order.InvalidTransitionError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, err)
	case errors.As(err, &transition):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, catalog.ErrCategoryInUse):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, favorites.ErrAlreadyFavorite):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, accounts.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err)
	default:
		writeError(w, http.StatusBadRequest, err)
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
