package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "bakery-test-key"

func newMiddleware() (*auth.Middleware, *auth.TokenManager) {
	tokens := newTokenManager("bakery-api", 60)
	return auth.NewMiddleware(tokens, testAPIKey, zap.NewNop()), tokens
}

// protected runs handler behind Authenticate and RequirePermission
func protected(m *auth.Middleware, permission domain.Permission) (http.Handler, *bool) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})
	return m.Authenticate(m.RequirePermission(permission)(inner)), &called
}

// TestMiddleware_Authenticate tests header handling of the authentication middleware
func TestMiddleware_Authenticate(t *testing.T) {
	m, tokens := newMiddleware()

	t.Run("missing credentials", func(t *testing.T) {
		h, called := protected(m, domain.PermissionProductsRead)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("malformed header", func(t *testing.T) {
		h, _ := protected(m, domain.PermissionProductsRead)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong api key", func(t *testing.T) {
		h, _ := protected(m, domain.PermissionProductsRead)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.Header.Set("x-api-key", "nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("api key acts as system admin", func(t *testing.T) {
		var seen *auth.UserContext
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = auth.FromContext(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("x-api-key", testAPIKey)
		m.Authenticate(m.RequirePermission(domain.PermissionUsersDelete)(inner)).ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, seen)
		assert.True(t, seen.System)
		assert.Equal(t, domain.RoleAdmin, seen.Role)
		assert.Equal(t, auth.SystemUserID, seen.UserID)
	})

	t.Run("valid bearer token", func(t *testing.T) {
		token, _, err := tokens.Issue(testUser(domain.RoleCashier))
		require.NoError(t, err)

		h, called := protected(m, domain.PermissionPOSSell)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/sales", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, *called)
	})
}

// TestMiddleware_RequirePermission tests the 403 body and that the handler never runs on deny
func TestMiddleware_RequirePermission(t *testing.T) {
	m, tokens := newMiddleware()
	token, _, err := tokens.Issue(testUser(domain.RoleCashier))
	require.NoError(t, err)

	h, called := protected(m, domain.PermissionInventoryWrite)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, *called)

	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Insufficient permissions", body.Message)
	assert.Equal(t, string(domain.RoleCashier), body.UserRole)
}

func TestMiddleware_RequirePermissionWithoutUser(t *testing.T) {
	m, _ := newMiddleware()
	rec := httptest.NewRecorder()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	m.RequirePermission(domain.PermissionProductsRead)(inner).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
