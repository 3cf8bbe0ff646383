package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/http/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createTestRateLimiter(cfg *config.RateLimitConfig) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg, zap.NewNop())
}

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := createTestRateLimiter(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1})
	calls := 0
	handler := rl.LimitByIP(okHandler(&calls))

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/login", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 50, calls)
}

func TestRateLimiter_LimitExceeded(t *testing.T) {
	rl := createTestRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2})
	calls := 0
	handler := rl.LimitByIP(okHandler(&calls))

	var limited *httptest.ResponseRecorder
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited = w
		}
	}

	require.NotNil(t, limited, "some requests should be rate limited")
	assert.Less(t, calls, 10)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", limited.Header().Get("Content-Type"))

	var body domain.ErrorResponse
	require.NoError(t, json.NewDecoder(limited.Body).Decode(&body))
	assert.Equal(t, "RATE_LIMITED", body.Error)
	assert.Equal(t, "Too many requests. Please try again later.", body.Message)
}

func TestRateLimiter_WhitelistedIP(t *testing.T) {
	rl := createTestRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistIPs:      []string{"10.0.0.1"},
	})
	calls := 0
	handler := rl.LimitByIP(okHandler(&calls))

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/login", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 20, calls)
}

func TestRateLimiter_WhitelistedPathPrefix(t *testing.T) {
	rl := createTestRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistPaths:    []string{"/health/*"},
	})
	calls := 0
	handler := rl.LimitByIP(okHandler(&calls))

	paths := []string{"/health/db", "/health/ready"}
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, paths[i%len(paths)], nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 10, calls)
}

func TestRateLimiter_AuthenticatedUsersGetTheirOwnBudget(t *testing.T) {
	rl := createTestRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     1,
		RequestsPerMinuteAuth: 100,
	})
	calls := 0
	handler := rl.Limit(okHandler(&calls))

	userCtx := &auth.UserContext{UserID: uuid.New(), Name: "Counter", Role: domain.RoleCashier}
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req = req.WithContext(auth.WithUserContext(context.Background(), userCtx))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 10, calls)
}

func TestRateLimiter_PublicLimiterFallsBackToGeneralLimit(t *testing.T) {
	rl := createTestRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2})
	calls := 0
	handler := rl.LimitPublic(okHandler(&calls))

	limited := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/public/products", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Greater(t, limited, 0)
	assert.Equal(t, 10, calls+limited)
}
