package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/crumbhouse/bakery-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
)

func serveWithSecurityHeaders(cfg *config.SecurityConfig, path string) *httptest.ResponseRecorder {
	handler := middleware.SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSecurityHeaders_DefaultConfig(t *testing.T) {
	cfg := &config.SecurityConfig{
		ContentTypeNosniff:    true,
		FrameOptions:          "DENY",
		XSSProtection:         "1; mode=block",
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "geolocation=(), camera=()",
	}

	w := serveWithSecurityHeaders(cfg, "/health")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "geolocation=(), camera=()", w.Header().Get("Permissions-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, w.Header().Get("Cache-Control"))
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	cfg := &config.SecurityConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		HSTSPreload:           true,
	}

	w := serveWithSecurityHeaders(cfg, "/health")

	assert.Equal(t, "max-age=31536000; includeSubDomains; preload", w.Header().Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_CacheControl(t *testing.T) {
	cfg := &config.SecurityConfig{}

	assert.Equal(t, "no-store", serveWithSecurityHeaders(cfg, "/api/v1/orders").Header().Get("Cache-Control"))
	assert.Empty(t, serveWithSecurityHeaders(cfg, "/api/v1/public/products").Header().Get("Cache-Control"))
}

func TestSecurityHeaders_SwaggerGetsRelaxedCSP(t *testing.T) {
	cfg := &config.SecurityConfig{ContentSecurityPolicy: "default-src 'none'"}

	w := serveWithSecurityHeaders(cfg, "/swagger/index.html")

	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "'unsafe-inline'")
}
