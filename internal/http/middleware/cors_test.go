package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/crumbhouse/bakery-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func corsPreflight(t *testing.T, cfg *config.CORSConfig, environment, origin string) *httptest.ResponseRecorder {
	t.Helper()
	handler := middleware.CORS(cfg, &config.AppConfig{Environment: environment}, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "x-api-key")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCORS_DevelopmentAllowsAllOrigins(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		MaxAge:         300,
	}

	w := corsPreflight(t, cfg, "development", "http://localhost:5173")

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Api-Key")
}

func TestCORS_ExplicitOrigins(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedOrigins: []string{"https://shop.crumbhouse.example"},
		AllowedMethods: []string{"GET", "POST"},
	}

	allowed := corsPreflight(t, cfg, "production", "https://shop.crumbhouse.example")
	assert.Equal(t, "https://shop.crumbhouse.example", allowed.Header().Get("Access-Control-Allow-Origin"))

	denied := corsPreflight(t, cfg, "production", "https://evil.example")
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProductionWithoutOriginsDeniesAll(t *testing.T) {
	cfg := &config.CORSConfig{AllowedMethods: []string{"GET"}}

	w := corsPreflight(t, cfg, "production", "https://shop.crumbhouse.example")

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
