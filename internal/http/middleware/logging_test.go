package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crumbhouse/bakery-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func loggedRouter(log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("loaf"))
	})
	return r
}

func TestLogging_RecordsRouteAndStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := loggedRouter(zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/products/missing", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "/products/{id}", fields["route"])
	assert.Equal(t, "/products/missing", fields["path"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "req-42", fields["request_id"])
}

func TestLogging_AssignsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := loggedRouter(zap.New(core))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/rye", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get("X-Request-ID")
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, id, entry.ContextMap()["request_id"])
	assert.Equal(t, int64(4), entry.ContextMap()["bytes"])
}
