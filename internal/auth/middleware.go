package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SystemUserID identifies requests authenticated with the API key
var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000000")

// Middleware handles authentication for HTTP requests
type Middleware struct {
	tokens *TokenManager
	apiKey string
	logger *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(tokens *TokenManager, apiKey string, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		apiKey: apiKey,
		logger: logger,
	}
}

// Authenticate is the main authentication middleware
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Try API key first
		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			if m.validateAPIKey(apiKey) {
				userCtx := &UserContext{
					UserID: SystemUserID,
					Name:   "System",
					Email:  "system@bakery.local",
					Role:   domain.RoleAdmin,
					System: true,
				}

				m.logger.Info("request authenticated",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("auth_type", "api_key"),
					zap.Duration("auth_duration", time.Since(start)),
				)

				next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
				return
			}
			m.logger.Warn("invalid API key attempt",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			writeAuthError(w, http.StatusUnauthorized, domain.ErrorResponse{Message: "Invalid API key"})
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, http.StatusUnauthorized, domain.ErrorResponse{Message: "No token provided"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			writeAuthError(w, http.StatusUnauthorized, domain.ErrorResponse{Message: "Invalid authorization header format"})
			return
		}

		userCtx, err := m.tokens.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			msg := "Invalid token"
			if err == ErrExpiredToken {
				msg = "Token has expired"
			}
			writeAuthError(w, http.StatusUnauthorized, domain.ErrorResponse{Message: msg})
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("auth_type", "jwt"),
			zap.String("user_id", userCtx.UserID.String()),
			zap.String("user_role", string(userCtx.Role)),
			zap.Duration("auth_duration", time.Since(start)),
		)

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequirePermission rejects the request with 403 unless the user's role grants permission.
// The wrapped handler is never invoked on deny.
func (m *Middleware) RequirePermission(permission domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, domain.ErrorResponse{Message: "Authentication required"})
				return
			}

			if !userCtx.HasPermission(permission) {
				m.logger.Info("permission denied",
					zap.String("path", r.URL.Path),
					zap.String("user_id", userCtx.UserID.String()),
					zap.String("user_role", string(userCtx.Role)),
					zap.String("permission", string(permission)),
				)
				writeAuthError(w, http.StatusForbidden, domain.ErrorResponse{
					Message:  "Insufficient permissions",
					UserRole: string(userCtx.Role),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

func writeAuthError(w http.ResponseWriter, status int, body domain.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
