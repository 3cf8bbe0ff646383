package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// RateLimiter throttles traffic per minute in three tiers. Anonymous callers are
// counted by remote address, signed-in staff by user ID, and the public catalog
// by remote address against its own budget.
type RateLimiter struct {
	enabled       bool
	logger        *zap.Logger
	anonymous     *httprate.RateLimiter
	authenticated *httprate.RateLimiter
	public        *httprate.RateLimiter
	allow         allowList
}

// NewRateLimiter builds the limiter tiers. Zero budgets for the authenticated and
// public tiers fall back to RequestsPerMinute.
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	authRPM := cfg.RequestsPerMinuteAuth
	if authRPM <= 0 {
		authRPM = cfg.RequestsPerMinute
	}
	publicRPM := cfg.PublicRequestsPerMinute
	if publicRPM <= 0 {
		publicRPM = cfg.RequestsPerMinute
	}

	rl := &RateLimiter{
		enabled: cfg.Enabled,
		logger:  logger,
		allow:   newAllowList(cfg.WhitelistIPs, cfg.WhitelistPaths),
	}
	rl.anonymous = rl.tier(cfg.RequestsPerMinute)
	rl.authenticated = rl.tier(authRPM)
	rl.public = rl.tier(publicRPM)

	if cfg.Enabled {
		logger.Info("rate limiter enabled",
			zap.Int("anonymous_rpm", cfg.RequestsPerMinute),
			zap.Int("authenticated_rpm", authRPM),
			zap.Int("public_rpm", publicRPM),
			zap.Int("allowed_ips", len(cfg.WhitelistIPs)),
			zap.Strings("allowed_paths", cfg.WhitelistPaths),
		)
	}
	return rl
}

func (rl *RateLimiter) tier(rpm int) *httprate.RateLimiter {
	return httprate.NewRateLimiter(rpm, time.Minute, httprate.WithLimitHandler(rl.reject))
}

// Limit runs behind Authenticate and counts by user when one is known
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return rl.guard(next, true, func(r *http.Request) (*httprate.RateLimiter, string) {
		if user, ok := auth.FromContext(r.Context()); ok && user != nil {
			return rl.authenticated, "user:" + user.UserID.String()
		}
		return rl.anonymous, remoteKey(r)
	})
}

// LimitByIP is for routes mounted before authentication, such as login
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	return rl.guard(next, true, func(r *http.Request) (*httprate.RateLimiter, string) {
		return rl.anonymous, remoteKey(r)
	})
}

// LimitPublic guards the anonymous catalog. Path allow-listing does not apply.
func (rl *RateLimiter) LimitPublic(next http.Handler) http.Handler {
	return rl.guard(next, false, func(r *http.Request) (*httprate.RateLimiter, string) {
		return rl.public, remoteKey(r)
	})
}

func (rl *RateLimiter) guard(next http.Handler, honorPaths bool, pick func(*http.Request) (*httprate.RateLimiter, string)) http.Handler {
	if !rl.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (honorPaths && rl.allow.path(r.URL.Path)) || rl.allow.ip(clientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}
		limiter, key := pick(r)
		if limiter.RespondOnLimit(w, r, key) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// reject answers a throttled request. httprate has already set Retry-After.
func (rl *RateLimiter) reject(w http.ResponseWriter, r *http.Request) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", clientIP(r)),
	}
	if user, ok := auth.FromContext(r.Context()); ok && user != nil {
		fields = append(fields, zap.String("user_id", user.UserID.String()))
	}
	rl.logger.Warn("rate limit exceeded", fields...)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{
		Message: "Too many requests. Please try again later.",
		Error:   domain.ErrorCodeRateLimited,
	})
}

// remoteKey counts by the connection address so a forged X-Forwarded-For cannot
// open a fresh budget.
func remoteKey(r *http.Request) string {
	ip, _ := httprate.KeyByIP(r)
	return "ip:" + ip
}

// clientIP is the first X-Forwarded-For hop, then X-Real-IP, then the remote address
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// allowList holds addresses and paths that skip rate limiting. Paths ending in
// "/*" match by prefix.
type allowList struct {
	ips      map[string]struct{}
	paths    map[string]struct{}
	prefixes []string
}

func newAllowList(ips, paths []string) allowList {
	a := allowList{ips: make(map[string]struct{}, len(ips)), paths: make(map[string]struct{}, len(paths))}
	for _, ip := range ips {
		a.ips[ip] = struct{}{}
	}
	for _, p := range paths {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			a.prefixes = append(a.prefixes, prefix)
			continue
		}
		a.paths[p] = struct{}{}
	}
	return a
}

func (a allowList) ip(ip string) bool {
	_, ok := a.ips[ip]
	return ok
}

func (a allowList) path(p string) bool {
	if _, ok := a.paths[p]; ok {
		return true
	}
	for _, prefix := range a.prefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
