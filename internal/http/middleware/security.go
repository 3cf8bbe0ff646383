package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/crumbhouse/bakery-api/internal/config"
)

// swagger UI loads inline scripts and styles
const swaggerContentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"

// SecurityHeaders sets the configured security headers on every response.
// API responses are marked no-store since they carry customer and sales data.
func SecurityHeaders(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	hsts := ""
	if cfg.EnableHSTS {
		hsts = fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			if cfg.ContentTypeNosniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			setIfNotEmpty(h, "X-Frame-Options", cfg.FrameOptions)
			setIfNotEmpty(h, "X-XSS-Protection", cfg.XSSProtection)
			setIfNotEmpty(h, "Referrer-Policy", cfg.ReferrerPolicy)
			setIfNotEmpty(h, "Permissions-Policy", cfg.PermissionsPolicy)
			setIfNotEmpty(h, "Strict-Transport-Security", hsts)

			switch {
			case strings.HasPrefix(r.URL.Path, "/swagger"):
				h.Set("Content-Security-Policy", swaggerContentSecurityPolicy)
			case cfg.ContentSecurityPolicy != "":
				h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}

			if strings.HasPrefix(r.URL.Path, "/api/") && !strings.HasPrefix(r.URL.Path, "/api/v1/public/") {
				h.Set("Cache-Control", "no-store")
			}

			h.Del("X-Powered-By")
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}

func setIfNotEmpty(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}
