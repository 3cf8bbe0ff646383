package middleware

import (
	"net/http"
	"strings"

	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// headers the bakery clients always need, merged into whatever is configured
var (
	requiredCORSHeaders = []string{"Authorization", "Content-Type", "x-api-key", "X-Request-ID"}
	exposedCORSHeaders  = []string{"X-Request-ID", "Content-Disposition", "Retry-After"}
)

// CORS builds the cross-origin policy for the storefront and back-office clients.
// An empty origin list allows every origin outside production-like environments and none inside them.
func CORS(cfg *config.CORSConfig, app *config.AppConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   mergeHeaders(cfg.AllowedHeaders, requiredCORSHeaders),
		ExposedHeaders:   mergeHeaders(cfg.ExposedHeaders, exposedCORSHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	productionLike := app.IsProductionLike()
	environment := app.Environment
	allowAny := func(r *http.Request, origin string) bool { return origin != "" }

	switch {
	case containsWildcard(cfg.AllowedOrigins):
		if productionLike {
			logger.Warn("CORS wildcard origin configured in production-like environment",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAny
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS configured with explicit origins", zap.Strings("origins", cfg.AllowedOrigins))
	case productionLike:
		// empty AllowedOrigins means "*" in go-chi/cors
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
		logger.Warn("CORS has no allowed origins, cross-origin requests will be denied",
			zap.String("environment", environment))
	default:
		options.AllowOriginFunc = allowAny
		logger.Info("CORS allowing all origins", zap.String("environment", environment))
	}

	return cors.Handler(options)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func mergeHeaders(configured, required []string) []string {
	out := make([]string, 0, len(configured)+len(required))
	seen := make(map[string]bool, len(configured)+len(required))
	for _, h := range append(append([]string{}, configured...), required...) {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}
