package router

import (
	"encoding/json"
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/crumbhouse/bakery-api/internal/database"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/http/handler"
	"github.com/crumbhouse/bakery-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/crumbhouse/bakery-api/docs" // Import generated swagger docs
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth          *handler.AuthHandler
	User          *handler.UserHandler
	Customer      *handler.CustomerHandler
	Product       *handler.ProductHandler
	Image         *handler.ImageHandler
	Warehouse     *handler.WarehouseHandler
	Supplier      *handler.SupplierHandler
	Inventory     *handler.InventoryHandler
	Order         *handler.OrderHandler
	POS           *handler.POSHandler
	Production    *handler.ProductionHandler
	Recipe        *handler.RecipeHandler
	Delivery      *handler.DeliveryHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Notification  *handler.NotificationHandler
	Report        *handler.ReportHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	h              Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		h:              handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, &rt.cfg.App, rt.logger))
	if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", rt.databaseHealth)

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", rt.readiness)

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitByIP)
			r.Post("/auth/login", rt.h.Auth.Login)
		})
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitPublic)
			r.Get("/public/products", rt.h.Product.ListPublic)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			r.Get("/auth/me", rt.h.Auth.Me)
			r.Put("/auth/password", rt.h.Auth.ChangePassword)

			r.Route("/users", func(r chi.Router) {
				r.With(rt.require(domain.PermissionUsersRead)).Get("/", rt.h.User.List)
				r.With(rt.require(domain.PermissionUsersWrite)).Post("/", rt.h.User.Create)
				r.With(rt.require(domain.PermissionUsersRead)).Get("/{id}", rt.h.User.GetByID)
				r.With(rt.require(domain.PermissionUsersWrite)).Put("/{id}", rt.h.User.Update)
				r.With(rt.require(domain.PermissionUsersWrite)).Put("/{id}/active", rt.h.User.SetActive)
				r.With(rt.require(domain.PermissionUsersDelete)).Delete("/{id}", rt.h.User.Delete)
			})

			r.Route("/customers", func(r chi.Router) {
				r.With(rt.require(domain.PermissionCustomersRead)).Get("/", rt.h.Customer.List)
				r.With(rt.require(domain.PermissionCustomersWrite)).Post("/", rt.h.Customer.Create)
				r.With(rt.require(domain.PermissionCustomersRead)).Get("/{id}", rt.h.Customer.GetByID)
				r.With(rt.require(domain.PermissionCustomersWrite)).Put("/{id}", rt.h.Customer.Update)
				r.With(rt.require(domain.PermissionCustomersWrite)).Put("/{id}/active", rt.h.Customer.SetActive)
				r.With(rt.require(domain.PermissionCustomersDelete)).Delete("/{id}", rt.h.Customer.Delete)

				r.With(rt.require(domain.PermissionCustomersRead)).Get("/{id}/locations", rt.h.Customer.ListLocations)
				r.With(rt.require(domain.PermissionCustomersWrite)).Post("/{id}/locations", rt.h.Customer.AddLocation)
				r.With(rt.require(domain.PermissionCustomersWrite)).Put("/{id}/locations/{locationId}", rt.h.Customer.UpdateLocation)
				r.With(rt.require(domain.PermissionCustomersWrite)).Delete("/{id}/locations/{locationId}", rt.h.Customer.DeleteLocation)
			})

			r.Route("/products", func(r chi.Router) {
				r.With(rt.require(domain.PermissionProductsRead)).Get("/", rt.h.Product.List)
				r.With(rt.require(domain.PermissionProductsWrite)).Post("/", rt.h.Product.Create)
				r.With(rt.require(domain.PermissionProductsRead)).Get("/{id}", rt.h.Product.GetByID)
				r.With(rt.require(domain.PermissionProductsWrite)).Put("/{id}", rt.h.Product.Update)
				r.With(rt.require(domain.PermissionProductsWrite)).Put("/{id}/active", rt.h.Product.SetActive)
				r.With(rt.require(domain.PermissionProductsDelete)).Delete("/{id}", rt.h.Product.Delete)
				r.With(rt.require(domain.PermissionProductsWrite)).Put("/{id}/image", rt.h.Image.Upload)
				r.With(rt.require(domain.PermissionProductsRead)).Get("/{id}/image", rt.h.Image.Get)
			})

			r.Route("/warehouses", func(r chi.Router) {
				r.With(rt.require(domain.PermissionWarehousesRead)).Get("/", rt.h.Warehouse.List)
				r.With(rt.require(domain.PermissionWarehousesWrite)).Post("/", rt.h.Warehouse.Create)
				r.With(rt.require(domain.PermissionWarehousesRead)).Get("/{id}", rt.h.Warehouse.GetByID)
				r.With(rt.require(domain.PermissionWarehousesWrite)).Put("/{id}", rt.h.Warehouse.Update)
				r.With(rt.require(domain.PermissionWarehousesWrite)).Put("/{id}/active", rt.h.Warehouse.SetActive)
				r.With(rt.require(domain.PermissionWarehousesDelete)).Delete("/{id}", rt.h.Warehouse.Delete)
			})

			r.Route("/suppliers", func(r chi.Router) {
				r.With(rt.require(domain.PermissionSuppliersRead)).Get("/", rt.h.Supplier.List)
				r.With(rt.require(domain.PermissionSuppliersWrite)).Post("/", rt.h.Supplier.Create)
				r.With(rt.require(domain.PermissionSuppliersRead)).Get("/{id}", rt.h.Supplier.GetByID)
				r.With(rt.require(domain.PermissionSuppliersWrite)).Put("/{id}", rt.h.Supplier.Update)
				r.With(rt.require(domain.PermissionSuppliersWrite)).Put("/{id}/active", rt.h.Supplier.SetActive)
				r.With(rt.require(domain.PermissionSuppliersDelete)).Delete("/{id}", rt.h.Supplier.Delete)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.With(rt.require(domain.PermissionInventoryRead)).Get("/", rt.h.Inventory.List)
				r.With(rt.require(domain.PermissionInventoryWrite)).Post("/", rt.h.Inventory.Create)
				r.With(rt.require(domain.PermissionInventoryTransfer)).Post("/transfer", rt.h.Inventory.Transfer)
				r.With(rt.require(domain.PermissionInventoryRead)).Get("/movements", rt.h.Inventory.ListMovements)
				r.With(rt.require(domain.PermissionInventoryRead)).Get("/{id}", rt.h.Inventory.GetByID)
				r.With(rt.require(domain.PermissionInventoryWrite)).Put("/{id}", rt.h.Inventory.Update)
				r.With(rt.require(domain.PermissionInventoryDelete)).Delete("/{id}", rt.h.Inventory.Delete)
				r.With(rt.require(domain.PermissionInventoryWrite)).Post("/{id}/adjust", rt.h.Inventory.Adjust)
				r.With(rt.require(domain.PermissionInventoryWrite)).Post("/{id}/reserve", rt.h.Inventory.Reserve)
				r.With(rt.require(domain.PermissionInventoryWrite)).Post("/{id}/release", rt.h.Inventory.Release)
				r.With(rt.require(domain.PermissionInventoryRead)).Get("/{id}/movements", rt.h.Inventory.ListRowMovements)
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(rt.require(domain.PermissionOrdersRead)).Get("/", rt.h.Order.List)
				r.With(rt.require(domain.PermissionOrdersWrite)).Post("/", rt.h.Order.Create)
				r.With(rt.require(domain.PermissionOrdersRead)).Get("/{id}", rt.h.Order.GetByID)
				r.With(rt.require(domain.PermissionOrdersWrite)).Put("/{id}", rt.h.Order.Update)
				r.With(rt.require(domain.PermissionOrdersWrite)).Put("/{id}/status", rt.h.Order.UpdateStatus)
				r.With(rt.require(domain.PermissionOrdersWrite)).Put("/{id}/payment", rt.h.Order.UpdatePayment)
				r.With(rt.require(domain.PermissionOrdersDelete)).Delete("/{id}", rt.h.Order.Delete)
			})

			r.With(rt.require(domain.PermissionPOSSell)).Post("/pos/sales", rt.h.POS.Sell)

			r.Route("/productions", func(r chi.Router) {
				r.With(rt.require(domain.PermissionProductionRead)).Get("/", rt.h.Production.List)
				r.With(rt.require(domain.PermissionProductionWrite)).Post("/", rt.h.Production.Create)
				r.With(rt.require(domain.PermissionProductionRead)).Get("/{id}", rt.h.Production.GetByID)
				r.With(rt.require(domain.PermissionProductionWrite)).Put("/{id}", rt.h.Production.Update)
				r.With(rt.require(domain.PermissionProductionWrite)).Put("/{id}/status", rt.h.Production.UpdateStatus)
				r.With(rt.require(domain.PermissionProductionDelete)).Delete("/{id}", rt.h.Production.Delete)
			})

			r.Route("/recipes", func(r chi.Router) {
				r.With(rt.require(domain.PermissionRecipesRead)).Get("/", rt.h.Recipe.List)
				r.With(rt.require(domain.PermissionRecipesWrite)).Post("/", rt.h.Recipe.Create)
				r.With(rt.require(domain.PermissionRecipesRead)).Get("/{id}", rt.h.Recipe.GetByID)
				r.With(rt.require(domain.PermissionRecipesWrite)).Put("/{id}", rt.h.Recipe.Update)
				r.With(rt.require(domain.PermissionRecipesWrite)).Put("/{id}/active", rt.h.Recipe.SetActive)
				r.With(rt.require(domain.PermissionRecipesDelete)).Delete("/{id}", rt.h.Recipe.Delete)
			})

			r.Route("/deliveries", func(r chi.Router) {
				r.With(rt.require(domain.PermissionDeliveriesRead)).Get("/", rt.h.Delivery.List)
				r.With(rt.require(domain.PermissionDeliveriesWrite)).Post("/", rt.h.Delivery.Create)
				r.With(rt.require(domain.PermissionDeliveriesRead)).Get("/{id}", rt.h.Delivery.GetByID)
				r.With(rt.require(domain.PermissionDeliveriesWrite)).Put("/{id}", rt.h.Delivery.Update)
				r.With(rt.require(domain.PermissionDeliveriesWrite)).Put("/{id}/status", rt.h.Delivery.UpdateStatus)
				r.With(rt.require(domain.PermissionDeliveriesDelete)).Delete("/{id}", rt.h.Delivery.Delete)
			})

			r.Route("/purchase-orders", func(r chi.Router) {
				r.With(rt.require(domain.PermissionPurchasingRead)).Get("/", rt.h.PurchaseOrder.List)
				r.With(rt.require(domain.PermissionPurchasingWrite)).Post("/", rt.h.PurchaseOrder.Create)
				r.With(rt.require(domain.PermissionPurchasingRead)).Get("/{id}", rt.h.PurchaseOrder.GetByID)
				r.With(rt.require(domain.PermissionPurchasingWrite)).Put("/{id}", rt.h.PurchaseOrder.Update)
				r.With(rt.require(domain.PermissionPurchasingWrite)).Put("/{id}/status", rt.h.PurchaseOrder.UpdateStatus)
				r.With(rt.require(domain.PermissionPurchasingDelete)).Delete("/{id}", rt.h.PurchaseOrder.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.With(rt.require(domain.PermissionNotificationsRead)).Get("/", rt.h.Notification.List)
				r.With(rt.require(domain.PermissionNotificationsRead)).Get("/count", rt.h.Notification.GetUnreadCount)
				r.With(rt.require(domain.PermissionNotificationsManage)).Post("/", rt.h.Notification.Create)
				r.With(rt.require(domain.PermissionNotificationsRead)).Get("/{id}", rt.h.Notification.GetByID)
				r.With(rt.require(domain.PermissionNotificationsRead)).Put("/{id}/read", rt.h.Notification.MarkAsRead)
				r.With(rt.require(domain.PermissionNotificationsManage)).Delete("/{id}", rt.h.Notification.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(rt.require(domain.PermissionReportsView))
				r.Get("/sales", rt.h.Report.Sales)
				r.With(rt.require(domain.PermissionReportsExport)).Get("/sales/export", rt.h.Report.ExportSales)
				r.Get("/inventory", rt.h.Report.Inventory)
				r.Get("/production", rt.h.Report.Production)
				r.Get("/deliveries", rt.h.Report.Deliveries)
				r.Get("/dashboard", rt.h.Report.Dashboard)
			})
		})
	})

	return r
}

func (rt *Router) require(permission domain.Permission) func(http.Handler) http.Handler {
	return rt.authMiddleware.RequirePermission(permission)
}

func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := database.HealthCheckWithStats(rt.db)
	if err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		writeHealth(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	writeHealth(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats": map[string]interface{}{
			"max_open_connections": stats.MaxOpenConnections,
			"open_connections":     stats.OpenConnections,
			"in_use":               stats.InUse,
			"idle":                 stats.Idle,
			"wait_count":           stats.WaitCount,
			"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			"max_idle_closed":      stats.MaxIdleClosed,
			"max_lifetime_closed":  stats.MaxLifetimeClosed,
		},
	})
}

func (rt *Router) readiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	status, code := "healthy", http.StatusOK

	if err := database.HealthCheck(rt.db); err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
		status, code = "unhealthy", http.StatusServiceUnavailable
	} else {
		checks["database"] = map[string]interface{}{
			"status": "healthy",
		}
	}

	writeHealth(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

func writeHealth(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
