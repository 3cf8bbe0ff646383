package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crumbhouse/bakery-api/docs"
	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/crumbhouse/bakery-api/internal/database"
	"github.com/crumbhouse/bakery-api/internal/http/handler"
	"github.com/crumbhouse/bakery-api/internal/http/middleware"
	"github.com/crumbhouse/bakery-api/internal/http/router"
	"github.com/crumbhouse/bakery-api/internal/jobs"
	"github.com/crumbhouse/bakery-api/internal/logger"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"github.com/crumbhouse/bakery-api/internal/storage"
	"go.uber.org/zap"
)

// @title Bakery Management API
// @version 1.0
// @description Catalog, inventory, purchasing, production, orders, point of sale, deliveries and reporting for a bakery business

// @contact.name Crumbhouse Engineering
// @contact.email dev@crumbhouse.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token from POST /auth/login

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In staging/production secrets may come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()

	imageStorage, err := storage.New(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	productionRepo := repository.NewProductionRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	purchaseOrderRepo := repository.NewPurchaseOrderRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)

	// Services
	tokens := auth.NewTokenManager(&cfg.Auth)
	numbers := service.NewNumberSequenceService(numberSequenceRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, inventoryRepo, nil, log)

	userService := service.NewUserService(userRepo, tokens, log)
	customerService := service.NewCustomerService(db, customerRepo, log)
	productService := service.NewProductService(productRepo, imageStorage, log)
	warehouseService := service.NewWarehouseService(warehouseRepo, log)
	supplierService := service.NewSupplierService(supplierRepo, log)
	recipeService := service.NewRecipeService(db, recipeRepo, productRepo, log)
	inventoryService := service.NewInventoryService(db, inventoryRepo, productRepo, warehouseRepo, notificationService, log)
	orderService := service.NewOrderService(db, orderRepo, productRepo, customerRepo, numbers, notificationService, log)
	posService := service.NewPOSService(db, orderRepo, inventoryRepo, productRepo, warehouseRepo, customerRepo, numbers, log)
	productionService := service.NewProductionService(db, productionRepo, recipeRepo, productRepo, warehouseRepo, inventoryRepo, numbers, notificationService, log)
	deliveryService := service.NewDeliveryService(db, deliveryRepo, orderRepo, customerRepo, userRepo, numbers, notificationService, log)
	purchaseOrderService := service.NewPurchaseOrderService(db, purchaseOrderRepo, supplierRepo, warehouseRepo, productRepo, inventoryRepo, numbers, log)
	reportService := service.NewReportService(orderRepo, inventoryRepo, productionRepo, deliveryRepo, notificationRepo, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(tokens, cfg.Auth.APIKey, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, router.Handlers{
		Auth:          handler.NewAuthHandler(userService, log),
		User:          handler.NewUserHandler(userService, log),
		Customer:      handler.NewCustomerHandler(customerService, log),
		Product:       handler.NewProductHandler(productService, log),
		Image:         handler.NewImageHandler(productService, cfg.Storage.MaxUploadSizeMB, log),
		Warehouse:     handler.NewWarehouseHandler(warehouseService, log),
		Supplier:      handler.NewSupplierHandler(supplierService, log),
		Inventory:     handler.NewInventoryHandler(inventoryService, log),
		Order:         handler.NewOrderHandler(orderService, log),
		POS:           handler.NewPOSHandler(posService, log),
		Production:    handler.NewProductionHandler(productionService, log),
		Recipe:        handler.NewRecipeHandler(recipeService, log),
		Delivery:      handler.NewDeliveryHandler(deliveryService, log),
		PurchaseOrder: handler.NewPurchaseOrderHandler(purchaseOrderService, log),
		Notification:  handler.NewNotificationHandler(notificationService, log),
		Report:        handler.NewReportHandler(reportService, log),
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler, err = startScheduler(&cfg.Jobs, notificationService, log)
		if err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

func startScheduler(cfg *config.JobsConfig, notifications jobs.NotificationDispatcher, log *zap.Logger) (*jobs.Scheduler, error) {
	scheduler := jobs.NewScheduler(log)

	dispatch := jobs.NewNotificationDispatchJob(notifications, cfg.DispatchBatchSize, cfg.TimeoutDuration(), log)
	if err := scheduler.AddJob(jobs.NotificationDispatchJobName, cfg.NotificationCron, dispatch.Run); err != nil {
		return nil, err
	}

	lowStock := jobs.NewLowStockScanJob(notifications, cfg.TimeoutDuration(), log)
	if err := scheduler.AddJob(jobs.LowStockScanJobName, cfg.LowStockCron, lowStock.Run); err != nil {
		return nil, err
	}

	scheduler.Start()
	return scheduler, nil
}
