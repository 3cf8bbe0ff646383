package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"github.com/crumbhouse/bakery-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testServices wires every service against one test database
type testServices struct {
	db            *gorm.DB
	notifications *service.NotificationService
	inventory     *service.InventoryService
	orders        *service.OrderService
	pos           *service.POSService
	production    *service.ProductionService
	purchasing    *service.PurchaseOrderService
	deliveries    *service.DeliveryService
	reports       *service.ReportService
	users         *service.UserService
	sender        *recordingSender
}

// recordingSender captures dispatched notifications and fails when err is set
type recordingSender struct {
	sent []domain.Notification
	err  error
}

func (s *recordingSender) Send(ctx context.Context, n *domain.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, *n)
	return nil
}

var errSendFailed = errors.New("smtp unavailable")

func setupServices(t *testing.T) *testServices {
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	productionRepo := repository.NewProductionRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	sender := &recordingSender{}
	numbers := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), log)
	notifications := service.NewNotificationService(notificationRepo, inventoryRepo, sender, log)
	tokens := auth.NewTokenManager(&config.AuthConfig{JWTSecret: "service-test-secret", Issuer: "bakery-api", TokenTTL: 60})

	return &testServices{
		db:            db,
		notifications: notifications,
		inventory:     service.NewInventoryService(db, inventoryRepo, productRepo, warehouseRepo, notifications, log),
		orders:        service.NewOrderService(db, orderRepo, productRepo, customerRepo, numbers, notifications, log),
		pos:           service.NewPOSService(db, orderRepo, inventoryRepo, productRepo, warehouseRepo, customerRepo, numbers, log),
		production:    service.NewProductionService(db, productionRepo, recipeRepo, productRepo, warehouseRepo, inventoryRepo, numbers, notifications, log),
		purchasing:    service.NewPurchaseOrderService(db, poRepo, supplierRepo, warehouseRepo, productRepo, inventoryRepo, numbers, log),
		deliveries:    service.NewDeliveryService(db, deliveryRepo, orderRepo, customerRepo, userRepo, numbers, notifications, log),
		reports:       service.NewReportService(orderRepo, inventoryRepo, productionRepo, deliveryRepo, notificationRepo, log),
		users:         service.NewUserService(userRepo, tokens, log),
		sender:        sender,
	}
}
