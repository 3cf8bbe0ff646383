package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/http/handler"
	"github.com/crumbhouse/bakery-api/internal/http/middleware"
	"github.com/crumbhouse/bakery-api/internal/http/router"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"github.com/crumbhouse/bakery-api/internal/storage"
	"github.com/crumbhouse/bakery-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testAPIKey = "router-test-api-key"

type testApp struct {
	db      *gorm.DB
	handler http.Handler
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	log := zap.NewNop()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{
		App:       config.AppConfig{Name: "bakery-api", Environment: "development"},
		Auth:      config.AuthConfig{JWTSecret: "router-test-secret", Issuer: "bakery-api", TokenTTL: 60, APIKey: testAPIKey},
		Storage:   config.StorageConfig{Mode: "local", MaxUploadSizeMB: 5},
		RateLimit: config.RateLimitConfig{Enabled: false, RequestsPerMinute: 100},
		Security:  config.SecurityConfig{ContentTypeNosniff: true},
	}

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

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

	tokens := auth.NewTokenManager(&cfg.Auth)
	numbers := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), log)
	notificationService := service.NewNotificationService(notificationRepo, inventoryRepo, nil, log)

	userService := service.NewUserService(userRepo, tokens, log)
	customerService := service.NewCustomerService(db, customerRepo, log)
	productService := service.NewProductService(productRepo, store, log)
	inventoryService := service.NewInventoryService(db, inventoryRepo, productRepo, warehouseRepo, notificationService, log)
	orderService := service.NewOrderService(db, orderRepo, productRepo, customerRepo, numbers, notificationService, log)

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(userService, log),
		User:          handler.NewUserHandler(userService, log),
		Customer:      handler.NewCustomerHandler(customerService, log),
		Product:       handler.NewProductHandler(productService, log),
		Image:         handler.NewImageHandler(productService, cfg.Storage.MaxUploadSizeMB, log),
		Warehouse:     handler.NewWarehouseHandler(service.NewWarehouseService(warehouseRepo, log), log),
		Supplier:      handler.NewSupplierHandler(service.NewSupplierService(supplierRepo, log), log),
		Inventory:     handler.NewInventoryHandler(inventoryService, log),
		Order:         handler.NewOrderHandler(orderService, log),
		POS:           handler.NewPOSHandler(service.NewPOSService(db, orderRepo, inventoryRepo, productRepo, warehouseRepo, customerRepo, numbers, log), log),
		Production:    handler.NewProductionHandler(service.NewProductionService(db, productionRepo, recipeRepo, productRepo, warehouseRepo, inventoryRepo, numbers, notificationService, log), log),
		Recipe:        handler.NewRecipeHandler(service.NewRecipeService(db, recipeRepo, productRepo, log), log),
		Delivery:      handler.NewDeliveryHandler(service.NewDeliveryService(db, deliveryRepo, orderRepo, customerRepo, userRepo, numbers, notificationService, log), log),
		PurchaseOrder: handler.NewPurchaseOrderHandler(service.NewPurchaseOrderService(db, purchaseOrderRepo, supplierRepo, warehouseRepo, productRepo, inventoryRepo, numbers, log), log),
		Notification:  handler.NewNotificationHandler(notificationService, log),
		Report:        handler.NewReportHandler(service.NewReportService(orderRepo, inventoryRepo, productionRepo, deliveryRepo, notificationRepo, log), log),
	}

	authMiddleware := auth.NewMiddleware(tokens, cfg.Auth.APIKey, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	return &testApp{
		db:      db,
		handler: router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, h).Setup(),
	}
}

type requestOption func(*http.Request)

func withAPIKey(r *http.Request) { r.Header.Set("x-api-key", testAPIKey) }

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(dst), w.Body.String())
}

// login returns a bearer token for a freshly created user with role
func (a *testApp) login(t *testing.T, email string, role domain.UserRole) string {
	t.Helper()
	testutil.CreateUser(t, a.db, email, "correct-horse-battery", role)

	w := a.do(t, http.MethodPost, "/api/v1/auth/login", domain.LoginRequest{Email: email, Password: "correct-horse-battery"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp domain.LoginResponse
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = app.do(t, http.MethodGet, "/health/db", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRouteRequiresAuthentication(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = app.do(t, http.MethodGet, "/api/v1/products", nil, withToken("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginAndMe(t *testing.T) {
	app := setupApp(t)
	token := app.login(t, "manager@crumbhouse.example", domain.RoleStoreManager)

	w := app.do(t, http.MethodGet, "/api/v1/auth/me", nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		User domain.User `json:"user"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "manager@crumbhouse.example", resp.User.Email)
	assert.Equal(t, domain.RoleStoreManager, resp.User.Role)
}

func TestLoginWithWrongPassword(t *testing.T) {
	app := setupApp(t)
	testutil.CreateUser(t, app.db, "baker@crumbhouse.example", "correct-horse-battery", domain.RoleProductionManager)

	w := app.do(t, http.MethodPost, "/api/v1/auth/login", domain.LoginRequest{Email: "baker@crumbhouse.example", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCashierCannotWriteInventory(t *testing.T) {
	app := setupApp(t)
	token := app.login(t, "till@crumbhouse.example", domain.RoleCashier)

	w := app.do(t, http.MethodPost, "/api/v1/inventory", domain.CreateInventoryRequest{
		ProductID:   uuid.New(),
		WarehouseID: uuid.New(),
		Quantity:    5,
	}, withToken(token))
	require.Equal(t, http.StatusForbidden, w.Code)

	var body domain.ErrorResponse
	decode(t, w, &body)
	assert.Equal(t, "Insufficient permissions", body.Message)
	assert.Equal(t, string(domain.RoleCashier), body.UserRole)

	// reads stay open to the cashier
	w = app.do(t, http.MethodGet, "/api/v1/inventory", nil, withToken(token))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidationErrorsAreKeyedByJSONField(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"sku":  "BRD-100",
		"name": "Sourdough",
	}, withAPIKey)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body domain.ErrorResponse
	decode(t, w, &body)
	assert.Equal(t, domain.ErrorCodeValidation, body.Error)
	assert.Contains(t, body.Errors, "category")

	w = app.do(t, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customerId": uuid.New(),
		"items":      []map[string]interface{}{{"productId": uuid.New(), "quantity": 0}},
	}, withAPIKey)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body = domain.ErrorResponse{}
	decode(t, w, &body)
	assert.Contains(t, body.Errors, "items[0].quantity")

	w = app.do(t, http.MethodPost, "/api/v1/orders", nil, withAPIKey)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvalidOrderTransitionReportsStatuses(t *testing.T) {
	app := setupApp(t)
	customer := testutil.CreateCustomer(t, app.db, "Café Aurora")
	product := testutil.CreateProduct(t, app.db, "BRD-001", "4.50", 0)

	w := app.do(t, http.MethodPost, "/api/v1/orders", domain.CreateOrderRequest{
		CustomerID: customer.ID,
		Items:      []domain.OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
	}, withAPIKey)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Order domain.Order `json:"order"`
	}
	decode(t, w, &created)
	assert.Equal(t, domain.OrderPending, created.Order.Status)
	assert.True(t, decimal.RequireFromString("9.00").Equal(created.Order.TotalAmount))

	w = app.do(t, http.MethodPut, "/api/v1/orders/"+created.Order.ID.String()+"/status",
		domain.UpdateOrderStatusRequest{Status: domain.OrderReturned}, withAPIKey)
	require.Equal(t, http.StatusConflict, w.Code)

	var body domain.ErrorResponse
	decode(t, w, &body)
	assert.Equal(t, domain.ErrorCodeInvalidTransition, body.Error)
	assert.Equal(t, string(domain.OrderPending), body.CurrentStatus)
	assert.Equal(t, string(domain.OrderReturned), body.RequestedStatus)

	w = app.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid", nil, withAPIKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodGet, "/api/v1/orders/"+uuid.New().String(), nil, withAPIKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicCatalogNeedsNoAuth(t *testing.T) {
	app := setupApp(t)
	testutil.CreateProduct(t, app.db, "BRD-001", "4.50", 0)

	w := app.do(t, http.MethodGet, "/api/v1/public/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Cache-Control"))

	var resp struct {
		Products   []domain.Product  `json:"products"`
		Pagination domain.Pagination `json:"pagination"`
	}
	decode(t, w, &resp)
	assert.Len(t, resp.Products, 1)
	assert.Equal(t, int64(1), resp.Pagination.Total)
}

func TestStockFlowThroughTheAPI(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodPost, "/api/v1/products", domain.CreateProductRequest{
		SKU:      "PST-001",
		Name:     "Croissant",
		Category: domain.CategoryPastry,
		Unit:     domain.UnitPiece,
		Price:    decimal.RequireFromString("2.20"),
		IsPublic: true,
	}, withAPIKey)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var productResp struct {
		Product domain.Product `json:"product"`
	}
	decode(t, w, &productResp)
	croissant := productResp.Product

	warehouseIDs := make([]uuid.UUID, 0, 2)
	for _, code := range []string{"CENTRAL", "SHOP-1"} {
		w = app.do(t, http.MethodPost, "/api/v1/warehouses", domain.CreateWarehouseRequest{Code: code, Name: code}, withAPIKey)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp struct {
			Warehouse domain.Warehouse `json:"warehouse"`
		}
		decode(t, w, &resp)
		warehouseIDs = append(warehouseIDs, resp.Warehouse.ID)
	}
	central, shop := warehouseIDs[0], warehouseIDs[1]

	w = app.do(t, http.MethodPost, "/api/v1/inventory", domain.CreateInventoryRequest{
		ProductID:   croissant.ID,
		WarehouseID: central,
		Quantity:    40,
	}, withAPIKey)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invResp struct {
		Inventory domain.Inventory `json:"inventory"`
	}
	decode(t, w, &invResp)

	w = app.do(t, http.MethodPost, "/api/v1/inventory/transfer", domain.TransferInventoryRequest{
		SourceInventoryID:      invResp.Inventory.ID,
		DestinationWarehouseID: shop,
		Quantity:               50,
	}, withAPIKey)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var shortage domain.ErrorResponse
	decode(t, w, &shortage)
	assert.Equal(t, domain.ErrorCodeInsufficientStock, shortage.Error)

	w = app.do(t, http.MethodPost, "/api/v1/inventory/transfer", domain.TransferInventoryRequest{
		SourceInventoryID:      invResp.Inventory.ID,
		DestinationWarehouseID: shop,
		Quantity:               15,
	}, withAPIKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var transferResp struct {
		Transfer domain.TransferResult `json:"transfer"`
	}
	decode(t, w, &transferResp)
	assert.Equal(t, 25.0, transferResp.Transfer.Source.Quantity)
	assert.Equal(t, 15.0, transferResp.Transfer.Destination.Quantity)

	w = app.do(t, http.MethodPost, "/api/v1/pos/sales", domain.POSSaleRequest{
		WarehouseID:   shop,
		PaymentMethod: domain.PaymentMethodCash,
		Items:         []domain.POSItemRequest{{ProductID: croissant.ID, Quantity: 4}},
	}, withAPIKey)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var saleResp struct {
		Order domain.Order `json:"order"`
	}
	decode(t, w, &saleResp)
	assert.True(t, decimal.RequireFromString("8.80").Equal(saleResp.Order.TotalAmount))

	qty, _ := testutil.InventoryQuantity(t, app.db, transferResp.Transfer.Destination.ID)
	assert.Equal(t, 11.0, qty)

	w = app.do(t, http.MethodGet, "/api/v1/reports/sales?period=7d", nil, withAPIKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reportResp struct {
		Report domain.SalesReport `json:"report"`
	}
	decode(t, w, &reportResp)
	assert.Equal(t, 1, reportResp.Report.OrderCount)
	assert.True(t, decimal.RequireFromString("8.80").Equal(reportResp.Report.Revenue))

	w = app.do(t, http.MethodGet, "/api/v1/inventory/movements?search=transfer", nil, withAPIKey)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestReportsRequirePermission(t *testing.T) {
	app := setupApp(t)
	token := app.login(t, "driver@crumbhouse.example", domain.RoleDeliveryStaff)

	w := app.do(t, http.MethodGet, "/api/v1/reports/sales", nil, withToken(token))
	assert.Equal(t, http.StatusForbidden, w.Code)

	managerToken := app.login(t, "prod@crumbhouse.example", domain.RoleProductionManager)
	w = app.do(t, http.MethodGet, "/api/v1/reports/sales/export", nil, withToken(managerToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodGet, "/api/v1/reports/production", nil, withToken(managerToken))
	assert.Equal(t, http.StatusOK, w.Code)
}
