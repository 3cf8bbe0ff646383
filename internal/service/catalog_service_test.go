package service_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"github.com/crumbhouse/bakery-api/internal/storage"
	"github.com/crumbhouse/bakery-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProductService_CreateUpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	products := service.NewProductService(repository.NewProductRepository(db), store, zap.NewNop())
	ctx := testutil.AdminContext()

	product, err := products.Create(ctx, &domain.CreateProductRequest{
		SKU:          "BREAD-001",
		Name:         "Country loaf",
		Category:     domain.CategoryBread,
		Price:        decimal.RequireFromString("5.499"),
		ReorderPoint: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UnitPiece, product.Unit)
	assert.Equal(t, "5.50", product.Price.StringFixed(2))

	_, err = products.Create(ctx, &domain.CreateProductRequest{SKU: "BREAD-001", Name: "Copy", Category: domain.CategoryBread})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = products.Create(ctx, &domain.CreateProductRequest{SKU: "BREAD-002", Name: "Odd", Category: "PIZZA"})
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "category", fieldErr.Field)

	// partial update keeps untouched fields
	newName := "Country loaf 800g"
	updated, err := products.Update(ctx, product.ID, &domain.UpdateProductRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, "BREAD-001", updated.SKU)
	assert.Equal(t, 10.0, updated.ReorderPoint)

	warehouse := testutil.CreateWarehouse(t, db, "MAIN")
	inv := testutil.CreateInventory(t, db, product.ID, warehouse.ID, 3, 0)
	assert.ErrorIs(t, products.Delete(ctx, product.ID), service.ErrConflict)

	require.NoError(t, db.Delete(&domain.Inventory{}, "id = ?", inv.ID).Error)
	require.NoError(t, products.Delete(ctx, product.ID))

	_, err = products.GetByID(ctx, product.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestProductService_Image(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	products := service.NewProductService(repository.NewProductRepository(db), store, zap.NewNop())
	ctx := testutil.AdminContext()
	product := testutil.CreateProduct(t, db, "PST-001", "2.20", 0)

	_, _, err = products.GetImage(ctx, product.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = products.SetImage(ctx, product.ID, "notes.txt", "text/plain", bytes.NewReader([]byte("hi")))
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "image", fieldErr.Field)

	first, err := products.SetImage(ctx, product.ID, "croissant.png", "image/png", bytes.NewReader([]byte("first")))
	require.NoError(t, err)
	firstKey := first.ImagePath

	_, err = products.SetImage(ctx, product.ID, "croissant.png", "image/png", bytes.NewReader([]byte("second")))
	require.NoError(t, err)

	rc, contentType, err := products.GetImage(ctx, product.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, "second", string(data))

	// the replaced image is gone from storage
	_, err = store.Get(ctx, firstKey)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestWarehouseService_DeleteRequiresEmptyWarehouse(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	warehouses := service.NewWarehouseService(repository.NewWarehouseRepository(s.db), zap.NewNop())

	warehouse, err := warehouses.Create(ctx, &domain.CreateWarehouseRequest{Code: " bakehouse ", Name: "Bakehouse"})
	require.NoError(t, err)
	assert.Equal(t, "BAKEHOUSE", warehouse.Code)

	_, err = warehouses.Create(ctx, &domain.CreateWarehouseRequest{Code: "BAKEHOUSE", Name: "Again"})
	assert.ErrorIs(t, err, service.ErrConflict)

	product := testutil.CreateProduct(t, s.db, "BRD-001", "4.00", 0)
	inv, err := s.inventory.Create(ctx, &domain.CreateInventoryRequest{
		ProductID:   product.ID,
		WarehouseID: warehouse.ID,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, warehouses.Delete(ctx, warehouse.ID), service.ErrConflict)

	require.NoError(t, s.inventory.Delete(ctx, inv.ID))
	require.NoError(t, warehouses.Delete(ctx, warehouse.ID))

	_, err = warehouses.GetByID(ctx, warehouse.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

// TestProductService_DeleteReferencedProduct tests that recipe and purchase order lines block a delete
func TestProductService_DeleteReferencedProduct(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	products := service.NewProductService(repository.NewProductRepository(s.db), store, zap.NewNop())

	flour := testutil.CreateProduct(t, s.db, "FLOUR-1", "1.10", 0)
	loaf := testutil.CreateProduct(t, s.db, "BREAD-001", "4.50", 0)
	testutil.CreateRecipe(t, s.db, "Country loaf", loaf, 10, map[uuid.UUID]float64{flour.ID: 5})

	err = products.Delete(ctx, flour.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.ErrorIs(t, err, service.ErrProductInUse)

	var items int64
	require.NoError(t, s.db.Model(&domain.RecipeItem{}).Where("product_id = ?", flour.ID).Count(&items).Error)
	assert.Equal(t, int64(1), items)

	butter := testutil.CreateProduct(t, s.db, "BUTTER-1", "8.00", 0)
	_, err = s.purchasing.Create(ctx, &domain.CreatePurchaseOrderRequest{
		SupplierID:  testutil.CreateSupplier(t, s.db, "Dairy Farm").ID,
		WarehouseID: testutil.CreateWarehouse(t, s.db, "STORE").ID,
		Items:       []domain.PurchaseOrderItemRequest{{ProductID: butter.ID, Quantity: 4, UnitCost: decimal.RequireFromString("6.50")}},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, products.Delete(ctx, butter.ID), service.ErrProductInUse)
}

// TestWarehouseService_DeleteWarehouseUsedByPurchaseOrder tests the purchase order guard
func TestWarehouseService_DeleteWarehouseUsedByPurchaseOrder(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	warehouses := service.NewWarehouseService(repository.NewWarehouseRepository(s.db), zap.NewNop())

	warehouse := testutil.CreateWarehouse(t, s.db, "STORE")
	flour := testutil.CreateProduct(t, s.db, "FLOUR-1", "1.10", 0)
	_, err := s.purchasing.Create(ctx, &domain.CreatePurchaseOrderRequest{
		SupplierID:  testutil.CreateSupplier(t, s.db, "Mill & Co").ID,
		WarehouseID: warehouse.ID,
		Items:       []domain.PurchaseOrderItemRequest{{ProductID: flour.ID, Quantity: 25, UnitCost: decimal.RequireFromString("0.80")}},
	})
	require.NoError(t, err)

	err = warehouses.Delete(ctx, warehouse.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.ErrorIs(t, err, service.ErrWarehouseInUse)

	_, err = warehouses.GetByID(ctx, warehouse.ID)
	assert.NoError(t, err)
}

// TestOrderService_TerminalStatusIsFinal walks PENDING straight to DELIVERED and back
func TestOrderService_TerminalStatusIsFinal(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	order := createTestOrder(t, s)

	delivered, err := s.orders.UpdateStatus(ctx, order.ID, &domain.UpdateOrderStatusRequest{Status: domain.OrderDelivered})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, delivered.Status)

	_, err = s.orders.UpdateStatus(ctx, order.ID, &domain.UpdateOrderStatusRequest{Status: domain.OrderPending})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	var transitionErr *service.TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, string(domain.OrderDelivered), transitionErr.From)
	assert.Equal(t, string(domain.OrderPending), transitionErr.To)
}
