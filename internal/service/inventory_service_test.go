package service_test

import (
	"errors"
	"sync"
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
	"gorm.io/gorm"
)

func setupInventoryService(t *testing.T) (*service.InventoryService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	inventoryRepo := repository.NewInventoryRepository(db)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), inventoryRepo, nil, log)
	svc := service.NewInventoryService(
		db,
		inventoryRepo,
		repository.NewProductRepository(db),
		repository.NewWarehouseRepository(db),
		notifications,
		log,
	)
	return svc, db
}

// TestInventoryService_Create tests opening stock rows
func TestInventoryService_Create(t *testing.T) {
	svc, db := setupInventoryService(t)
	ctx := testutil.AdminContext()
	product := testutil.CreateProduct(t, db, "FLOUR-1", "2.50", 10)
	warehouse := testutil.CreateWarehouse(t, db, "MAIN")

	t.Run("opening quantity is recorded as IN movement", func(t *testing.T) {
		inv, err := svc.Create(ctx, &domain.CreateInventoryRequest{
			ProductID:        product.ID,
			WarehouseID:      warehouse.ID,
			Quantity:         40,
			ReservedQuantity: 5,
		})
		require.NoError(t, err)
		assert.Equal(t, 40.0, inv.Quantity)
		assert.Equal(t, 5.0, inv.ReservedQuantity)
		assert.Equal(t, int64(1), testutil.CountMovements(t, db, inv.ID))
	})

	t.Run("duplicate product and warehouse", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateInventoryRequest{ProductID: product.ID, WarehouseID: warehouse.ID})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateInventoryRequest{ProductID: uuid.New(), WarehouseID: warehouse.ID})
		var fieldErr *service.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "productId", fieldErr.Field)
	})
}

// TestInventoryService_Transfer tests that a transfer conserves stock and writes both movements
func TestInventoryService_Transfer(t *testing.T) {
	svc, db := setupInventoryService(t)
	ctx := testutil.AdminContext()
	product := testutil.CreateProduct(t, db, "BUTTER-1", "8.00", 0)
	main := testutil.CreateWarehouse(t, db, "MAIN")
	shop := testutil.CreateWarehouse(t, db, "SHOP")
	source := testutil.CreateInventory(t, db, product.ID, main.ID, 50, 10)

	t.Run("moves stock into a new destination row", func(t *testing.T) {
		result, err := svc.Transfer(ctx, &domain.TransferInventoryRequest{
			SourceInventoryID:      source.ID,
			DestinationWarehouseID: shop.ID,
			Quantity:               15,
		})
		require.NoError(t, err)

		assert.Equal(t, 35.0, result.Source.Quantity)
		assert.Equal(t, 10.0, result.Source.ReservedQuantity)
		assert.Equal(t, 15.0, result.Destination.Quantity)
		assert.Equal(t, shop.ID, result.Destination.WarehouseID)
		assert.Equal(t, 50.0, result.Source.Quantity+result.Destination.Quantity)

		require.Len(t, result.Movements, 2)
		assert.Equal(t, domain.MovementTransferOut, result.Movements[0].MovementType)
		assert.Equal(t, -15.0, result.Movements[0].Quantity)
		assert.Equal(t, domain.MovementTransferIn, result.Movements[1].MovementType)
		assert.Equal(t, 15.0, result.Movements[1].Quantity)
		assert.Equal(t, "TRANSFER-"+source.ID.String()[:8], result.Movements[0].Reference)
	})

	t.Run("second transfer reuses the destination row", func(t *testing.T) {
		result, err := svc.Transfer(ctx, &domain.TransferInventoryRequest{
			SourceInventoryID:      source.ID,
			DestinationWarehouseID: shop.ID,
			Quantity:               5,
		})
		require.NoError(t, err)
		assert.Equal(t, 20.0, result.Destination.Quantity)

		var rows int64
		require.NoError(t, db.Model(&domain.Inventory{}).Where("warehouse_id = ?", shop.ID).Count(&rows).Error)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("reserved stock cannot be transferred", func(t *testing.T) {
		// 30 on hand, 10 reserved
		_, err := svc.Transfer(ctx, &domain.TransferInventoryRequest{
			SourceInventoryID:      source.ID,
			DestinationWarehouseID: shop.ID,
			Quantity:               25,
		})
		var stockErr *service.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 20.0, stockErr.Available)
		assert.Equal(t, 25.0, stockErr.Requested)

		quantity, _ := testutil.InventoryQuantity(t, db, source.ID)
		assert.Equal(t, 30.0, quantity, "a rejected transfer must not change the source")
	})

	t.Run("same warehouse", func(t *testing.T) {
		_, err := svc.Transfer(ctx, &domain.TransferInventoryRequest{
			SourceInventoryID:      source.ID,
			DestinationWarehouseID: main.ID,
			Quantity:               1,
		})
		var fieldErr *service.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "destinationWarehouseId", fieldErr.Field)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := svc.Transfer(ctx, &domain.TransferInventoryRequest{
			SourceInventoryID:      source.ID,
			DestinationWarehouseID: shop.ID,
			Quantity:               0,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := svc.Transfer(ctx, &domain.TransferInventoryRequest{
			SourceInventoryID:      uuid.New(),
			DestinationWarehouseID: shop.ID,
			Quantity:               1,
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

// TestInventoryService_Adjust tests signed adjustments and the reserved-stock guard
func TestInventoryService_Adjust(t *testing.T) {
	svc, db := setupInventoryService(t)
	ctx := testutil.AdminContext()
	product := testutil.CreateProduct(t, db, "SUGAR-1", "1.20", 0)
	warehouse := testutil.CreateWarehouse(t, db, "MAIN")
	inv := testutil.CreateInventory(t, db, product.ID, warehouse.ID, 10, 4)

	movement, err := svc.Adjust(ctx, inv.ID, &domain.AdjustInventoryRequest{Delta: 5, Reference: "COUNT-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.MovementAdjustment, movement.MovementType)
	assert.Equal(t, 10.0, movement.QuantityBefore)
	assert.Equal(t, 15.0, movement.QuantityAfter)
	assert.NotEmpty(t, movement.PerformedByName)

	movement, err = svc.Adjust(ctx, inv.ID, &domain.AdjustInventoryRequest{Delta: -3, MovementType: domain.MovementWaste})
	require.NoError(t, err)
	assert.Equal(t, domain.MovementWaste, movement.MovementType)

	_, err = svc.Adjust(ctx, inv.ID, &domain.AdjustInventoryRequest{Delta: -9})
	assert.True(t, errors.Is(err, service.ErrInsufficientStock))

	_, err = svc.Adjust(ctx, inv.ID, &domain.AdjustInventoryRequest{Delta: 0})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	for _, forged := range []domain.MovementType{domain.MovementTransferIn, domain.MovementTransferOut, domain.MovementSale} {
		_, err = svc.Adjust(ctx, inv.ID, &domain.AdjustInventoryRequest{Delta: 1, MovementType: forged})
		var fieldErr *service.FieldError
		require.ErrorAs(t, err, &fieldErr, string(forged))
		assert.Equal(t, "movementType", fieldErr.Field)
	}

	quantity, reserved := testutil.InventoryQuantity(t, db, inv.ID)
	assert.Equal(t, 12.0, quantity)
	assert.Equal(t, 4.0, reserved)
	assert.Equal(t, int64(2), testutil.CountMovements(t, db, inv.ID))
}

// TestInventoryService_Reservations tests reserve, release and delete protection
func TestInventoryService_Reservations(t *testing.T) {
	svc, db := setupInventoryService(t)
	ctx := testutil.AdminContext()
	product := testutil.CreateProduct(t, db, "EGGS-1", "0.30", 0)
	warehouse := testutil.CreateWarehouse(t, db, "MAIN")
	inv := testutil.CreateInventory(t, db, product.ID, warehouse.ID, 20, 0)

	updated, err := svc.Reserve(ctx, inv.ID, &domain.ReserveInventoryRequest{Quantity: 12, Reference: "ORD-1"})
	require.NoError(t, err)
	assert.Equal(t, 12.0, updated.ReservedQuantity)
	assert.Equal(t, 20.0, updated.Quantity)

	_, err = svc.Reserve(ctx, inv.ID, &domain.ReserveInventoryRequest{Quantity: 9})
	assert.ErrorIs(t, err, service.ErrInsufficientStock)

	assert.ErrorIs(t, svc.Delete(ctx, inv.ID), service.ErrConflict)

	_, err = svc.Release(ctx, inv.ID, &domain.ReserveInventoryRequest{Quantity: 13})
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "quantity", fieldErr.Field)

	updated, err = svc.Release(ctx, inv.ID, &domain.ReserveInventoryRequest{Quantity: 12})
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.ReservedQuantity)

	assert.ErrorIs(t, svc.Delete(ctx, inv.ID), service.ErrInventoryNotEmpty)
}

// TestInventoryService_Delete tests that only empty rows without history can be removed
func TestInventoryService_Delete(t *testing.T) {
	svc, db := setupInventoryService(t)
	ctx := testutil.AdminContext()
	product := testutil.CreateProduct(t, db, "RYE-1", "3.10", 0)
	main := testutil.CreateWarehouse(t, db, "MAIN")
	shop := testutil.CreateWarehouse(t, db, "SHOP")

	t.Run("row holding stock is kept with its movements", func(t *testing.T) {
		inv, err := svc.Create(ctx, &domain.CreateInventoryRequest{ProductID: product.ID, WarehouseID: main.ID, Quantity: 30})
		require.NoError(t, err)
		require.Equal(t, int64(1), testutil.CountMovements(t, db, inv.ID))

		err = svc.Delete(ctx, inv.ID)
		assert.ErrorIs(t, err, service.ErrConflict)
		assert.ErrorIs(t, err, service.ErrInventoryNotEmpty)

		quantity, _ := testutil.InventoryQuantity(t, db, inv.ID)
		assert.Equal(t, 30.0, quantity)
		assert.Equal(t, int64(1), testutil.CountMovements(t, db, inv.ID))

		// drained to zero, but the history still pins the row
		_, err = svc.Adjust(ctx, inv.ID, &domain.AdjustInventoryRequest{Delta: -30, MovementType: domain.MovementOut})
		require.NoError(t, err)
		assert.ErrorIs(t, svc.Delete(ctx, inv.ID), service.ErrInventoryHasMovements)
		assert.Equal(t, int64(2), testutil.CountMovements(t, db, inv.ID))
	})

	t.Run("empty row without movements", func(t *testing.T) {
		inv, err := svc.Create(ctx, &domain.CreateInventoryRequest{ProductID: product.ID, WarehouseID: shop.ID})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, inv.ID))
		_, err = svc.GetByID(ctx, inv.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

// TestInventoryService_TransferScenario follows a loaf from product creation to a split between two shops
func TestInventoryService_TransferScenario(t *testing.T) {
	svc, db := setupInventoryService(t)
	ctx := testutil.AdminContext()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	products := service.NewProductService(repository.NewProductRepository(db), store, zap.NewNop())

	product, err := products.Create(ctx, &domain.CreateProductRequest{
		SKU:      "BREAD-001",
		Name:     "Country loaf",
		Category: domain.CategoryBread,
		Price:    decimal.RequireFromString("4.50"),
	})
	require.NoError(t, err)
	warehouseA := testutil.CreateWarehouse(t, db, "A")
	warehouseB := testutil.CreateWarehouse(t, db, "B")

	source, err := svc.Create(ctx, &domain.CreateInventoryRequest{ProductID: product.ID, WarehouseID: warehouseA.ID, Quantity: 30})
	require.NoError(t, err)

	result, err := svc.Transfer(ctx, &domain.TransferInventoryRequest{
		SourceInventoryID:      source.ID,
		DestinationWarehouseID: warehouseB.ID,
		Quantity:               10,
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.Source.Quantity)
	assert.Equal(t, 10.0, result.Destination.Quantity)

	var transfers int64
	require.NoError(t, db.Model(&domain.InventoryMovement{}).
		Where("product_id = ? AND movement_type IN ?", product.ID, []string{"TRANSFER_OUT", "TRANSFER_IN"}).
		Count(&transfers).Error)
	assert.Equal(t, int64(2), transfers)
}

// TestInventoryService_ConcurrentTransfers tests that parallel transfers from one row never oversell it
func TestInventoryService_ConcurrentTransfers(t *testing.T) {
	svc, db := setupInventoryService(t)
	ctx := testutil.AdminContext()
	product := testutil.CreateProduct(t, db, "BAGUETTE-1", "2.00", 0)
	main := testutil.CreateWarehouse(t, db, "MAIN")
	shop := testutil.CreateWarehouse(t, db, "SHOP")
	source := testutil.CreateInventory(t, db, product.ID, main.ID, 30, 0)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Transfer(ctx, &domain.TransferInventoryRequest{
				SourceInventoryID:      source.ID,
				DestinationWarehouseID: shop.ID,
				Quantity:               10,
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, service.ErrInsufficientStock)
	}
	assert.Equal(t, 3, successes)

	quantity, _ := testutil.InventoryQuantity(t, db, source.ID)
	assert.Equal(t, 0.0, quantity)

	var destination domain.Inventory
	require.NoError(t, db.Where("product_id = ? AND warehouse_id = ?", product.ID, shop.ID).First(&destination).Error)
	assert.Equal(t, 30.0, destination.Quantity)
}
