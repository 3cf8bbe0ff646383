package service_test

import (
	"testing"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/service"
	"github.com/crumbhouse/bakery-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPOSService_Sell tests that a counter sale takes stock out of the till warehouse
func TestPOSService_Sell(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.ContextWithRole(domain.RoleCashier)
	shop := testutil.CreateWarehouse(t, s.db, "SHOP")
	croissant := testutil.CreateProduct(t, s.db, "CROI-1", "2.20", 0)
	coffee := testutil.CreateProduct(t, s.db, "COF-1", "3.00", 0)
	croissantStock := testutil.CreateInventory(t, s.db, croissant.ID, shop.ID, 10, 0)
	coffeeStock := testutil.CreateInventory(t, s.db, coffee.ID, shop.ID, 5, 0)

	sale, err := s.pos.Sell(ctx, &domain.POSSaleRequest{
		WarehouseID:    shop.ID,
		PaymentMethod:  domain.PaymentMethodCash,
		DiscountAmount: decimal.RequireFromString("0.40"),
		Items: []domain.POSItemRequest{
			{ProductID: croissant.ID, Quantity: 3},
			{ProductID: coffee.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderDelivered, sale.Status)
	assert.Equal(t, domain.PaymentPaid, sale.PaymentStatus)
	assert.Equal(t, domain.ChannelPOS, sale.Channel)
	assert.NotNil(t, sale.DeliveredAt)
	assert.Equal(t, "9.20", sale.TotalAmount.StringFixed(2))

	quantity, _ := testutil.InventoryQuantity(t, s.db, croissantStock.ID)
	assert.Equal(t, 7.0, quantity)
	quantity, _ = testutil.InventoryQuantity(t, s.db, coffeeStock.ID)
	assert.Equal(t, 4.0, quantity)

	var movement domain.InventoryMovement
	require.NoError(t, s.db.Where("inventory_id = ?", croissantStock.ID).First(&movement).Error)
	assert.Equal(t, domain.MovementSale, movement.MovementType)
	assert.Equal(t, sale.OrderNumber, movement.Reference)
}

// TestPOSService_SellRollsBackOnShortage tests that one short line cancels the whole sale
func TestPOSService_SellRollsBackOnShortage(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.ContextWithRole(domain.RoleCashier)
	shop := testutil.CreateWarehouse(t, s.db, "SHOP")
	rye := testutil.CreateProduct(t, s.db, "RYE-1", "5.00", 0)
	cake := testutil.CreateProduct(t, s.db, "CAKE-1", "30.00", 0)
	ryeStock := testutil.CreateInventory(t, s.db, rye.ID, shop.ID, 4, 0)
	testutil.CreateInventory(t, s.db, cake.ID, shop.ID, 3, 2)

	_, err := s.pos.Sell(ctx, &domain.POSSaleRequest{
		WarehouseID:   shop.ID,
		PaymentMethod: domain.PaymentMethodCard,
		Items: []domain.POSItemRequest{
			{ProductID: rye.ID, Quantity: 2},
			{ProductID: cake.ID, Quantity: 2},
		},
	})
	var stockErr *service.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1.0, stockErr.Available)
	assert.Equal(t, 2.0, stockErr.Requested)

	quantity, _ := testutil.InventoryQuantity(t, s.db, ryeStock.ID)
	assert.Equal(t, 4.0, quantity)
	assert.Equal(t, int64(0), testutil.CountMovements(t, s.db, ryeStock.ID))

	var orders int64
	require.NoError(t, s.db.Model(&domain.Order{}).Count(&orders).Error)
	assert.Equal(t, int64(0), orders)
}

func TestPOSService_SellWithoutStockRow(t *testing.T) {
	s := setupServices(t)
	shop := testutil.CreateWarehouse(t, s.db, "SHOP")
	product := testutil.CreateProduct(t, s.db, "TART-1", "6.00", 0)

	_, err := s.pos.Sell(testutil.AdminContext(), &domain.POSSaleRequest{
		WarehouseID:   shop.ID,
		PaymentMethod: domain.PaymentMethodCash,
		Items:         []domain.POSItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, service.ErrInsufficientStock)
}
