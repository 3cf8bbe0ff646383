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

// TestPurchaseOrderService_ReceiveBooksStock tests the purchase flow from draft to received
func TestPurchaseOrderService_ReceiveBooksStock(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.ContextWithRole(domain.RoleInventoryManager)
	supplier := testutil.CreateSupplier(t, s.db, "Mill & Co")
	store := testutil.CreateWarehouse(t, s.db, "STORE")
	flour := testutil.CreateProduct(t, s.db, "FLOUR-1", "1.10", 0)
	butter := testutil.CreateProduct(t, s.db, "BUTTER-1", "8.00", 0)
	existing := testutil.CreateInventory(t, s.db, flour.ID, store.ID, 5, 0)

	po, err := s.purchasing.Create(ctx, &domain.CreatePurchaseOrderRequest{
		SupplierID:  supplier.ID,
		WarehouseID: store.ID,
		Items: []domain.PurchaseOrderItemRequest{
			{ProductID: flour.ID, Quantity: 25, UnitCost: decimal.RequireFromString("0.80")},
			{ProductID: butter.ID, Quantity: 10, UnitCost: decimal.RequireFromString("6.50")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderDraft, po.Status)
	assert.Regexp(t, `^PO-\d{4}-000001$`, po.PONumber)
	assert.Equal(t, "85.00", po.TotalAmount.StringFixed(2))

	_, err = s.purchasing.UpdateStatus(ctx, po.ID, &domain.UpdatePurchaseOrderStatusRequest{Status: domain.PurchaseOrderReceived})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	for _, status := range []domain.PurchaseOrderStatus{domain.PurchaseOrderSubmitted, domain.PurchaseOrderApproved} {
		_, err = s.purchasing.UpdateStatus(ctx, po.ID, &domain.UpdatePurchaseOrderStatusRequest{Status: status})
		require.NoError(t, err)
	}
	received, err := s.purchasing.UpdateStatus(ctx, po.ID, &domain.UpdatePurchaseOrderStatusRequest{Status: domain.PurchaseOrderReceived})
	require.NoError(t, err)
	assert.NotNil(t, received.ReceivedAt)

	quantity, _ := testutil.InventoryQuantity(t, s.db, existing.ID)
	assert.Equal(t, 30.0, quantity)

	var butterStock domain.Inventory
	require.NoError(t, s.db.Where("product_id = ? AND warehouse_id = ?", butter.ID, store.ID).First(&butterStock).Error)
	assert.Equal(t, 10.0, butterStock.Quantity)

	var purchaseIn int64
	require.NoError(t, s.db.Model(&domain.InventoryMovement{}).
		Where("movement_type = ? AND reference = ?", domain.MovementPurchaseIn, po.PONumber).
		Count(&purchaseIn).Error)
	assert.Equal(t, int64(2), purchaseIn)

	assert.ErrorIs(t, s.purchasing.Delete(ctx, po.ID), service.ErrConflict)
}

func TestPurchaseOrderService_CancelledNeverBooksStock(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	supplier := testutil.CreateSupplier(t, s.db, "Dairy AS")
	store := testutil.CreateWarehouse(t, s.db, "STORE")
	milk := testutil.CreateProduct(t, s.db, "MILK-1", "1.50", 0)

	po, err := s.purchasing.Create(ctx, &domain.CreatePurchaseOrderRequest{
		SupplierID:  supplier.ID,
		WarehouseID: store.ID,
		Items:       []domain.PurchaseOrderItemRequest{{ProductID: milk.ID, Quantity: 12, UnitCost: decimal.RequireFromString("1.00")}},
	})
	require.NoError(t, err)

	_, err = s.purchasing.UpdateStatus(ctx, po.ID, &domain.UpdatePurchaseOrderStatusRequest{Status: domain.PurchaseOrderCancelled})
	require.NoError(t, err)
	_, err = s.purchasing.UpdateStatus(ctx, po.ID, &domain.UpdatePurchaseOrderStatusRequest{Status: domain.PurchaseOrderApproved})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	var rows int64
	require.NoError(t, s.db.Model(&domain.Inventory{}).Count(&rows).Error)
	assert.Equal(t, int64(0), rows)

	require.NoError(t, s.purchasing.Delete(ctx, po.ID))
}
