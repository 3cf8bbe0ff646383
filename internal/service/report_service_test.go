package service_test

import (
	"testing"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReportService_Sales tests revenue aggregation over the default period
func TestReportService_Sales(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	kept := createTestOrder(t, s)
	cancelled := createTestOrder(t, s)
	_, err := s.orders.UpdateStatus(ctx, cancelled.ID, &domain.UpdateOrderStatusRequest{Status: domain.OrderCancelled})
	require.NoError(t, err)

	report, err := s.reports.Sales(ctx, "bogus")
	require.NoError(t, err)

	assert.Equal(t, "7d", report.Period.Name)
	assert.True(t, report.Period.Defaulted)
	assert.Len(t, report.Daily, 7)
	assert.Equal(t, 2, report.OrderCount)
	assert.Equal(t, 1, report.ByStatus[string(domain.OrderCancelled)])
	assert.Equal(t, 1, report.ByStatus[string(domain.OrderPending)])
	assert.Equal(t, kept.TotalAmount.StringFixed(2), report.Revenue.StringFixed(2))
	assert.Equal(t, kept.TotalAmount.StringFixed(2), report.AverageOrderValue.StringFixed(2))
	assert.Len(t, report.TopProducts, 2)

	var dailyOrders int
	for _, b := range report.Daily {
		dailyOrders += b.Orders
	}
	assert.Equal(t, 1, dailyOrders, "cancelled orders stay out of daily revenue buckets")
}

func TestReportService_ExportSales(t *testing.T) {
	s := setupServices(t)
	createTestOrder(t, s)

	f, filename, err := s.reports.ExportSales(testutil.AdminContext(), "30d")
	require.NoError(t, err)
	defer f.Close()

	assert.Regexp(t, `^sales_30d_\d{8}\.xlsx$`, filename)
	assert.Equal(t, []string{"Daily sales", "Top products"}, f.GetSheetList())

	header, err := f.GetCellValue("Daily sales", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)

	rows, err := f.GetRows("Top products")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

// TestReportService_Inventory tests stock totals and low stock detection
func TestReportService_Inventory(t *testing.T) {
	s := setupServices(t)
	main := testutil.CreateWarehouse(t, s.db, "MAIN")
	shop := testutil.CreateWarehouse(t, s.db, "SHOP")
	yeast := testutil.CreateProduct(t, s.db, "YEAST-1", "0.90", 10)
	salt := testutil.CreateProduct(t, s.db, "SALT-1", "0.20", 2)
	testutil.CreateInventory(t, s.db, yeast.ID, main.ID, 4, 1)
	testutil.CreateInventory(t, s.db, yeast.ID, shop.ID, 30, 0)
	testutil.CreateInventory(t, s.db, salt.ID, main.ID, 50, 0)

	report, err := s.reports.Inventory(testutil.AdminContext(), "today")
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 2, report.TotalProducts)
	assert.Equal(t, 84.0, report.TotalQuantity)
	assert.Equal(t, 1.0, report.TotalReserved)
	assert.Len(t, report.ByWarehouse, 2)
	require.Len(t, report.LowStock, 1)
	assert.Equal(t, yeast.ID, report.LowStock[0].ProductID)
	assert.Equal(t, 3.0, report.LowStock[0].Available)
}

func TestReportService_Dashboard(t *testing.T) {
	s := setupServices(t)
	createTestOrder(t, s)

	report, err := s.reports.Dashboard(testutil.AdminContext(), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.OrdersToday)
	assert.Equal(t, int64(1), report.PendingOrders)
	assert.Equal(t, int64(0), report.UnreadNotifications)
}
