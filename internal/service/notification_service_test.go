package service_test

import (
	"testing"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNotificationService_LowStockAlerts tests that alerts are queued once per low row
func TestNotificationService_LowStockAlerts(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	warehouse := testutil.CreateWarehouse(t, s.db, "MAIN")
	flour := testutil.CreateProduct(t, s.db, "FLOUR-1", "1.10", 20)
	sugar := testutil.CreateProduct(t, s.db, "SUGAR-1", "1.00", 5)
	testutil.CreateInventory(t, s.db, flour.ID, warehouse.ID, 12, 0)
	testutil.CreateInventory(t, s.db, sugar.ID, warehouse.ID, 40, 0)

	queued, err := s.notifications.QueueLowStockAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, queued)

	queued, err = s.notifications.QueueLowStockAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, queued, "a pending alert is not queued twice")

	sent, failed, err := s.notifications.DispatchPending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, failed)
	require.Len(t, s.sender.sent, 1)
	assert.Equal(t, domain.NotificationLowStock, s.sender.sent[0].Type)
	assert.Contains(t, s.sender.sent[0].Title, flour.Name)

	var stored domain.Notification
	require.NoError(t, s.db.First(&stored).Error)
	assert.Equal(t, domain.NotificationSent, stored.Status)
	assert.NotNil(t, stored.SentAt)
}

func TestNotificationService_DispatchFailure(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	s.notifications.Queue(ctx, domain.NotificationSystem, nil, "Maintenance", "Ovens offline tonight", "", nil)
	s.sender.err = errSendFailed

	sent, failed, err := s.notifications.DispatchPending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 1, failed)

	var stored domain.Notification
	require.NoError(t, s.db.First(&stored).Error)
	assert.Equal(t, domain.NotificationFailed, stored.Status)
	assert.Equal(t, errSendFailed.Error(), stored.Error)
}
