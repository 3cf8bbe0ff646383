package service_test

import (
	"testing"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/service"
	"github.com/crumbhouse/bakery-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestOrder(t *testing.T, s *testServices) *domain.Order {
	t.Helper()
	customer := testutil.CreateCustomer(t, s.db, "Cafe Nord")
	bread := testutil.CreateProduct(t, s.db, "SOUR-"+uuid.NewString()[:6], "4.50", 0)
	bun := testutil.CreateProduct(t, s.db, "BUN-"+uuid.NewString()[:6], "1.25", 0)
	custom := decimal.RequireFromString("1.00")

	order, err := s.orders.Create(testutil.AdminContext(), &domain.CreateOrderRequest{
		CustomerID:     customer.ID,
		TaxAmount:      decimal.RequireFromString("2.00"),
		DiscountAmount: decimal.RequireFromString("0.50"),
		Items: []domain.OrderItemRequest{
			{ProductID: bread.ID, Quantity: 2},
			{ProductID: bun.ID, Quantity: 4, UnitPrice: &custom},
		},
	})
	require.NoError(t, err)
	return order
}

// TestOrderService_Create tests numbering, defaults and totals
func TestOrderService_Create(t *testing.T) {
	s := setupServices(t)
	order := createTestOrder(t, s)

	assert.Regexp(t, `^ORD-\d{4}-000001$`, order.OrderNumber)
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, domain.PaymentUnpaid, order.PaymentStatus)
	assert.Equal(t, domain.ChannelOnline, order.Channel)
	require.Len(t, order.Items, 2)

	// 2 x 4.50 + 4 x 1.00
	assert.Equal(t, "13.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "14.50", order.TotalAmount.StringFixed(2))

	second := createTestOrder(t, s)
	assert.Regexp(t, `^ORD-\d{4}-000002$`, second.OrderNumber)
}

func TestOrderService_CreateValidation(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	customer := testutil.CreateCustomer(t, s.db, "Walk-in")

	t.Run("unknown product", func(t *testing.T) {
		_, err := s.orders.Create(ctx, &domain.CreateOrderRequest{
			CustomerID: customer.ID,
			Items:      []domain.OrderItemRequest{{ProductID: uuid.New(), Quantity: 1}},
		})
		var fieldErr *service.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "items[0].productId", fieldErr.Field)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := s.orders.Create(ctx, &domain.CreateOrderRequest{CustomerID: uuid.New()})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("terminal initial status", func(t *testing.T) {
		_, err := s.orders.Create(ctx, &domain.CreateOrderRequest{CustomerID: customer.ID, Status: domain.OrderDelivered})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

// TestOrderService_UpdateStatus tests the order transition table end to end
func TestOrderService_UpdateStatus(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	order := createTestOrder(t, s)

	updated, err := s.orders.UpdateStatus(ctx, order.ID, &domain.UpdateOrderStatusRequest{Status: domain.OrderConfirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderConfirmed, updated.Status)

	_, err = s.orders.UpdateStatus(ctx, order.ID, &domain.UpdateOrderStatusRequest{Status: domain.OrderReturned})
	var transition *service.TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "CONFIRMED", transition.From)
	assert.Equal(t, "RETURNED", transition.To)

	updated, err = s.orders.UpdateStatus(ctx, order.ID, &domain.UpdateOrderStatusRequest{Status: domain.OrderDelivered})
	require.NoError(t, err)
	assert.NotNil(t, updated.DeliveredAt)

	_, err = s.orders.UpdateStatus(ctx, order.ID, &domain.UpdateOrderStatusRequest{Status: domain.OrderCancelled})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	assert.ErrorIs(t, s.orders.Delete(ctx, order.ID), service.ErrConflict)
}

func TestOrderService_UpdatePayment(t *testing.T) {
	s := setupServices(t)
	order := createTestOrder(t, s)
	method := domain.PaymentMethodCard

	updated, err := s.orders.UpdatePayment(testutil.AdminContext(), order.ID, &domain.UpdatePaymentRequest{
		PaymentStatus: domain.PaymentPaid,
		PaymentMethod: &method,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodCard, updated.PaymentMethod)
}

// TestDeliveryService_DrivesOrderStatus tests that delivery progress moves the order along
func TestDeliveryService_DrivesOrderStatus(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	order := createTestOrder(t, s)

	delivery, err := s.deliveries.Create(ctx, &domain.CreateDeliveryRequest{OrderID: order.ID, DriverName: "Ola"})
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryPending, delivery.Status)
	assert.Regexp(t, `^DEL-\d{4}-\d{6}$`, delivery.DeliveryNumber)

	_, err = s.deliveries.UpdateStatus(ctx, delivery.ID, &domain.UpdateDeliveryStatusRequest{Status: domain.DeliveryInTransit})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	for _, status := range []domain.DeliveryStatus{domain.DeliveryScheduled, domain.DeliveryInTransit} {
		_, err = s.deliveries.UpdateStatus(ctx, delivery.ID, &domain.UpdateDeliveryStatusRequest{Status: status})
		require.NoError(t, err)
	}
	current, err := s.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderOutForDelivery, current.Status)

	delivered, err := s.deliveries.UpdateStatus(ctx, delivery.ID, &domain.UpdateDeliveryStatusRequest{Status: domain.DeliveryDelivered})
	require.NoError(t, err)
	assert.NotNil(t, delivered.DeliveredAt)

	current, err = s.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, current.Status)
}

func TestDeliveryService_RejectsCancelledOrder(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	order := createTestOrder(t, s)

	_, err := s.orders.UpdateStatus(ctx, order.ID, &domain.UpdateOrderStatusRequest{Status: domain.OrderCancelled})
	require.NoError(t, err)

	_, err = s.deliveries.Create(ctx, &domain.CreateDeliveryRequest{OrderID: order.ID})
	assert.ErrorIs(t, err, service.ErrConflict)
}
