package domain_test

import (
	"testing"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to domain.OrderStatus
		allowed  bool
	}{
		{domain.OrderPending, domain.OrderConfirmed, true},
		{domain.OrderPending, domain.OrderDelivered, true},
		{domain.OrderConfirmed, domain.OrderCancelled, true},
		{domain.OrderInProduction, domain.OrderReady, true},
		{domain.OrderInProduction, domain.OrderDelivered, false},
		{domain.OrderOutForDelivery, domain.OrderReturned, true},
		{domain.OrderOutForDelivery, domain.OrderCancelled, false},
		{domain.OrderDelivered, domain.OrderPending, false},
		{domain.OrderCancelled, domain.OrderConfirmed, false},
		{domain.OrderReady, domain.OrderReady, true},
		{domain.OrderPending, domain.OrderStatus("SHIPPED"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestDeliveryStatus_FailedCanBeRetried(t *testing.T) {
	assert.True(t, domain.DeliveryFailed.CanTransitionTo(domain.DeliveryScheduled))
	assert.True(t, domain.DeliveryInTransit.CanTransitionTo(domain.DeliveryFailed))
	assert.False(t, domain.DeliveryPending.CanTransitionTo(domain.DeliveryDelivered))
	assert.False(t, domain.DeliveryDelivered.CanTransitionTo(domain.DeliveryReturned))
}

func TestProductionStatus_Transitions(t *testing.T) {
	assert.True(t, domain.ProductionPlanned.CanTransitionTo(domain.ProductionInProgress))
	assert.True(t, domain.ProductionOnHold.CanTransitionTo(domain.ProductionInProgress))
	assert.False(t, domain.ProductionPlanned.CanTransitionTo(domain.ProductionCompleted))
	assert.False(t, domain.ProductionCompleted.CanTransitionTo(domain.ProductionCancelled))
}

func TestPurchaseOrderStatus_Transitions(t *testing.T) {
	assert.True(t, domain.PurchaseOrderDraft.CanTransitionTo(domain.PurchaseOrderSubmitted))
	assert.True(t, domain.PurchaseOrderApproved.CanTransitionTo(domain.PurchaseOrderReceived))
	assert.False(t, domain.PurchaseOrderDraft.CanTransitionTo(domain.PurchaseOrderReceived))
	assert.False(t, domain.PurchaseOrderReceived.CanTransitionTo(domain.PurchaseOrderCancelled))
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, domain.OrderDelivered.IsTerminal())
	assert.True(t, domain.OrderReturned.IsTerminal())
	assert.False(t, domain.OrderReady.IsTerminal())
	assert.True(t, domain.DeliveryCancelled.IsTerminal())
	assert.True(t, domain.ProductionCompleted.IsTerminal())
	assert.True(t, domain.PurchaseOrderReceived.IsTerminal())
	assert.False(t, domain.OrderStatus("UNKNOWN").IsTerminal())
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, domain.OrderOutForDelivery.IsValid())
	assert.False(t, domain.OrderStatus("out_for_delivery").IsValid())
	assert.True(t, domain.DeliveryInTransit.IsValid())
	assert.False(t, domain.ProductionStatus("DONE").IsValid())
}
