package domain

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderPending        OrderStatus = "PENDING"
	OrderConfirmed      OrderStatus = "CONFIRMED"
	OrderInProduction   OrderStatus = "IN_PRODUCTION"
	OrderReady          OrderStatus = "READY"
	OrderOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderDelivered      OrderStatus = "DELIVERED"
	OrderCancelled      OrderStatus = "CANCELLED"
	OrderReturned       OrderStatus = "RETURNED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:        {OrderConfirmed, OrderInProduction, OrderReady, OrderOutForDelivery, OrderDelivered, OrderCancelled},
	OrderConfirmed:      {OrderInProduction, OrderReady, OrderOutForDelivery, OrderDelivered, OrderCancelled},
	OrderInProduction:   {OrderReady, OrderCancelled},
	OrderReady:          {OrderOutForDelivery, OrderDelivered, OrderCancelled},
	OrderOutForDelivery: {OrderDelivered, OrderReturned},
	OrderDelivered:      {}, // Terminal
	OrderCancelled:      {}, // Terminal
	OrderReturned:       {}, // Terminal
}

func (s OrderStatus) IsValid() bool { return isKnown(orderTransitions, s) }

func (s OrderStatus) IsTerminal() bool { return isTerminal(orderTransitions, s) }

// CanTransitionTo reports whether an order in status s may move to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return CanTransition(orderTransitions, s, next)
}

// DeliveryStatus is the state of a delivery run
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliveryScheduled DeliveryStatus = "SCHEDULED"
	DeliveryInTransit DeliveryStatus = "IN_TRANSIT"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryFailed    DeliveryStatus = "FAILED"
	DeliveryCancelled DeliveryStatus = "CANCELLED"
	DeliveryReturned  DeliveryStatus = "RETURNED"
)

var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryPending:   {DeliveryScheduled, DeliveryCancelled},
	DeliveryScheduled: {DeliveryInTransit, DeliveryCancelled},
	DeliveryInTransit: {DeliveryDelivered, DeliveryFailed, DeliveryReturned},
	DeliveryFailed:    {DeliveryScheduled, DeliveryReturned, DeliveryCancelled}, // Retry or give up
	DeliveryDelivered: {},
	DeliveryCancelled: {},
	DeliveryReturned:  {},
}

func (s DeliveryStatus) IsValid() bool { return isKnown(deliveryTransitions, s) }

func (s DeliveryStatus) IsTerminal() bool { return isTerminal(deliveryTransitions, s) }

func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	return CanTransition(deliveryTransitions, s, next)
}

// ProductionStatus is the state of a production batch
type ProductionStatus string

const (
	ProductionPlanned    ProductionStatus = "PLANNED"
	ProductionInProgress ProductionStatus = "IN_PROGRESS"
	ProductionOnHold     ProductionStatus = "ON_HOLD"
	ProductionCompleted  ProductionStatus = "COMPLETED"
	ProductionCancelled  ProductionStatus = "CANCELLED"
)

var productionTransitions = map[ProductionStatus][]ProductionStatus{
	ProductionPlanned:    {ProductionInProgress, ProductionCancelled},
	ProductionInProgress: {ProductionCompleted, ProductionOnHold, ProductionCancelled},
	ProductionOnHold:     {ProductionInProgress, ProductionCancelled},
	ProductionCompleted:  {},
	ProductionCancelled:  {},
}

func (s ProductionStatus) IsValid() bool { return isKnown(productionTransitions, s) }

func (s ProductionStatus) IsTerminal() bool { return isTerminal(productionTransitions, s) }

func (s ProductionStatus) CanTransitionTo(next ProductionStatus) bool {
	return CanTransition(productionTransitions, s, next)
}

// PurchaseOrderStatus is the state of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderDraft     PurchaseOrderStatus = "DRAFT"
	PurchaseOrderSubmitted PurchaseOrderStatus = "SUBMITTED"
	PurchaseOrderApproved  PurchaseOrderStatus = "APPROVED"
	PurchaseOrderReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderCancelled PurchaseOrderStatus = "CANCELLED"
)

var purchaseOrderTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseOrderDraft:     {PurchaseOrderSubmitted, PurchaseOrderCancelled},
	PurchaseOrderSubmitted: {PurchaseOrderApproved, PurchaseOrderCancelled},
	PurchaseOrderApproved:  {PurchaseOrderReceived, PurchaseOrderCancelled},
	PurchaseOrderReceived:  {},
	PurchaseOrderCancelled: {},
}

func (s PurchaseOrderStatus) IsValid() bool { return isKnown(purchaseOrderTransitions, s) }

func (s PurchaseOrderStatus) IsTerminal() bool { return isTerminal(purchaseOrderTransitions, s) }

func (s PurchaseOrderStatus) CanTransitionTo(next PurchaseOrderStatus) bool {
	return CanTransition(purchaseOrderTransitions, s, next)
}

// CanTransition is the single transition check shared by every stateful entity.
// Staying in the current status is always allowed; anything else must be listed
// as an outgoing edge of the current status.
func CanTransition[S ~string](table map[S][]S, from, to S) bool {
	if _, ok := table[to]; !ok {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

func isKnown[S ~string](table map[S][]S, s S) bool {
	_, ok := table[s]
	return ok
}

func isTerminal[S ~string](table map[S][]S, s S) bool {
	next, ok := table[s]
	return ok && len(next) == 0
}
