package service

import (
	"errors"
	"fmt"
)

// Common service errors. Every error a service returns wraps one of these kinds.
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate or dependents)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTransition is returned when a status change is not allowed
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInsufficientStock is returned when a stock decrement exceeds availability
	ErrInsufficientStock = errors.New("insufficient stock")
)

// kindError is an entity-specific error that unwraps to one of the kinds above
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// FieldError is a validation failure on one request field
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrInvalidInput }

func fieldError(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// TransitionError reports a status change the transition table rejects
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change %s status from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// InsufficientStockError carries the quantities of a rejected stock decrement
type InsufficientStockError struct {
	Available float64
	Requested float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %g, requested %g", e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Entity errors
var (
	ErrUserNotFound          = newError(ErrNotFound, "user not found")
	ErrCustomerNotFound      = newError(ErrNotFound, "customer not found")
	ErrLocationNotFound      = newError(ErrNotFound, "customer location not found")
	ErrProductNotFound       = newError(ErrNotFound, "product not found")
	ErrWarehouseNotFound     = newError(ErrNotFound, "warehouse not found")
	ErrSupplierNotFound      = newError(ErrNotFound, "supplier not found")
	ErrRecipeNotFound        = newError(ErrNotFound, "recipe not found")
	ErrInventoryNotFound     = newError(ErrNotFound, "inventory not found")
	ErrOrderNotFound         = newError(ErrNotFound, "order not found")
	ErrProductionNotFound    = newError(ErrNotFound, "production not found")
	ErrDeliveryNotFound      = newError(ErrNotFound, "delivery not found")
	ErrPurchaseOrderNotFound = newError(ErrNotFound, "purchase order not found")
	ErrNotificationNotFound  = newError(ErrNotFound, "notification not found")
	ErrImageNotFound         = newError(ErrNotFound, "product has no image")

	ErrDuplicateEmail         = newError(ErrConflict, "email is already in use")
	ErrDuplicateSKU           = newError(ErrConflict, "a product with this SKU already exists")
	ErrDuplicateWarehouseCode = newError(ErrConflict, "a warehouse with this code already exists")
	ErrDuplicateRecipeName    = newError(ErrConflict, "a recipe with this name already exists")
	ErrInventoryExists        = newError(ErrConflict, "inventory for this product and warehouse already exists")

	ErrSupplierHasPurchaseOrders = newError(ErrConflict, "cannot delete supplier with purchase orders")
	ErrWarehouseHasInventory     = newError(ErrConflict, "cannot delete warehouse with inventory")
	ErrWarehouseInUse            = newError(ErrConflict, "cannot delete warehouse used by purchase orders or productions")
	ErrRecipeInUse               = newError(ErrConflict, "cannot delete recipe used by a production")
	ErrProductInUse              = newError(ErrConflict, "cannot delete product that is still referenced")
	ErrCustomerHasOrders         = newError(ErrConflict, "cannot delete customer with orders")
	ErrLocationInUse             = newError(ErrConflict, "cannot delete location used by a delivery")
	ErrOrderDelivered            = newError(ErrConflict, "cannot delete a delivered order")
	ErrOrderHasDeliveries        = newError(ErrConflict, "cannot delete order with deliveries")
	ErrOrderNotEditable          = newError(ErrConflict, "order can no longer be edited")
	ErrProductionInProgress      = newError(ErrConflict, "cannot delete a production in progress")
	ErrProductionNotEditable     = newError(ErrConflict, "production can no longer be edited")
	ErrPurchaseOrderReceived     = newError(ErrConflict, "cannot delete a received purchase order")
	ErrPurchaseOrderNotEditable  = newError(ErrConflict, "only draft purchase orders can be edited")
	ErrDeliveryInTransit         = newError(ErrConflict, "cannot delete a delivery in transit")
	ErrDeliveryClosed            = newError(ErrConflict, "delivery is closed and can no longer be edited")
	ErrOrderClosed               = newError(ErrConflict, "cannot deliver a cancelled or returned order")
	ErrInventoryReserved         = newError(ErrConflict, "cannot delete inventory with reserved stock")
	ErrInventoryNotEmpty         = newError(ErrConflict, "cannot delete inventory that still holds stock")
	ErrInventoryHasMovements     = newError(ErrConflict, "cannot delete inventory with movement history")
	ErrCannotDeleteSelf          = newError(ErrConflict, "users cannot delete themselves")

	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid email or password")
	ErrUserInactive       = newError(ErrUnauthorized, "user account is inactive")
	ErrUserContextMissing = newError(ErrUnauthorized, "user context required")
	ErrNotificationHidden = newError(ErrPermissionDenied, "notification does not belong to current user")
)
