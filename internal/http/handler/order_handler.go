package handler

import (
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// List godoc
// @Summary List orders
// @Tags Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by order number or customer name"
// @Param customerId query string false "Filter by customer"
// @Param status query string false "Filter by status"
// @Param paymentStatus query string false "Filter by payment status"
// @Param channel query string false "Filter by channel"
// @Param dateRange query string false "Created within" Enums(today, this_week, this_month, this_quarter, all_time)
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, orderNumber, status, totalAmount, deliveryDate)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} map[string]interface{} "{message, orders, pagination}"
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	customerID, ok := queryUUID(w, r, "customerId")
	if !ok {
		return
	}
	status, ok := queryEnum(w, r, "status", domain.OrderStatus.IsValid)
	if !ok {
		return
	}
	paymentStatus, ok := queryEnum(w, r, "paymentStatus", domain.PaymentStatus.IsValid)
	if !ok {
		return
	}
	channel, ok := queryEnum(w, r, "channel", domain.OrderChannel.IsValid)
	if !ok {
		return
	}

	filters := &repository.OrderFilters{
		CustomerID:    customerID,
		Status:        status,
		PaymentStatus: paymentStatus,
		Channel:       channel,
	}

	orders, total, err := h.orderService.List(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list orders")
		return
	}

	respondList(w, "Orders retrieved successfully", "orders", orders, opts, total)
}

// GetByID godoc
// @Summary Get order
// @Description Returns the order with customer, items and deliveries
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]interface{} "{message, order}"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get order")
		return
	}

	respondEntity(w, http.StatusOK, "Order retrieved successfully", "order", order)
}

// Create godoc
// @Summary Create order
// @Description Prices each line from the product when unitPrice is omitted and computes totals
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body domain.CreateOrderRequest true "Order data"
// @Success 201 {object} map[string]interface{} "{message, order}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders [post]
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.orderService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create order")
		return
	}

	respondEntity(w, http.StatusCreated, "Order created successfully", "order", order)
}

// Update godoc
// @Summary Update order
// @Description Only PENDING and CONFIRMED orders can be edited. Items, when sent, replace all lines.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.UpdateOrderRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{message, order}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders/{id} [put]
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	var req domain.UpdateOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.orderService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update order")
		return
	}

	respondEntity(w, http.StatusOK, "Order updated successfully", "order", order)
}

// UpdateStatus godoc
// @Summary Change order status
// @Description Applies the order transition table. Rejected transitions return 409 with currentStatus and requestedStatus.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.UpdateOrderStatusRequest true "Target status"
// @Success 200 {object} map[string]interface{} "{message, order}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	var req domain.UpdateOrderStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update order status")
		return
	}

	respondEntity(w, http.StatusOK, "Order status updated successfully", "order", order)
}

// UpdatePayment godoc
// @Summary Change order payment status
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.UpdatePaymentRequest true "Payment status"
// @Success 200 {object} map[string]interface{} "{message, order}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders/{id}/payment [put]
func (h *OrderHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	var req domain.UpdatePaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.orderService.UpdatePayment(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update order payment")
		return
	}

	respondEntity(w, http.StatusOK, "Order payment updated successfully", "order", order)
}

// Delete godoc
// @Summary Delete order
// @Description Delivered orders and orders with deliveries cannot be deleted
// @Tags Orders
// @Param id path string true "Order ID"
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders/{id} [delete]
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	if err := h.orderService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete order")
		return
	}

	respondMessage(w, http.StatusOK, "Order deleted successfully")
}
