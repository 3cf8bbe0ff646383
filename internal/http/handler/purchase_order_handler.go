package handler

import (
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

type PurchaseOrderHandler struct {
	purchaseOrderService *service.PurchaseOrderService
	logger               *zap.Logger
}

func NewPurchaseOrderHandler(purchaseOrderService *service.PurchaseOrderService, logger *zap.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		purchaseOrderService: purchaseOrderService,
		logger:               logger,
	}
}

// List godoc
// @Summary List purchase orders
// @Tags Purchase Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by PO number or supplier name"
// @Param supplierId query string false "Filter by supplier"
// @Param warehouseId query string false "Filter by receiving warehouse"
// @Param status query string false "Filter by status" Enums(DRAFT, SUBMITTED, APPROVED, RECEIVED, CANCELLED)
// @Param dateRange query string false "Created within" Enums(today, this_week, this_month, this_quarter, all_time)
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, poNumber, status, orderDate, expectedDate, totalAmount)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} map[string]interface{} "{message, purchaseOrders, pagination}"
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders [get]
func (h *PurchaseOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	supplierID, ok := queryUUID(w, r, "supplierId")
	if !ok {
		return
	}
	warehouseID, ok := queryUUID(w, r, "warehouseId")
	if !ok {
		return
	}
	status, ok := queryEnum(w, r, "status", domain.PurchaseOrderStatus.IsValid)
	if !ok {
		return
	}

	filters := &repository.PurchaseOrderFilters{
		SupplierID:  supplierID,
		WarehouseID: warehouseID,
		Status:      status,
	}

	orders, total, err := h.purchaseOrderService.List(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list purchase orders")
		return
	}

	respondList(w, "Purchase orders retrieved successfully", "purchaseOrders", orders, opts, total)
}

// GetByID godoc
// @Summary Get purchase order
// @Tags Purchase Orders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} map[string]interface{} "{message, purchaseOrder}"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "purchase order")
	if !ok {
		return
	}

	po, err := h.purchaseOrderService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get purchase order")
		return
	}

	respondEntity(w, http.StatusOK, "Purchase order retrieved successfully", "purchaseOrder", po)
}

// Create godoc
// @Summary Create purchase order
// @Description Line unit costs default to the product cost price
// @Tags Purchase Orders
// @Accept json
// @Produce json
// @Param request body domain.CreatePurchaseOrderRequest true "Purchase order data"
// @Success 201 {object} map[string]interface{} "{message, purchaseOrder}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePurchaseOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	po, err := h.purchaseOrderService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create purchase order")
		return
	}

	respondEntity(w, http.StatusCreated, "Purchase order created successfully", "purchaseOrder", po)
}

// Update godoc
// @Summary Update purchase order
// @Description Only DRAFT purchase orders can be edited
// @Tags Purchase Orders
// @Accept json
// @Produce json
// @Param id path string true "Purchase order ID"
// @Param request body domain.UpdatePurchaseOrderRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{message, purchaseOrder}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "purchase order")
	if !ok {
		return
	}

	var req domain.UpdatePurchaseOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	po, err := h.purchaseOrderService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update purchase order")
		return
	}

	respondEntity(w, http.StatusOK, "Purchase order updated successfully", "purchaseOrder", po)
}

// UpdateStatus godoc
// @Summary Change purchase order status
// @Description RECEIVED books every line into the receiving warehouse
// @Tags Purchase Orders
// @Accept json
// @Produce json
// @Param id path string true "Purchase order ID"
// @Param request body domain.UpdatePurchaseOrderStatusRequest true "Target status"
// @Success 200 {object} map[string]interface{} "{message, purchaseOrder}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{id}/status [put]
func (h *PurchaseOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "purchase order")
	if !ok {
		return
	}

	var req domain.UpdatePurchaseOrderStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	po, err := h.purchaseOrderService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update purchase order status")
		return
	}

	respondEntity(w, http.StatusOK, "Purchase order status updated successfully", "purchaseOrder", po)
}

// Delete godoc
// @Summary Delete purchase order
// @Description Received purchase orders cannot be deleted
// @Tags Purchase Orders
// @Param id path string true "Purchase order ID"
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "purchase order")
	if !ok {
		return
	}

	if err := h.purchaseOrderService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete purchase order")
		return
	}

	respondMessage(w, http.StatusOK, "Purchase order deleted successfully")
}
