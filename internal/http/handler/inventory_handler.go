package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
	logger           *zap.Logger
}

func NewInventoryHandler(inventoryService *service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// List godoc
// @Summary List inventory rows
// @Tags Inventory
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by batch number, location or product"
// @Param productId query string false "Filter by product"
// @Param warehouseId query string false "Filter by warehouse"
// @Param lowStock query bool false "Only rows at or below the product reorder point"
// @Param expiringWithinDays query int false "Only rows expiring within the given number of days"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, quantity, reservedQuantity, expiryDate)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} map[string]interface{} "{message, inventory, pagination}"
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory [get]
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	productID, ok := queryUUID(w, r, "productId")
	if !ok {
		return
	}
	warehouseID, ok := queryUUID(w, r, "warehouseId")
	if !ok {
		return
	}

	filters := &repository.InventoryFilters{
		ProductID:   productID,
		WarehouseID: warehouseID,
	}
	if lowStock := queryBool(r, "lowStock"); lowStock != nil {
		filters.LowStock = *lowStock
	}
	if raw := r.URL.Query().Get("expiringWithinDays"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			respondWithError(w, http.StatusBadRequest, domain.ErrorCodeBadRequest,
				"Invalid expiringWithinDays: must be a non-negative integer")
			return
		}
		before := time.Now().UTC().AddDate(0, 0, days)
		filters.ExpiringBefore = &before
	}

	rows, total, err := h.inventoryService.List(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list inventory")
		return
	}

	respondList(w, "Inventory retrieved successfully", "inventory", rows, opts, total)
}

// GetByID godoc
// @Summary Get inventory row
// @Tags Inventory
// @Produce json
// @Param id path string true "Inventory ID"
// @Success 200 {object} map[string]interface{} "{message, inventory}"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/{id} [get]
func (h *InventoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "inventory")
	if !ok {
		return
	}

	inv, err := h.inventoryService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get inventory")
		return
	}

	respondEntity(w, http.StatusOK, "Inventory retrieved successfully", "inventory", inv)
}

// Create godoc
// @Summary Create inventory row
// @Description Opens stock of a product in a warehouse. A non-zero quantity is logged as an IN movement.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body domain.CreateInventoryRequest true "Inventory data"
// @Success 201 {object} map[string]interface{} "{message, inventory}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Row already exists for product and warehouse"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory [post]
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInventoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	inv, err := h.inventoryService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create inventory")
		return
	}

	respondEntity(w, http.StatusCreated, "Inventory created successfully", "inventory", inv)
}

// Update godoc
// @Summary Update inventory row
// @Description Changing quantity records an ADJUSTMENT movement for the difference
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Inventory ID"
// @Param request body domain.UpdateInventoryRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{message, inventory}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/{id} [put]
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "inventory")
	if !ok {
		return
	}

	var req domain.UpdateInventoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	inv, err := h.inventoryService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update inventory")
		return
	}

	respondEntity(w, http.StatusOK, "Inventory updated successfully", "inventory", inv)
}

// Delete godoc
// @Summary Delete inventory row
// @Description Rows with reserved stock cannot be deleted
// @Tags Inventory
// @Param id path string true "Inventory ID"
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/{id} [delete]
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "inventory")
	if !ok {
		return
	}

	if err := h.inventoryService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete inventory")
		return
	}

	respondMessage(w, http.StatusOK, "Inventory deleted successfully")
}

// Transfer godoc
// @Summary Transfer stock between warehouses
// @Description Moves quantity from a source row into the same product's row in the destination
// @Description warehouse, creating it when absent. Both rows change in one transaction.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body domain.TransferInventoryRequest true "Transfer"
// @Success 200 {object} map[string]interface{} "{message, transfer}"
// @Failure 400 {object} domain.ErrorResponse "Insufficient stock or same warehouse"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/transfer [post]
func (h *InventoryHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req domain.TransferInventoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.inventoryService.Transfer(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "transfer inventory")
		return
	}

	respondEntity(w, http.StatusOK, "Inventory transferred successfully", "transfer", result)
}

// Adjust godoc
// @Summary Adjust stock
// @Description Applies a signed delta and records a movement. Negative deltas cannot exceed available stock.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Inventory ID"
// @Param request body domain.AdjustInventoryRequest true "Adjustment"
// @Success 200 {object} map[string]interface{} "{message, movement}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/{id}/adjust [post]
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "inventory")
	if !ok {
		return
	}

	var req domain.AdjustInventoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	movement, err := h.inventoryService.Adjust(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "adjust inventory")
		return
	}

	respondEntity(w, http.StatusOK, "Inventory adjusted successfully", "movement", movement)
}

// Reserve godoc
// @Summary Reserve stock
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Inventory ID"
// @Param request body domain.ReserveInventoryRequest true "Quantity to reserve"
// @Success 200 {object} map[string]interface{} "{message, inventory}"
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/{id}/reserve [post]
func (h *InventoryHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	h.changeReservation(w, r, true)
}

// Release godoc
// @Summary Release reserved stock
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Inventory ID"
// @Param request body domain.ReserveInventoryRequest true "Quantity to release"
// @Success 200 {object} map[string]interface{} "{message, inventory}"
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/{id}/release [post]
func (h *InventoryHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.changeReservation(w, r, false)
}

func (h *InventoryHandler) changeReservation(w http.ResponseWriter, r *http.Request, reserve bool) {
	id, ok := parseUUIDParam(w, r, "id", "inventory")
	if !ok {
		return
	}

	var req domain.ReserveInventoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var (
		inv    *domain.Inventory
		err    error
		action = "reserved"
	)
	if reserve {
		inv, err = h.inventoryService.Reserve(r.Context(), id, &req)
	} else {
		action = "released"
		inv, err = h.inventoryService.Release(r.Context(), id, &req)
	}
	if err != nil {
		respondServiceError(w, h.logger, err, "change reservation")
		return
	}

	respondEntity(w, http.StatusOK, fmt.Sprintf("Stock %s successfully", action), "inventory", inv)
}

// ListMovements godoc
// @Summary List stock movements
// @Tags Inventory
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param inventoryId query string false "Filter by inventory row"
// @Param productId query string false "Filter by product"
// @Param warehouseId query string false "Filter by warehouse"
// @Param movementType query string false "Filter by type"
// @Param reference query string false "Filter by reference"
// @Param dateRange query string false "Created within" Enums(today, this_week, this_month, this_quarter, all_time)
// @Success 200 {object} map[string]interface{} "{message, movements, pagination}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/movements [get]
func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	inventoryID, ok := queryUUID(w, r, "inventoryId")
	if !ok {
		return
	}
	h.listMovements(w, r, inventoryID)
}

// ListRowMovements godoc
// @Summary List movements of one inventory row
// @Tags Inventory
// @Produce json
// @Param id path string true "Inventory ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Success 200 {object} map[string]interface{} "{message, movements, pagination}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/{id}/movements [get]
func (h *InventoryHandler) ListRowMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "inventory")
	if !ok {
		return
	}
	h.listMovements(w, r, &id)
}

func (h *InventoryHandler) listMovements(w http.ResponseWriter, r *http.Request, inventoryID *uuid.UUID) {
	opts := parseListOptions(r)
	productID, ok := queryUUID(w, r, "productId")
	if !ok {
		return
	}
	warehouseID, ok := queryUUID(w, r, "warehouseId")
	if !ok {
		return
	}
	movementType, ok := queryEnum(w, r, "movementType", domain.MovementType.IsValid)
	if !ok {
		return
	}

	filters := &repository.MovementFilters{
		InventoryID:  inventoryID,
		ProductID:    productID,
		WarehouseID:  warehouseID,
		MovementType: movementType,
		Reference:    strings.TrimSpace(r.URL.Query().Get("reference")),
	}
	movements, total, err := h.inventoryService.ListMovements(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list movements")
		return
	}

	respondList(w, "Movements retrieved successfully", "movements", movements, opts, total)
}
