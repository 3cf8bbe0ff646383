package handler

import (
	"net/http"
	"strings"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

type WarehouseHandler struct {
	warehouseService *service.WarehouseService
	logger           *zap.Logger
}

func NewWarehouseHandler(warehouseService *service.WarehouseService, logger *zap.Logger) *WarehouseHandler {
	return &WarehouseHandler{
		warehouseService: warehouseService,
		logger:           logger,
	}
}

// List godoc
// @Summary List warehouses
// @Tags Warehouses
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by code, name or address"
// @Param city query string false "Filter by city"
// @Param isActive query bool false "Filter by active flag"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, name, code, city, capacity)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} map[string]interface{} "{message, warehouses, pagination}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /warehouses [get]
func (h *WarehouseHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	filters := &repository.WarehouseFilters{
		City:     strings.TrimSpace(r.URL.Query().Get("city")),
		IsActive: queryBool(r, "isActive"),
	}

	warehouses, total, err := h.warehouseService.List(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list warehouses")
		return
	}

	respondList(w, "Warehouses retrieved successfully", "warehouses", warehouses, opts, total)
}

// GetByID godoc
// @Summary Get warehouse
// @Tags Warehouses
// @Produce json
// @Param id path string true "Warehouse ID"
// @Success 200 {object} map[string]interface{} "{message, warehouse}"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /warehouses/{id} [get]
func (h *WarehouseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "warehouse")
	if !ok {
		return
	}

	warehouse, err := h.warehouseService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get warehouse")
		return
	}

	respondEntity(w, http.StatusOK, "Warehouse retrieved successfully", "warehouse", warehouse)
}

// Create godoc
// @Summary Create warehouse
// @Tags Warehouses
// @Accept json
// @Produce json
// @Param request body domain.CreateWarehouseRequest true "Warehouse data"
// @Success 201 {object} map[string]interface{} "{message, warehouse}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Code already in use"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /warehouses [post]
func (h *WarehouseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateWarehouseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	warehouse, err := h.warehouseService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create warehouse")
		return
	}

	respondEntity(w, http.StatusCreated, "Warehouse created successfully", "warehouse", warehouse)
}

// Update godoc
// @Summary Update warehouse
// @Tags Warehouses
// @Accept json
// @Produce json
// @Param id path string true "Warehouse ID"
// @Param request body domain.UpdateWarehouseRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{message, warehouse}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /warehouses/{id} [put]
func (h *WarehouseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "warehouse")
	if !ok {
		return
	}

	var req domain.UpdateWarehouseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	warehouse, err := h.warehouseService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update warehouse")
		return
	}

	respondEntity(w, http.StatusOK, "Warehouse updated successfully", "warehouse", warehouse)
}

// SetActive godoc
// @Summary Activate or deactivate warehouse
// @Tags Warehouses
// @Accept json
// @Produce json
// @Param id path string true "Warehouse ID"
// @Param request body domain.SetActiveRequest true "Active flag"
// @Success 200 {object} map[string]interface{} "{message, warehouse}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /warehouses/{id}/active [put]
func (h *WarehouseHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "warehouse")
	if !ok {
		return
	}

	var req domain.SetActiveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	warehouse, err := h.warehouseService.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		respondServiceError(w, h.logger, err, "change warehouse status")
		return
	}

	respondEntity(w, http.StatusOK, "Warehouse status updated successfully", "warehouse", warehouse)
}

// Delete godoc
// @Summary Delete warehouse
// @Description Warehouses that still hold inventory rows cannot be deleted
// @Tags Warehouses
// @Param id path string true "Warehouse ID"
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /warehouses/{id} [delete]
func (h *WarehouseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "warehouse")
	if !ok {
		return
	}

	if err := h.warehouseService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete warehouse")
		return
	}

	respondMessage(w, http.StatusOK, "Warehouse deleted successfully")
}
