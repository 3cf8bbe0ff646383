package handler

import (
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

type ProductionHandler struct {
	productionService *service.ProductionService
	logger            *zap.Logger
}

func NewProductionHandler(productionService *service.ProductionService, logger *zap.Logger) *ProductionHandler {
	return &ProductionHandler{
		productionService: productionService,
		logger:            logger,
	}
}

// List godoc
// @Summary List production batches
// @Tags Productions
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by batch number or notes"
// @Param recipeId query string false "Filter by recipe"
// @Param warehouseId query string false "Filter by warehouse"
// @Param status query string false "Filter by status" Enums(PLANNED, IN_PROGRESS, ON_HOLD, COMPLETED, CANCELLED)
// @Param dateRange query string false "Created within" Enums(today, this_week, this_month, this_quarter, all_time)
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, batchNumber, status, startDate, plannedQuantity)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} map[string]interface{} "{message, productions, pagination}"
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /productions [get]
func (h *ProductionHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	recipeID, ok := queryUUID(w, r, "recipeId")
	if !ok {
		return
	}
	warehouseID, ok := queryUUID(w, r, "warehouseId")
	if !ok {
		return
	}
	status, ok := queryEnum(w, r, "status", domain.ProductionStatus.IsValid)
	if !ok {
		return
	}

	filters := &repository.ProductionFilters{
		RecipeID:    recipeID,
		WarehouseID: warehouseID,
		Status:      status,
	}

	productions, total, err := h.productionService.List(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list productions")
		return
	}

	respondList(w, "Productions retrieved successfully", "productions", productions, opts, total)
}

// GetByID godoc
// @Summary Get production batch
// @Tags Productions
// @Produce json
// @Param id path string true "Production ID"
// @Success 200 {object} map[string]interface{} "{message, production}"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /productions/{id} [get]
func (h *ProductionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "production")
	if !ok {
		return
	}

	production, err := h.productionService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get production")
		return
	}

	respondEntity(w, http.StatusOK, "Production retrieved successfully", "production", production)
}

// Create godoc
// @Summary Plan a production batch
// @Description Ingredient lines default to the recipe scaled to the planned quantity
// @Tags Productions
// @Accept json
// @Produce json
// @Param request body domain.CreateProductionRequest true "Production data"
// @Success 201 {object} map[string]interface{} "{message, production}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /productions [post]
func (h *ProductionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProductionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	production, err := h.productionService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create production")
		return
	}

	respondEntity(w, http.StatusCreated, "Production created successfully", "production", production)
}

// Update godoc
// @Summary Update production batch
// @Description Only PLANNED and ON_HOLD batches can be edited
// @Tags Productions
// @Accept json
// @Produce json
// @Param id path string true "Production ID"
// @Param request body domain.UpdateProductionRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{message, production}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /productions/{id} [put]
func (h *ProductionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "production")
	if !ok {
		return
	}

	var req domain.UpdateProductionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	production, err := h.productionService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update production")
		return
	}

	respondEntity(w, http.StatusOK, "Production updated successfully", "production", production)
}

// UpdateStatus godoc
// @Summary Change production status
// @Description Completing a batch books its actual quantity of the output product into the warehouse
// @Tags Productions
// @Accept json
// @Produce json
// @Param id path string true "Production ID"
// @Param request body domain.UpdateProductionStatusRequest true "Target status"
// @Success 200 {object} map[string]interface{} "{message, production}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /productions/{id}/status [put]
func (h *ProductionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "production")
	if !ok {
		return
	}

	var req domain.UpdateProductionStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	production, err := h.productionService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update production status")
		return
	}

	respondEntity(w, http.StatusOK, "Production status updated successfully", "production", production)
}

// Delete godoc
// @Summary Delete production batch
// @Description Batches in progress cannot be deleted
// @Tags Productions
// @Param id path string true "Production ID"
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /productions/{id} [delete]
func (h *ProductionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "production")
	if !ok {
		return
	}

	if err := h.productionService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete production")
		return
	}

	respondMessage(w, http.StatusOK, "Production deleted successfully")
}
