package handler

import (
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

// SupplierHandler handles HTTP requests for supplier operations
type SupplierHandler struct {
	supplierService *service.SupplierService
	logger          *zap.Logger
}

// NewSupplierHandler creates a new supplier handler instance
func NewSupplierHandler(
	supplierService *service.SupplierService,
	logger *zap.Logger,
) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
		logger:          logger,
	}
}

// List godoc
// @Summary List suppliers
// @Description Get paginated list of suppliers with optional filters
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by name, contact or email"
// @Param isActive query bool false "Filter by active flag"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, name, contactName, email)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} map[string]interface{} "{message, suppliers, pagination}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /suppliers [get]
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	filters := &repository.SupplierFilters{
		IsActive: queryBool(r, "isActive"),
	}

	suppliers, total, err := h.supplierService.List(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list suppliers")
		return
	}

	respondList(w, "Suppliers retrieved successfully", "suppliers", suppliers, opts, total)
}

// GetByID godoc
// @Summary Get supplier by ID
// @Tags Suppliers
// @Produce json
// @Param id path string true "Supplier ID" format(uuid)
// @Success 200 {object} map[string]interface{} "{message, supplier}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /suppliers/{id} [get]
func (h *SupplierHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "supplier")
	if !ok {
		return
	}

	supplier, err := h.supplierService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get supplier")
		return
	}

	respondEntity(w, http.StatusOK, "Supplier retrieved successfully", "supplier", supplier)
}

// Create godoc
// @Summary Create a new supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param request body domain.CreateSupplierRequest true "Supplier data"
// @Success 201 {object} map[string]interface{} "{message, supplier}"
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /suppliers [post]
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSupplierRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	supplier, err := h.supplierService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create supplier")
		return
	}

	respondEntity(w, http.StatusCreated, "Supplier created successfully", "supplier", supplier)
}

// Update godoc
// @Summary Update a supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param id path string true "Supplier ID" format(uuid)
// @Param request body domain.UpdateSupplierRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{message, supplier}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /suppliers/{id} [put]
func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "supplier")
	if !ok {
		return
	}

	var req domain.UpdateSupplierRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	supplier, err := h.supplierService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update supplier")
		return
	}

	respondEntity(w, http.StatusOK, "Supplier updated successfully", "supplier", supplier)
}

// SetActive godoc
// @Summary Activate or deactivate supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param id path string true "Supplier ID" format(uuid)
// @Param request body domain.SetActiveRequest true "Active flag"
// @Success 200 {object} map[string]interface{} "{message, supplier}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /suppliers/{id}/active [put]
func (h *SupplierHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "supplier")
	if !ok {
		return
	}

	var req domain.SetActiveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	supplier, err := h.supplierService.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		respondServiceError(w, h.logger, err, "change supplier status")
		return
	}

	respondEntity(w, http.StatusOK, "Supplier status updated successfully", "supplier", supplier)
}

// Delete godoc
// @Summary Delete a supplier
// @Description Suppliers with purchase orders cannot be deleted; deactivate them instead
// @Tags Suppliers
// @Param id path string true "Supplier ID" format(uuid)
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /suppliers/{id} [delete]
func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "supplier")
	if !ok {
		return
	}

	if err := h.supplierService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete supplier")
		return
	}

	respondMessage(w, http.StatusOK, "Supplier deleted successfully")
}
