package handler

import (
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService *service.ProductService
	logger         *zap.Logger
}

func NewProductHandler(productService *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// List godoc
// @Summary List products
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by name, SKU or description"
// @Param category query string false "Filter by category"
// @Param isActive query bool false "Filter by active flag"
// @Param isPublic query bool false "Filter by catalog visibility"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, name, sku, category, price)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} map[string]interface{} "{message, products, pagination}"
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	category, ok := queryEnum(w, r, "category", domain.ProductCategory.IsValid)
	if !ok {
		return
	}

	filters := &repository.ProductFilters{
		Category: category,
		IsActive: queryBool(r, "isActive"),
		IsPublic: queryBool(r, "isPublic"),
	}

	products, total, err := h.productService.List(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list products")
		return
	}

	respondList(w, "Products retrieved successfully", "products", products, opts, total)
}

// ListPublic godoc
// @Summary Public product catalog
// @Description Active products flagged public. No authentication; rate limited per IP.
// @Tags Public
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by name"
// @Param category query string false "Filter by category"
// @Success 200 {object} map[string]interface{} "{message, products, pagination}"
// @Failure 429 {object} domain.ErrorResponse
// @Router /public/products [get]
func (h *ProductHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	category, ok := queryEnum(w, r, "category", domain.ProductCategory.IsValid)
	if !ok {
		return
	}

	products, total, err := h.productService.ListPublic(r.Context(), category, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list public products")
		return
	}

	respondList(w, "Products retrieved successfully", "products", products, opts, total)
}

// GetByID godoc
// @Summary Get product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]interface{} "{message, product}"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get product")
		return
	}

	respondEntity(w, http.StatusOK, "Product retrieved successfully", "product", product)
}

// Create godoc
// @Summary Create product
// @Tags Products
// @Accept json
// @Produce json
// @Param request body domain.CreateProductRequest true "Product data"
// @Success 201 {object} map[string]interface{} "{message, product}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "SKU already in use"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.productService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create product")
		return
	}

	respondEntity(w, http.StatusCreated, "Product created successfully", "product", product)
}

// Update godoc
// @Summary Update product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body domain.UpdateProductRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{message, product}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "product")
	if !ok {
		return
	}

	var req domain.UpdateProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.productService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update product")
		return
	}

	respondEntity(w, http.StatusOK, "Product updated successfully", "product", product)
}

// SetActive godoc
// @Summary Activate or deactivate product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body domain.SetActiveRequest true "Active flag"
// @Success 200 {object} map[string]interface{} "{message, product}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/{id}/active [put]
func (h *ProductHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "product")
	if !ok {
		return
	}

	var req domain.SetActiveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.productService.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		respondServiceError(w, h.logger, err, "change product status")
		return
	}

	respondEntity(w, http.StatusOK, "Product status updated successfully", "product", product)
}

// Delete godoc
// @Summary Delete product
// @Description Products referenced by inventory, orders or recipes cannot be deleted
// @Tags Products
// @Param id path string true "Product ID"
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete product")
		return
	}

	respondMessage(w, http.StatusOK, "Product deleted successfully")
}
