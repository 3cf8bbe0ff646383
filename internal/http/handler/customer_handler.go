package handler

import (
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	logger          *zap.Logger
}

func NewCustomerHandler(customerService *service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// List godoc
// @Summary List customers
// @Description Get paginated list of customers with optional filters
// @Tags Customers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by name, email, phone or company"
// @Param customerType query string false "Filter by type" Enums(INDIVIDUAL, B2B, COMMUNITY)
// @Param isActive query bool false "Filter by active flag"
// @Param dateRange query string false "Created within" Enums(today, this_week, this_month, this_quarter, all_time)
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, name, email, customerType, companyName)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} map[string]interface{} "{message, customers, pagination}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers [get]
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	customerType, ok := queryEnum(w, r, "customerType", domain.CustomerType.IsValid)
	if !ok {
		return
	}

	filters := &repository.CustomerFilters{
		CustomerType: customerType,
		IsActive:     queryBool(r, "isActive"),
	}

	customers, total, err := h.customerService.List(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list customers")
		return
	}

	respondList(w, "Customers retrieved successfully", "customers", customers, opts, total)
}

// GetByID godoc
// @Summary Get customer
// @Description Returns the customer with its delivery locations
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} map[string]interface{} "{message, customer}"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get customer")
		return
	}

	respondEntity(w, http.StatusOK, "Customer retrieved successfully", "customer", customer)
}

// Create godoc
// @Summary Create customer
// @Description Creates a customer, optionally with its delivery locations
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body domain.CreateCustomerRequest true "Customer data"
// @Success 201 {object} map[string]interface{} "{message, customer}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers [post]
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.customerService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create customer")
		return
	}

	respondEntity(w, http.StatusCreated, "Customer created successfully", "customer", customer)
}

// Update godoc
// @Summary Update customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body domain.UpdateCustomerRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{message, customer}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id} [put]
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "customer")
	if !ok {
		return
	}

	var req domain.UpdateCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.customerService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update customer")
		return
	}

	respondEntity(w, http.StatusOK, "Customer updated successfully", "customer", customer)
}

// SetActive godoc
// @Summary Activate or deactivate customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body domain.SetActiveRequest true "Active flag"
// @Success 200 {object} map[string]interface{} "{message, customer}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id}/active [put]
func (h *CustomerHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "customer")
	if !ok {
		return
	}

	var req domain.SetActiveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.customerService.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		respondServiceError(w, h.logger, err, "change customer status")
		return
	}

	respondEntity(w, http.StatusOK, "Customer status updated successfully", "customer", customer)
}

// Delete godoc
// @Summary Delete customer
// @Description Customers with orders cannot be deleted
// @Tags Customers
// @Param id path string true "Customer ID"
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id} [delete]
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "customer")
	if !ok {
		return
	}

	if err := h.customerService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete customer")
		return
	}

	respondMessage(w, http.StatusOK, "Customer deleted successfully")
}

// ListLocations godoc
// @Summary List customer delivery locations
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} map[string]interface{} "{message, locations}"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id}/locations [get]
func (h *CustomerHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "customer")
	if !ok {
		return
	}

	locations, err := h.customerService.ListLocations(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "list customer locations")
		return
	}

	respondEntity(w, http.StatusOK, "Locations retrieved successfully", "locations", locations)
}

// AddLocation godoc
// @Summary Add customer delivery location
// @Description The first location, or one flagged isDefault, becomes the default
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body domain.CreateCustomerLocationRequest true "Location data"
// @Success 201 {object} map[string]interface{} "{message, location}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id}/locations [post]
func (h *CustomerHandler) AddLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "customer")
	if !ok {
		return
	}

	var req domain.CreateCustomerLocationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	location, err := h.customerService.AddLocation(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add customer location")
		return
	}

	respondEntity(w, http.StatusCreated, "Location created successfully", "location", location)
}

// UpdateLocation godoc
// @Summary Update customer delivery location
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param locationId path string true "Location ID"
// @Param request body domain.UpdateCustomerLocationRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{message, location}"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id}/locations/{locationId} [put]
func (h *CustomerHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "customer")
	if !ok {
		return
	}
	locationID, ok := parseUUIDParam(w, r, "locationId", "location")
	if !ok {
		return
	}

	var req domain.UpdateCustomerLocationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	location, err := h.customerService.UpdateLocation(r.Context(), id, locationID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update customer location")
		return
	}

	respondEntity(w, http.StatusOK, "Location updated successfully", "location", location)
}

// DeleteLocation godoc
// @Summary Delete customer delivery location
// @Tags Customers
// @Param id path string true "Customer ID"
// @Param locationId path string true "Location ID"
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id}/locations/{locationId} [delete]
func (h *CustomerHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "customer")
	if !ok {
		return
	}
	locationID, ok := parseUUIDParam(w, r, "locationId", "location")
	if !ok {
		return
	}

	if err := h.customerService.DeleteLocation(r.Context(), id, locationID); err != nil {
		respondServiceError(w, h.logger, err, "delete customer location")
		return
	}

	respondMessage(w, http.StatusOK, "Location deleted successfully")
}
