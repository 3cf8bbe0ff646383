package handler

import (
	"net/http"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

type DeliveryHandler struct {
	deliveryService *service.DeliveryService
	logger          *zap.Logger
}

func NewDeliveryHandler(deliveryService *service.DeliveryService, logger *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		deliveryService: deliveryService,
		logger:          logger,
	}
}

// List godoc
// @Summary List deliveries
// @Tags Deliveries
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by delivery number, driver or tracking number"
// @Param orderId query string false "Filter by order"
// @Param assignedToId query string false "Filter by assignee"
// @Param status query string false "Filter by status" Enums(PENDING, SCHEDULED, IN_TRANSIT, DELIVERED, FAILED, CANCELLED, RETURNED)
// @Param scheduledOn query string false "Scheduled on day (YYYY-MM-DD)"
// @Param dateRange query string false "Created within" Enums(today, this_week, this_month, this_quarter, all_time)
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, deliveryNumber, status, scheduledDate, deliveredAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} map[string]interface{} "{message, deliveries, pagination}"
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deliveries [get]
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	orderID, ok := queryUUID(w, r, "orderId")
	if !ok {
		return
	}
	assignedToID, ok := queryUUID(w, r, "assignedToId")
	if !ok {
		return
	}
	status, ok := queryEnum(w, r, "status", domain.DeliveryStatus.IsValid)
	if !ok {
		return
	}

	filters := &repository.DeliveryFilters{
		OrderID:      orderID,
		AssignedToID: assignedToID,
		Status:       status,
	}
	if raw := r.URL.Query().Get("scheduledOn"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, domain.ErrorCodeBadRequest,
				"Invalid scheduledOn: must be a date in YYYY-MM-DD format")
			return
		}
		filters.ScheduledOn = &day
	}

	deliveries, total, err := h.deliveryService.List(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list deliveries")
		return
	}

	respondList(w, "Deliveries retrieved successfully", "deliveries", deliveries, opts, total)
}

// GetByID godoc
// @Summary Get delivery
// @Tags Deliveries
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} map[string]interface{} "{message, delivery}"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deliveries/{id} [get]
func (h *DeliveryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "delivery")
	if !ok {
		return
	}

	delivery, err := h.deliveryService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get delivery")
		return
	}

	respondEntity(w, http.StatusOK, "Delivery retrieved successfully", "delivery", delivery)
}

// Create godoc
// @Summary Create delivery
// @Description Schedules a delivery for an order. The customer's default location is used when none is given.
// @Tags Deliveries
// @Accept json
// @Produce json
// @Param request body domain.CreateDeliveryRequest true "Delivery data"
// @Success 201 {object} map[string]interface{} "{message, delivery}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deliveries [post]
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDeliveryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	delivery, err := h.deliveryService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create delivery")
		return
	}

	respondEntity(w, http.StatusCreated, "Delivery created successfully", "delivery", delivery)
}

// Update godoc
// @Summary Update delivery
// @Description Closed deliveries cannot be edited
// @Tags Deliveries
// @Accept json
// @Produce json
// @Param id path string true "Delivery ID"
// @Param request body domain.UpdateDeliveryRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{message, delivery}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deliveries/{id} [put]
func (h *DeliveryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "delivery")
	if !ok {
		return
	}

	var req domain.UpdateDeliveryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	delivery, err := h.deliveryService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update delivery")
		return
	}

	respondEntity(w, http.StatusOK, "Delivery updated successfully", "delivery", delivery)
}

// UpdateStatus godoc
// @Summary Change delivery status
// @Description IN_TRANSIT and DELIVERED move the parent order along when its own transition table allows it
// @Tags Deliveries
// @Accept json
// @Produce json
// @Param id path string true "Delivery ID"
// @Param request body domain.UpdateDeliveryStatusRequest true "Target status"
// @Success 200 {object} map[string]interface{} "{message, delivery}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deliveries/{id}/status [put]
func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "delivery")
	if !ok {
		return
	}

	var req domain.UpdateDeliveryStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	delivery, err := h.deliveryService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update delivery status")
		return
	}

	respondEntity(w, http.StatusOK, "Delivery status updated successfully", "delivery", delivery)
}

// Delete godoc
// @Summary Delete delivery
// @Description Deliveries in transit cannot be deleted
// @Tags Deliveries
// @Param id path string true "Delivery ID"
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deliveries/{id} [delete]
func (h *DeliveryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "delivery")
	if !ok {
		return
	}

	if err := h.deliveryService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete delivery")
		return
	}

	respondMessage(w, http.StatusOK, "Delivery deleted successfully")
}
