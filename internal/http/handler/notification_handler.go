package handler

import (
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

// NotificationHandler handles HTTP requests for notifications
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

func validNotificationStatus(s domain.NotificationStatus) bool {
	switch s {
	case domain.NotificationPending, domain.NotificationSent, domain.NotificationFailed:
		return true
	}
	return false
}

// List godoc
// @Summary List notifications
// @Description Get paginated list of the current user's own and broadcast notifications. Admins see all.
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param unreadOnly query bool false "Filter to show only unread notifications" default(false)
// @Param type query string false "Filter by notification type" Enums(LOW_STOCK, ORDER_STATUS, PRODUCTION_STATUS, DELIVERY_STATUS, SYSTEM)
// @Param status query string false "Filter by delivery state" Enums(PENDING, SENT, FAILED)
// @Success 200 {object} map[string]interface{} "{message, notifications, pagination}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	notificationType, ok := queryEnum(w, r, "type", domain.NotificationType.IsValid)
	if !ok {
		return
	}
	status, ok := queryEnum(w, r, "status", validNotificationStatus)
	if !ok {
		return
	}

	filters := &repository.NotificationFilters{
		Type:   notificationType,
		Status: status,
	}
	if unread := queryBool(r, "unreadOnly"); unread != nil {
		filters.UnreadOnly = *unread
	}

	notifications, total, err := h.notificationService.List(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list notifications")
		return
	}

	respondList(w, "Notifications retrieved successfully", "notifications", notifications, opts, total)
}

// GetUnreadCount godoc
// @Summary Get unread notification count
// @Tags Notifications
// @Produce json
// @Success 200 {object} map[string]interface{} "{message, count}"
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/count [get]
func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, domain.ErrorCodeUnauthorized, "Authentication required")
		return
	}

	count, err := h.notificationService.CountUnread(r.Context(), userCtx.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err, "count unread notifications")
		return
	}

	respondEntity(w, http.StatusOK, "Unread count retrieved successfully", "count", count)
}

// GetByID godoc
// @Summary Get notification
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID" format(uuid)
// @Success 200 {object} map[string]interface{} "{message, notification}"
// @Failure 403 {object} domain.ErrorResponse "Notification belongs to another user"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/{id} [get]
func (h *NotificationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "notification")
	if !ok {
		return
	}

	notification, err := h.notificationService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get notification")
		return
	}

	respondEntity(w, http.StatusOK, "Notification retrieved successfully", "notification", notification)
}

// Create godoc
// @Summary Create notification
// @Description Admin-only. Omitting recipientId broadcasts to every user.
// @Tags Notifications
// @Accept json
// @Produce json
// @Param request body domain.CreateNotificationRequest true "Notification"
// @Success 201 {object} map[string]interface{} "{message, notification}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications [post]
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNotificationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	notification, err := h.notificationService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create notification")
		return
	}

	respondEntity(w, http.StatusCreated, "Notification created successfully", "notification", notification)
}

// MarkAsRead godoc
// @Summary Mark notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID" format(uuid)
// @Success 200 {object} map[string]interface{} "{message, notification}"
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "notification")
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkRead(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "mark notification as read")
		return
	}

	respondEntity(w, http.StatusOK, "Notification marked as read", "notification", notification)
}

// Delete godoc
// @Summary Delete notification
// @Tags Notifications
// @Param id path string true "Notification ID" format(uuid)
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete notification")
		return
	}

	respondMessage(w, http.StatusOK, "Notification deleted successfully")
}
