package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sender delivers a notification over its channel
type Sender interface {
	Send(ctx context.Context, notification *domain.Notification) error
}

// LogSender writes notifications to the structured log. It is the default sender
// until a mail or push integration is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, n *domain.Notification) error {
	recipient := "broadcast"
	if n.RecipientID != nil {
		recipient = n.RecipientID.String()
	}
	s.logger.Info("notification dispatched",
		zap.String("notification_id", n.ID.String()),
		zap.String("type", string(n.Type)),
		zap.String("channel", n.Channel),
		zap.String("recipient", recipient),
		zap.String("title", n.Title),
	)
	return nil
}

// NotificationService handles business logic for notifications
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	inventoryRepo    *repository.InventoryRepository
	sender           Sender
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	inventoryRepo *repository.InventoryRepository,
	sender Sender,
	logger *zap.Logger,
) *NotificationService {
	if sender == nil {
		sender = NewLogSender(logger)
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		inventoryRepo:    inventoryRepo,
		sender:           sender,
		logger:           logger,
	}
}

// Queue stores a pending in-app notification. A nil recipient broadcasts to every user.
// Failures are logged and swallowed so the caller's committed work is never undone.
func (s *NotificationService) Queue(ctx context.Context, notificationType domain.NotificationType, recipientID *uuid.UUID, title, message, entityType string, entityID *uuid.UUID) {
	if s == nil {
		return
	}
	notification := &domain.Notification{
		Type:        notificationType,
		RecipientID: recipientID,
		Channel:     domain.ChannelInApp,
		Title:       truncate(title, 200),
		Message:     truncate(message, 1000),
		Status:      domain.NotificationPending,
		EntityType:  entityType,
		EntityID:    entityID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to queue notification",
			zap.String("type", string(notificationType)),
			zap.String("entity_type", entityType),
			zap.Error(err),
		)
	}
}

// Create stores a notification written by an administrator
func (s *NotificationService) Create(ctx context.Context, req *domain.CreateNotificationRequest) (*domain.Notification, error) {
	if !req.Type.IsValid() {
		return nil, fieldError("type", "Must be one of the allowed values")
	}
	channel := req.Channel
	if channel == "" {
		channel = domain.ChannelInApp
	}

	notification := &domain.Notification{
		Type:        req.Type,
		RecipientID: req.RecipientID,
		Channel:     channel,
		Title:       req.Title,
		Message:     req.Message,
		Status:      domain.NotificationPending,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.logger.Info("notification created",
		zap.String("notification_id", notification.ID.String()),
		zap.String("type", string(notification.Type)),
	)
	return notification, nil
}

// List returns the caller's own and broadcast notifications. Admins see every notification.
func (s *NotificationService) List(ctx context.Context, filters *repository.NotificationFilters, opts repository.ListOptions) ([]domain.Notification, int64, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, 0, ErrUserContextMissing
	}
	if filters == nil {
		filters = &repository.NotificationFilters{}
	}
	if !userCtx.IsAdmin() {
		id := userCtx.UserID
		filters.RecipientID = &id
	}

	notifications, total, err := s.notificationRepo.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

// GetByID returns a notification visible to the caller
func (s *NotificationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextMissing
	}
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrNotificationNotFound, "notification")
	}
	if !userCtx.IsAdmin() && notification.RecipientID != nil && *notification.RecipientID != userCtx.UserID {
		return nil, ErrNotificationHidden
	}
	return notification, nil
}

// MarkRead stamps readAt on a notification visible to the caller
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	notification, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification.ReadAt == nil {
		now := time.Now().UTC()
		if err := s.notificationRepo.MarkAsRead(ctx, id, now); err != nil {
			return nil, fmt.Errorf("failed to mark notification as read: %w", err)
		}
		notification.ReadAt = &now
	}
	return notification, nil
}

func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.notificationRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// CountUnread counts unread notifications visible to the user
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// DispatchPending sends up to limit pending notifications and records the outcome of each.
// It returns how many were sent and how many failed.
func (s *NotificationService) DispatchPending(ctx context.Context, limit int) (int, int, error) {
	pending, err := s.notificationRepo.ListPending(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list pending notifications: %w", err)
	}

	var sent, failed int
	for i := range pending {
		if ctx.Err() != nil {
			return sent, failed, ctx.Err()
		}
		n := &pending[i]
		if err := s.sender.Send(ctx, n); err != nil {
			failed++
			s.logger.Warn("notification dispatch failed",
				zap.String("notification_id", n.ID.String()),
				zap.Error(err),
			)
			if markErr := s.notificationRepo.MarkFailed(ctx, n.ID, err.Error()); markErr != nil {
				return sent, failed, fmt.Errorf("failed to mark notification failed: %w", markErr)
			}
			continue
		}
		if err := s.notificationRepo.MarkSent(ctx, n.ID, time.Now().UTC()); err != nil {
			return sent, failed, fmt.Errorf("failed to mark notification sent: %w", err)
		}
		sent++
	}
	return sent, failed, nil
}

// QueueLowStockAlerts queues one LOW_STOCK broadcast per inventory row at or below
// its reorder point, skipping rows that already have a pending alert.
func (s *NotificationService) QueueLowStockAlerts(ctx context.Context) (int, error) {
	rows, err := s.inventoryRepo.ListLowStock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list low stock: %w", err)
	}

	queued := 0
	for i := range rows {
		inv := &rows[i]
		exists, err := s.notificationRepo.HasPendingForEntity(ctx, domain.NotificationLowStock, inv.ID)
		if err != nil {
			return queued, fmt.Errorf("failed to check pending alerts: %w", err)
		}
		if exists {
			continue
		}
		s.Queue(ctx, domain.NotificationLowStock, nil,
			lowStockTitle(inv),
			lowStockMessage(inv),
			"inventory", &inv.ID,
		)
		queued++
	}
	return queued, nil
}

func lowStockTitle(inv *domain.Inventory) string {
	if inv.Product != nil {
		return "Low stock: " + inv.Product.Name
	}
	return "Low stock"
}

func lowStockMessage(inv *domain.Inventory) string {
	warehouse := inv.WarehouseID.String()
	if inv.Warehouse != nil {
		warehouse = inv.Warehouse.Name
	}
	reorder := 0.0
	if inv.Product != nil {
		reorder = inv.Product.ReorderPoint
	}
	return fmt.Sprintf("%g units left in %s (reorder point %g)", inv.Quantity, warehouse, reorder)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
