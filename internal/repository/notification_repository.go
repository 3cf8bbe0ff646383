package repository

import (
	"context"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationFilters defines filter options for notification listing
type NotificationFilters struct {
	// RecipientID limits results to the user's own plus broadcast notifications
	RecipientID *uuid.UUID
	Type        *domain.NotificationType
	Status      *domain.NotificationStatus
	UnreadOnly  bool
}

var notificationSortableFields = map[string]string{
	"createdAt": "created_at",
	"type":      "type",
	"status":    "status",
	"sentAt":    "sent_at",
}

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var notification domain.Notification
	err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepository) List(ctx context.Context, filters *NotificationFilters, opts ListOptions) ([]domain.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Notification{})
	query = applySearch(query, opts.Search, "title", "message")
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil {
		if filters.RecipientID != nil {
			query = query.Where("(recipient_id = ? OR recipient_id IS NULL)", *filters.RecipientID)
		}
		if filters.Type != nil {
			query = query.Where("type = ?", *filters.Type)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.UnreadOnly {
			query = query.Where("read_at IS NULL")
		}
	}

	var notifications []domain.Notification
	total, err := paginate(query, opts, notificationSortableFields, "created_at", &notifications)
	return notifications, total, err
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at).Error
}

func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Notification{}, "id = ?", id).Error
}

// ListPending returns up to limit pending notifications, oldest first
func (r *NotificationRepository) ListPending(ctx context.Context, limit int) ([]domain.Notification, error) {
	var notifications []domain.Notification
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.NotificationPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkSent records a successful dispatch
func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": domain.NotificationSent, "sent_at": at, "error": ""}).Error
}

// MarkFailed records a failed dispatch with its error
func (r *NotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	if len(reason) > 500 {
		reason = reason[:500]
	}
	return r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": domain.NotificationFailed, "error": reason}).Error
}

// HasPendingForEntity reports whether a pending notification of type exists for the entity
func (r *NotificationRepository) HasPendingForEntity(ctx context.Context, notificationType domain.NotificationType, entityID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("type = ? AND entity_id = ? AND status = ?", notificationType, entityID, domain.NotificationPending).
		Count(&count).Error
	return count > 0, err
}

// CountUnread counts unread notifications visible to the user
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("(recipient_id = ? OR recipient_id IS NULL) AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
