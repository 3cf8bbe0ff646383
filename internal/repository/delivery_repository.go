package repository

import (
	"context"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryFilters defines filter options for delivery listing
type DeliveryFilters struct {
	OrderID      *uuid.UUID
	AssignedToID *uuid.UUID
	Status       *domain.DeliveryStatus
	// ScheduledOn keeps deliveries scheduled on the given UTC day
	ScheduledOn *time.Time
}

var deliverySortableFields = map[string]string{
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
	"deliveryNumber": "delivery_number",
	"status":         "status",
	"scheduledDate":  "scheduled_date",
}

type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *DeliveryRepository) WithTx(tx *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: tx}
}

func (r *DeliveryRepository) Create(ctx context.Context, delivery *domain.Delivery) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(delivery).Error
}

// GetByID loads a delivery with its order and location
func (r *DeliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	var delivery domain.Delivery
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("CustomerLocation").
		First(&delivery, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// LockByID loads the delivery row with SELECT ... FOR UPDATE
func (r *DeliveryRepository) LockByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	var delivery domain.Delivery
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&delivery, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *DeliveryRepository) Update(ctx context.Context, delivery *domain.Delivery) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(delivery).Error
}

func (r *DeliveryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Delivery{}, "id = ?", id).Error
}

func (r *DeliveryRepository) List(ctx context.Context, filters *DeliveryFilters, opts ListOptions) ([]domain.Delivery, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Delivery{})
	query = applySearch(query, opts.Search, "delivery_number", "driver_name", "tracking_number", "carrier")
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil {
		if filters.OrderID != nil {
			query = query.Where("order_id = ?", *filters.OrderID)
		}
		if filters.AssignedToID != nil {
			query = query.Where("assigned_to_id = ?", *filters.AssignedToID)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.ScheduledOn != nil {
			start, end, _ := domain.DateRangeToday.Bounds(*filters.ScheduledOn)
			query = query.Where("scheduled_date >= ? AND scheduled_date < ?", start, end)
		}
	}

	var deliveries []domain.Delivery
	total, err := paginate(query, opts, deliverySortableFields, "created_at", &deliveries, "Order")
	return deliveries, total, err
}

// ListCreatedBetween returns deliveries created in [start, end), for reporting
func (r *DeliveryRepository) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]domain.Delivery, error) {
	var deliveries []domain.Delivery
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&deliveries).Error
	return deliveries, err
}

// CountScheduledBetween counts deliveries scheduled in [start, end)
func (r *DeliveryRepository) CountScheduledBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Delivery{}).
		Where("scheduled_date >= ? AND scheduled_date < ?", start, end).
		Count(&count).Error
	return count, err
}
