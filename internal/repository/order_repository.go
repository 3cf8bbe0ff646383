package repository

import (
	"context"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilters defines filter options for order listing
type OrderFilters struct {
	CustomerID    *uuid.UUID
	Status        *domain.OrderStatus
	PaymentStatus *domain.PaymentStatus
	Channel       *domain.OrderChannel
}

var orderSortableFields = map[string]string{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"orderNumber":  "order_number",
	"status":       "status",
	"totalAmount":  "total_amount",
	"deliveryDate": "delivery_date",
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// Create inserts the order and its items
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	return r.createItems(ctx, order.ID, order.Items)
}

func (r *OrderRepository) createItems(ctx context.Context, orderID uuid.UUID, items []domain.OrderItem) error {
	for i := range items {
		items[i].OrderID = orderID
		if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID loads an order with customer and items
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		Preload("Items.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// LockByID loads the order row with SELECT ... FOR UPDATE
func (r *OrderRepository) LockByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

// ReplaceItems deletes every line of the order and inserts items
func (r *OrderRepository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []domain.OrderItem) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&domain.OrderItem{}).Error; err != nil {
		return err
	}
	return r.createItems(ctx, orderID, items)
}

// Delete removes the order and its items
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Order{}, "id = ?", id).Error
	})
}

func (r *OrderRepository) List(ctx context.Context, filters *OrderFilters, opts ListOptions) ([]domain.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Order{})
	query = applySearch(query, opts.Search, "order_number", "notes")
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil {
		if filters.CustomerID != nil {
			query = query.Where("customer_id = ?", *filters.CustomerID)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.PaymentStatus != nil {
			query = query.Where("payment_status = ?", *filters.PaymentStatus)
		}
		if filters.Channel != nil {
			query = query.Where("channel = ?", *filters.Channel)
		}
	}

	var orders []domain.Order
	total, err := paginate(query, opts, orderSortableFields, "created_at", &orders, "Customer")
	return orders, total, err
}

// ListCreatedBetween returns orders created in [start, end) with their items, for reporting
func (r *OrderRepository) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

// CountByStatus counts orders in any of statuses
func (r *OrderRepository) CountByStatus(ctx context.Context, statuses ...domain.OrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("status IN ?", statuses).Count(&count).Error
	return count, err
}

// CountDeliveries returns how many deliveries reference the order
func (r *OrderRepository) CountDeliveries(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Delivery{}).Where("order_id = ?", id).Count(&count).Error
	return count, err
}
