package repository

import (
	"context"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseOrderFilters defines filter options for purchase order listing
type PurchaseOrderFilters struct {
	SupplierID  *uuid.UUID
	WarehouseID *uuid.UUID
	Status      *domain.PurchaseOrderStatus
}

var purchaseOrderSortableFields = map[string]string{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"poNumber":     "po_number",
	"status":       "status",
	"orderDate":    "order_date",
	"expectedDate": "expected_date",
	"totalAmount":  "total_amount",
}

type PurchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *PurchaseOrderRepository) WithTx(tx *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: tx}
}

// Create inserts the purchase order and its items
func (r *PurchaseOrderRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(po).Error; err != nil {
		return err
	}
	return r.createItems(ctx, po.ID, po.Items)
}

func (r *PurchaseOrderRepository) createItems(ctx context.Context, poID uuid.UUID, items []domain.PurchaseOrderItem) error {
	for i := range items {
		items[i].PurchaseOrderID = poID
		if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Items").
		Preload("Items.Product").
		First(&po, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// LockByID loads the purchase order row with SELECT ... FOR UPDATE, plus its items
func (r *PurchaseOrderRepository) LockByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&po, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("purchase_order_id = ?", id).Find(&po.Items).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *PurchaseOrderRepository) Update(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(po).Error
}

// ReplaceItems deletes every line of the purchase order and inserts items
func (r *PurchaseOrderRepository) ReplaceItems(ctx context.Context, poID uuid.UUID, items []domain.PurchaseOrderItem) error {
	if err := r.db.WithContext(ctx).Where("purchase_order_id = ?", poID).Delete(&domain.PurchaseOrderItem{}).Error; err != nil {
		return err
	}
	return r.createItems(ctx, poID, items)
}

// Delete removes the purchase order and its items
func (r *PurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", id).Delete(&domain.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.PurchaseOrder{}, "id = ?", id).Error
	})
}

func (r *PurchaseOrderRepository) List(ctx context.Context, filters *PurchaseOrderFilters, opts ListOptions) ([]domain.PurchaseOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{})
	query = applySearch(query, opts.Search, "po_number", "notes")
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil {
		if filters.SupplierID != nil {
			query = query.Where("supplier_id = ?", *filters.SupplierID)
		}
		if filters.WarehouseID != nil {
			query = query.Where("warehouse_id = ?", *filters.WarehouseID)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
	}

	var orders []domain.PurchaseOrder
	total, err := paginate(query, opts, purchaseOrderSortableFields, "created_at", &orders, "Supplier")
	return orders, total, err
}
