package repository

import (
	"context"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WarehouseFilters defines filter options for warehouse listing
type WarehouseFilters struct {
	City     string
	IsActive *bool
}

var warehouseSortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"code":      "code",
	"city":      "city",
	"capacity":  "capacity",
}

type WarehouseRepository struct {
	db *gorm.DB
}

func NewWarehouseRepository(db *gorm.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *WarehouseRepository) WithTx(tx *gorm.DB) *WarehouseRepository {
	return &WarehouseRepository{db: tx}
}

func (r *WarehouseRepository) Create(ctx context.Context, warehouse *domain.Warehouse) error {
	return r.db.WithContext(ctx).Create(warehouse).Error
}

func (r *WarehouseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Warehouse, error) {
	var warehouse domain.Warehouse
	if err := r.db.WithContext(ctx).First(&warehouse, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

// GetByCode returns the warehouse with code, or nil when there is none
func (r *WarehouseRepository) GetByCode(ctx context.Context, code string) (*domain.Warehouse, error) {
	var warehouse domain.Warehouse
	err := r.db.WithContext(ctx).Where("LOWER(code) = LOWER(?)", code).First(&warehouse).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

func (r *WarehouseRepository) Update(ctx context.Context, warehouse *domain.Warehouse) error {
	return r.db.WithContext(ctx).Save(warehouse).Error
}

func (r *WarehouseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Warehouse{}, "id = ?", id).Error
}

func (r *WarehouseRepository) List(ctx context.Context, filters *WarehouseFilters, opts ListOptions) ([]domain.Warehouse, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Warehouse{})
	query = applySearch(query, opts.Search, "name", "code", "city")
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil {
		if filters.City != "" {
			query = query.Where("LOWER(city) = LOWER(?)", filters.City)
		}
		if filters.IsActive != nil {
			query = query.Where("is_active = ?", *filters.IsActive)
		}
	}

	var warehouses []domain.Warehouse
	total, err := paginate(query, opts, warehouseSortableFields, "created_at", &warehouses)
	return warehouses, total, err
}

// WarehouseDependents counts the rows that keep a warehouse from being deleted
type WarehouseDependents struct {
	Inventory      int64
	PurchaseOrders int64
	Productions    int64
}

// CountDependents counts inventory rows, purchase orders and production batches in the warehouse
func (r *WarehouseRepository) CountDependents(ctx context.Context, id uuid.UUID) (*WarehouseDependents, error) {
	deps := &WarehouseDependents{}
	if err := r.db.WithContext(ctx).Model(&domain.Inventory{}).Where("warehouse_id = ?", id).Count(&deps.Inventory).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{}).Where("warehouse_id = ?", id).Count(&deps.PurchaseOrders).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&domain.Production{}).Where("warehouse_id = ?", id).Count(&deps.Productions).Error; err != nil {
		return nil, err
	}
	return deps, nil
}
