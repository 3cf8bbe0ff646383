package repository

import (
	"context"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierFilters defines filter options for supplier listing
type SupplierFilters struct {
	IsActive *bool
}

// supplierSortableFields maps API field names to database column names for suppliers.
// Only fields in this map can be used for sorting (whitelist approach)
var supplierSortableFields = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"name":        "name",
	"contactName": "contact_name",
	"email":       "email",
}

// SupplierRepository handles supplier data access operations
type SupplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository creates a new supplier repository instance
func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *SupplierRepository) WithTx(tx *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: tx}
}

// Create creates a new supplier in the database
func (r *SupplierRepository) Create(ctx context.Context, supplier *domain.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

// GetByID retrieves a supplier by its ID
func (r *SupplierRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Update updates an existing supplier in the database
func (r *SupplierRepository) Update(ctx context.Context, supplier *domain.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

// Delete removes a supplier
func (r *SupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Supplier{}, "id = ?", id).Error
}

// List returns a paginated list of suppliers with filter and sort options
func (r *SupplierRepository) List(ctx context.Context, filters *SupplierFilters, opts ListOptions) ([]domain.Supplier, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Supplier{})
	query = applySearch(query, opts.Search, "name", "contact_name", "email")
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil && filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	var suppliers []domain.Supplier
	total, err := paginate(query, opts, supplierSortableFields, "created_at", &suppliers)
	return suppliers, total, err
}

// CountPurchaseOrders returns how many purchase orders reference the supplier
func (r *SupplierRepository) CountPurchaseOrders(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{}).Where("supplier_id = ?", id).Count(&count).Error
	return count, err
}
