package repository

import (
	"context"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilters defines filter options for product listing
type ProductFilters struct {
	Category *domain.ProductCategory
	IsActive *bool
	IsPublic *bool
}

var productSortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"sku":       "sku",
	"category":  "category",
	"price":     "price",
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetBySKU returns the product with sku, or nil when there is none
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Where("LOWER(sku) = LOWER(?)", sku).First(&product).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByIDs loads products keyed by id
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error) {
	result := make(map[uuid.UUID]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var products []domain.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id).Error
}

func (r *ProductRepository) List(ctx context.Context, filters *ProductFilters, opts ListOptions) ([]domain.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Product{})
	query = applySearch(query, opts.Search, "name", "sku", "description")
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil {
		if filters.Category != nil {
			query = query.Where("category = ?", *filters.Category)
		}
		if filters.IsActive != nil {
			query = query.Where("is_active = ?", *filters.IsActive)
		}
		if filters.IsPublic != nil {
			query = query.Where("is_public = ?", *filters.IsPublic)
		}
	}

	var products []domain.Product
	total, err := paginate(query, opts, productSortableFields, "created_at", &products)
	return products, total, err
}

// ProductDependents counts the rows that keep a product from being deleted
type ProductDependents struct {
	Inventory          int64
	OrderItems         int64
	RecipeItems        int64
	ProductionItems    int64
	PurchaseOrderItems int64
}

// Any reports whether anything still references the product
func (d *ProductDependents) Any() bool {
	return d.Inventory+d.OrderItems+d.RecipeItems+d.ProductionItems+d.PurchaseOrderItems > 0
}

// CountDependents counts every row holding a foreign key to the product
func (r *ProductRepository) CountDependents(ctx context.Context, id uuid.UUID) (*ProductDependents, error) {
	deps := &ProductDependents{}
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&domain.Inventory{}, &deps.Inventory},
		{&domain.OrderItem{}, &deps.OrderItems},
		{&domain.RecipeItem{}, &deps.RecipeItems},
		{&domain.ProductionItem{}, &deps.ProductionItems},
		{&domain.PurchaseOrderItem{}, &deps.PurchaseOrderItems},
	}
	for _, c := range counts {
		if err := r.db.WithContext(ctx).Model(c.model).Where("product_id = ?", id).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return deps, nil
}
