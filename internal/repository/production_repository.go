package repository

import (
	"context"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductionFilters defines filter options for production listing
type ProductionFilters struct {
	RecipeID    *uuid.UUID
	WarehouseID *uuid.UUID
	Status      *domain.ProductionStatus
}

var productionSortableFields = map[string]string{
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"batchNumber":     "batch_number",
	"status":          "status",
	"startDate":       "start_date",
	"plannedQuantity": "planned_quantity",
}

type ProductionRepository struct {
	db *gorm.DB
}

func NewProductionRepository(db *gorm.DB) *ProductionRepository {
	return &ProductionRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ProductionRepository) WithTx(tx *gorm.DB) *ProductionRepository {
	return &ProductionRepository{db: tx}
}

// Create inserts the production and its items
func (r *ProductionRepository) Create(ctx context.Context, production *domain.Production) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(production).Error; err != nil {
		return err
	}
	return r.createItems(ctx, production.ID, production.Items)
}

func (r *ProductionRepository) createItems(ctx context.Context, productionID uuid.UUID, items []domain.ProductionItem) error {
	for i := range items {
		items[i].ProductionID = productionID
		if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *ProductionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Production, error) {
	var production domain.Production
	err := r.db.WithContext(ctx).
		Preload("Recipe").
		Preload("Items").
		Preload("Items.Product").
		First(&production, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &production, nil
}

// LockByID loads the production row with SELECT ... FOR UPDATE
func (r *ProductionRepository) LockByID(ctx context.Context, id uuid.UUID) (*domain.Production, error) {
	var production domain.Production
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&production, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &production, nil
}

func (r *ProductionRepository) Update(ctx context.Context, production *domain.Production) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(production).Error
}

// ReplaceItems deletes every item of the production and inserts items
func (r *ProductionRepository) ReplaceItems(ctx context.Context, productionID uuid.UUID, items []domain.ProductionItem) error {
	if err := r.db.WithContext(ctx).Where("production_id = ?", productionID).Delete(&domain.ProductionItem{}).Error; err != nil {
		return err
	}
	return r.createItems(ctx, productionID, items)
}

// Delete removes the production and its items
func (r *ProductionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("production_id = ?", id).Delete(&domain.ProductionItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Production{}, "id = ?", id).Error
	})
}

func (r *ProductionRepository) List(ctx context.Context, filters *ProductionFilters, opts ListOptions) ([]domain.Production, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Production{})
	query = applySearch(query, opts.Search, "batch_number", "notes")
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil {
		if filters.RecipeID != nil {
			query = query.Where("recipe_id = ?", *filters.RecipeID)
		}
		if filters.WarehouseID != nil {
			query = query.Where("warehouse_id = ?", *filters.WarehouseID)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
	}

	var productions []domain.Production
	total, err := paginate(query, opts, productionSortableFields, "created_at", &productions, "Recipe")
	return productions, total, err
}

// ListCreatedBetween returns productions created in [start, end), for reporting
func (r *ProductionRepository) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]domain.Production, error) {
	var productions []domain.Production
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&productions).Error
	return productions, err
}

// CountByStatus counts productions in any of statuses
func (r *ProductionRepository) CountByStatus(ctx context.Context, statuses ...domain.ProductionStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Production{}).Where("status IN ?", statuses).Count(&count).Error
	return count, err
}
