package repository

import (
	"context"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilters defines filter options for recipe listing
type RecipeFilters struct {
	OutputProductID *uuid.UUID
	IsActive        *bool
}

var recipeSortableFields = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"name":          "name",
	"yieldQuantity": "yield_quantity",
	"bakeMinutes":   "bake_minutes",
}

type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *RecipeRepository) WithTx(tx *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: tx}
}

// Create inserts the recipe and its items
func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(recipe).Error; err != nil {
		return err
	}
	return r.createItems(ctx, recipe.ID, recipe.Items)
}

func (r *RecipeRepository) createItems(ctx context.Context, recipeID uuid.UUID, items []domain.RecipeItem) error {
	for i := range items {
		items[i].RecipeID = recipeID
		if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *RecipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.db.WithContext(ctx).
		Preload("OutputProduct").
		Preload("Items").
		Preload("Items.Product").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// LockByID loads the recipe row with SELECT ... FOR UPDATE
func (r *RecipeRepository) LockByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// GetByName returns the recipe with name, or nil when there is none
func (r *RecipeRepository) GetByName(ctx context.Context, name string) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&recipe).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *RecipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(recipe).Error
}

// ReplaceItems deletes every item of the recipe and inserts items
func (r *RecipeRepository) ReplaceItems(ctx context.Context, recipeID uuid.UUID, items []domain.RecipeItem) error {
	if err := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&domain.RecipeItem{}).Error; err != nil {
		return err
	}
	return r.createItems(ctx, recipeID, items)
}

// Delete removes the recipe and its items
func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&domain.RecipeItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Recipe{}, "id = ?", id).Error
	})
}

func (r *RecipeRepository) List(ctx context.Context, filters *RecipeFilters, opts ListOptions) ([]domain.Recipe, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Recipe{})
	query = applySearch(query, opts.Search, "name", "description")
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil {
		if filters.OutputProductID != nil {
			query = query.Where("output_product_id = ?", *filters.OutputProductID)
		}
		if filters.IsActive != nil {
			query = query.Where("is_active = ?", *filters.IsActive)
		}
	}

	var recipes []domain.Recipe
	total, err := paginate(query, opts, recipeSortableFields, "created_at", &recipes, "OutputProduct")
	return recipes, total, err
}

// CountProductions returns how many productions use the recipe
func (r *RecipeRepository) CountProductions(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Production{}).Where("recipe_id = ?", id).Count(&count).Error
	return count, err
}
