package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecipeService handles recipes and their ingredient lines
type RecipeService struct {
	db          *gorm.DB
	recipeRepo  *repository.RecipeRepository
	productRepo *repository.ProductRepository
	logger      *zap.Logger
}

func NewRecipeService(db *gorm.DB, recipeRepo *repository.RecipeRepository, productRepo *repository.ProductRepository, logger *zap.Logger) *RecipeService {
	return &RecipeService{
		db:          db,
		recipeRepo:  recipeRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *RecipeService) Create(ctx context.Context, req *domain.CreateRecipeRequest) (*domain.Recipe, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}
	if req.OutputProductID != nil {
		if _, err := s.productRepo.GetByID(ctx, *req.OutputProductID); err != nil {
			if repository.IsNotFound(err) {
				return nil, fieldError("outputProductId", "Product does not exist")
			}
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
	}
	items, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	recipe := &domain.Recipe{
		Name:            name,
		Description:     req.Description,
		OutputProductID: req.OutputProductID,
		YieldQuantity:   req.YieldQuantity,
		PrepMinutes:     req.PrepMinutes,
		BakeMinutes:     req.BakeMinutes,
		Instructions:    req.Instructions,
		IsActive:        true,
		Items:           items,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.recipeRepo.WithTx(tx).Create(ctx, recipe)
	})
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrDuplicateRecipeName
		}
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	s.logger.Info("recipe created", zap.String("recipe_id", recipe.ID.String()))
	return s.GetByID(ctx, recipe.ID)
}

func (s *RecipeService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrRecipeNotFound, "recipe")
	}
	return recipe, nil
}

// Update applies the non-nil fields of req. A non-nil Items replaces every ingredient
// line inside the same transaction as the recipe row, which stays locked throughout.
func (s *RecipeService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateRecipeRequest) (*domain.Recipe, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := s.ensureNameFree(ctx, strings.TrimSpace(*req.Name), id); err != nil {
			return nil, err
		}
	}
	if req.OutputProductID != nil {
		if _, err := s.productRepo.GetByID(ctx, *req.OutputProductID); err != nil {
			if repository.IsNotFound(err) {
				return nil, fieldError("outputProductId", "Product does not exist")
			}
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
	}
	var items []domain.RecipeItem
	if req.Items != nil {
		var err error
		if items, err = s.buildItems(ctx, *req.Items); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.recipeRepo.WithTx(tx)
		recipe, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			recipe.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			recipe.Description = *req.Description
		}
		if req.OutputProductID != nil {
			recipe.OutputProductID = req.OutputProductID
		}
		if req.YieldQuantity != nil {
			recipe.YieldQuantity = *req.YieldQuantity
		}
		if req.PrepMinutes != nil {
			recipe.PrepMinutes = *req.PrepMinutes
		}
		if req.BakeMinutes != nil {
			recipe.BakeMinutes = *req.BakeMinutes
		}
		if req.Instructions != nil {
			recipe.Instructions = *req.Instructions
		}

		if err := repo.Update(ctx, recipe); err != nil {
			return err
		}
		if req.Items != nil {
			return repo.ReplaceItems(ctx, id, items)
		}
		return nil
	})
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrDuplicateRecipeName
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *RecipeService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Recipe, error) {
	recipe, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	recipe.IsActive = active
	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return recipe, nil
}

// Delete removes a recipe that no production references
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.recipeRepo.CountProductions(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count productions: %w", err)
	}
	if count > 0 {
		return ErrRecipeInUse
	}
	if err := s.recipeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	s.logger.Info("recipe deleted", zap.String("recipe_id", id.String()))
	return nil
}

func (s *RecipeService) List(ctx context.Context, filters *repository.RecipeFilters, opts repository.ListOptions) ([]domain.Recipe, int64, error) {
	recipes, total, err := s.recipeRepo.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

func (s *RecipeService) buildItems(ctx context.Context, reqs []domain.RecipeItemRequest) ([]domain.RecipeItem, error) {
	ids := make([]uuid.UUID, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}

	items := make([]domain.RecipeItem, 0, len(reqs))
	for i, r := range reqs {
		product, ok := products[r.ProductID]
		if !ok {
			return nil, fieldError(fmt.Sprintf("items[%d].productId", i), "Product does not exist")
		}
		unit := r.Unit
		if unit == "" {
			unit = product.Unit
		}
		if !unit.IsValid() {
			return nil, fieldError(fmt.Sprintf("items[%d].unit", i), "Must be one of the allowed values")
		}
		items = append(items, domain.RecipeItem{
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			Unit:      unit,
		})
	}
	return items, nil
}

func (s *RecipeService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.recipeRepo.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check recipe name: %w", err)
	}
	if existing != nil && existing.ID != self {
		return ErrDuplicateRecipeName
	}
	return nil
}
