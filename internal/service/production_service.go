package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductionService plans and runs production batches
type ProductionService struct {
	db             *gorm.DB
	productionRepo *repository.ProductionRepository
	recipeRepo     *repository.RecipeRepository
	productRepo    *repository.ProductRepository
	warehouseRepo  *repository.WarehouseRepository
	inventoryRepo  *repository.InventoryRepository
	numbers        *NumberSequenceService
	notifications  *NotificationService
	logger         *zap.Logger
}

func NewProductionService(
	db *gorm.DB,
	productionRepo *repository.ProductionRepository,
	recipeRepo *repository.RecipeRepository,
	productRepo *repository.ProductRepository,
	warehouseRepo *repository.WarehouseRepository,
	inventoryRepo *repository.InventoryRepository,
	numbers *NumberSequenceService,
	notifications *NotificationService,
	logger *zap.Logger,
) *ProductionService {
	return &ProductionService{
		db:             db,
		productionRepo: productionRepo,
		recipeRepo:     recipeRepo,
		productRepo:    productRepo,
		warehouseRepo:  warehouseRepo,
		inventoryRepo:  inventoryRepo,
		numbers:        numbers,
		notifications:  notifications,
		logger:         logger,
	}
}

// Create plans a batch. Without explicit items the recipe's ingredients are
// scaled to the planned quantity.
func (s *ProductionService) Create(ctx context.Context, req *domain.CreateProductionRequest) (*domain.Production, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, req.RecipeID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fieldError("recipeId", "Recipe does not exist")
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if !recipe.IsActive {
		return nil, fieldError("recipeId", "Recipe is not active")
	}
	if err := s.checkWarehouse(ctx, req.WarehouseID); err != nil {
		return nil, err
	}

	var items []domain.ProductionItem
	if len(req.Items) > 0 {
		if items, err = s.buildItems(ctx, req.Items); err != nil {
			return nil, err
		}
	} else {
		items = scaleRecipe(recipe, req.PlannedQuantity)
	}

	number, err := s.numbers.Generate(ctx, PrefixProduction)
	if err != nil {
		return nil, err
	}

	production := &domain.Production{
		BatchNumber:     number,
		RecipeID:        recipe.ID,
		WarehouseID:     req.WarehouseID,
		PlannedQuantity: req.PlannedQuantity,
		Status:          domain.ProductionPlanned,
		StartDate:       req.StartDate,
		Notes:           req.Notes,
		Items:           items,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.productionRepo.WithTx(tx).Create(ctx, production)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create production: %w", err)
	}

	s.logger.Info("production planned",
		zap.String("production_id", production.ID.String()),
		zap.String("batch_number", number),
		zap.Float64("planned_quantity", req.PlannedQuantity),
	)
	return s.GetByID(ctx, production.ID)
}

func (s *ProductionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Production, error) {
	production, err := s.productionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrProductionNotFound, "production")
	}
	return production, nil
}

// Update edits a planned or paused batch
func (s *ProductionService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProductionRequest) (*domain.Production, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkWarehouse(ctx, req.WarehouseID); err != nil {
		return nil, err
	}
	var items []domain.ProductionItem
	if req.Items != nil {
		var err error
		if items, err = s.buildItems(ctx, *req.Items); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productionRepo.WithTx(tx)
		production, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if production.Status != domain.ProductionPlanned && production.Status != domain.ProductionOnHold {
			return ErrProductionNotEditable
		}

		if req.WarehouseID != nil {
			production.WarehouseID = req.WarehouseID
		}
		if req.PlannedQuantity != nil {
			production.PlannedQuantity = *req.PlannedQuantity
		}
		if req.StartDate != nil {
			production.StartDate = req.StartDate
		}
		if req.Notes != nil {
			production.Notes = *req.Notes
		}
		if err := repo.Update(ctx, production); err != nil {
			return err
		}
		if req.Items != nil {
			return repo.ReplaceItems(ctx, id, items)
		}
		return nil
	})
	if err != nil {
		return nil, productionMutationError(err)
	}
	return s.GetByID(ctx, id)
}

// UpdateStatus moves the batch along the production transition table. Completing a
// batch records its actual quantity and books the recipe's output product into the
// batch warehouse in the same transaction.
func (s *ProductionService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateProductionStatusRequest) (*domain.Production, error) {
	if !req.Status.IsValid() {
		return nil, fieldError("status", "Must be one of the allowed values")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var previous domain.ProductionStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productionRepo.WithTx(tx)
		production, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		previous = production.Status
		if !production.Status.CanTransitionTo(req.Status) {
			return transitionError("production", production.Status, req.Status)
		}
		if production.Status == req.Status {
			return nil
		}

		now := time.Now().UTC()
		production.Status = req.Status
		switch req.Status {
		case domain.ProductionInProgress:
			if production.StartDate == nil {
				production.StartDate = &now
			}
		case domain.ProductionCompleted:
			actual := production.PlannedQuantity
			if req.ActualQuantity != nil {
				actual = *req.ActualQuantity
			}
			production.ActualQuantity = &actual
			production.EndDate = &now
			if err := s.bookOutput(ctx, tx, production, actual); err != nil {
				return err
			}
		}
		return repo.Update(ctx, production)
	})
	if err != nil {
		return nil, productionMutationError(err)
	}

	if previous != req.Status {
		s.logger.Info("production status changed",
			zap.String("production_id", id.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(req.Status)),
		)
		s.notifications.Queue(ctx, domain.NotificationProductionStatus, nil,
			"Production status changed",
			fmt.Sprintf("Production batch moved from %s to %s", previous, req.Status),
			"production", &id,
		)
	}
	return s.GetByID(ctx, id)
}

// bookOutput adds the batch output to stock. Batches without a warehouse or a
// recipe output product leave stock untouched.
func (s *ProductionService) bookOutput(ctx context.Context, tx *gorm.DB, production *domain.Production, quantity float64) error {
	if production.WarehouseID == nil || quantity <= 0 {
		return nil
	}
	recipe, err := s.recipeRepo.WithTx(tx).GetByID(ctx, production.RecipeID)
	if err != nil {
		return err
	}
	if recipe.OutputProductID == nil {
		s.logger.Warn("completed production has no output product",
			zap.String("production_id", production.ID.String()),
			zap.String("recipe_id", recipe.ID.String()),
		)
		return nil
	}

	invRepo := s.inventoryRepo.WithTx(tx)
	inv, _, err := invRepo.LockOrCreate(ctx, *recipe.OutputProductID, *production.WarehouseID)
	if err != nil {
		return err
	}
	_, err = invRepo.ApplyMovement(ctx, inv, domain.MovementProductionIn, quantity,
		movementInfo(ctx, production.BatchNumber, "Production completed"))
	return err
}

// Delete removes a batch that is not in progress
func (s *ProductionService) Delete(ctx context.Context, id uuid.UUID) error {
	production, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if production.Status == domain.ProductionInProgress {
		return ErrProductionInProgress
	}
	if err := s.productionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete production: %w", err)
	}
	s.logger.Info("production deleted", zap.String("production_id", id.String()))
	return nil
}

func (s *ProductionService) List(ctx context.Context, filters *repository.ProductionFilters, opts repository.ListOptions) ([]domain.Production, int64, error) {
	productions, total, err := s.productionRepo.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list productions: %w", err)
	}
	return productions, total, nil
}

func (s *ProductionService) checkWarehouse(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.warehouseRepo.GetByID(ctx, *id); err != nil {
		if repository.IsNotFound(err) {
			return fieldError("warehouseId", "Warehouse does not exist")
		}
		return fmt.Errorf("failed to get warehouse: %w", err)
	}
	return nil
}

func (s *ProductionService) buildItems(ctx context.Context, reqs []domain.ProductionItemRequest) ([]domain.ProductionItem, error) {
	ids := make([]uuid.UUID, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	items := make([]domain.ProductionItem, 0, len(reqs))
	for i, r := range reqs {
		if _, ok := products[r.ProductID]; !ok {
			return nil, fieldError(fmt.Sprintf("items[%d].productId", i), "Product does not exist")
		}
		items = append(items, domain.ProductionItem{
			ProductID:       r.ProductID,
			PlannedQuantity: r.PlannedQuantity,
			ActualQuantity:  r.ActualQuantity,
		})
	}
	return items, nil
}

// scaleRecipe turns recipe ingredients into production lines for planned units of output
func scaleRecipe(recipe *domain.Recipe, planned float64) []domain.ProductionItem {
	factor := 1.0
	if recipe.YieldQuantity > 0 {
		factor = planned / recipe.YieldQuantity
	}
	items := make([]domain.ProductionItem, 0, len(recipe.Items))
	for _, ingredient := range recipe.Items {
		items = append(items, domain.ProductionItem{
			ProductID:       ingredient.ProductID,
			PlannedQuantity: ingredient.Quantity * factor,
		})
	}
	return items
}

func productionMutationError(err error) error {
	if repository.IsNotFound(err) {
		return ErrProductionNotFound
	}
	var transition *TransitionError
	if errors.As(err, &transition) || errors.Is(err, ErrProductionNotEditable) {
		return err
	}
	if isStockError(err) {
		return stockError(err)
	}
	return fmt.Errorf("failed to update production: %w", err)
}
