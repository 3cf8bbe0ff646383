package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var adjustableMovements = map[domain.MovementType]bool{
	domain.MovementAdjustment: true,
	domain.MovementIn:         true,
	domain.MovementOut:        true,
	domain.MovementWaste:      true,
	domain.MovementReturn:     true,
}

// InventoryService owns every stock mutation. Quantities only change through
// InventoryRepository.ApplyMovement, so each change leaves a movement behind.
type InventoryService struct {
	db            *gorm.DB
	inventoryRepo *repository.InventoryRepository
	productRepo   *repository.ProductRepository
	warehouseRepo *repository.WarehouseRepository
	notifications *NotificationService
	logger        *zap.Logger
}

func NewInventoryService(
	db *gorm.DB,
	inventoryRepo *repository.InventoryRepository,
	productRepo *repository.ProductRepository,
	warehouseRepo *repository.WarehouseRepository,
	notifications *NotificationService,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		db:            db,
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		notifications: notifications,
		logger:        logger,
	}
}

// Create opens an inventory row for a product in a warehouse. A non-zero opening
// quantity is recorded as an IN movement.
func (s *InventoryService) Create(ctx context.Context, req *domain.CreateInventoryRequest) (*domain.Inventory, error) {
	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		if repository.IsNotFound(err) {
			return nil, fieldError("productId", "Product does not exist")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if _, err := s.warehouseRepo.GetByID(ctx, req.WarehouseID); err != nil {
		if repository.IsNotFound(err) {
			return nil, fieldError("warehouseId", "Warehouse does not exist")
		}
		return nil, fmt.Errorf("failed to get warehouse: %w", err)
	}
	if req.ReservedQuantity > req.Quantity {
		return nil, fieldError("reservedQuantity", "must not exceed quantity")
	}

	existing, err := s.inventoryRepo.GetByProductAndWarehouse(ctx, req.ProductID, req.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check inventory: %w", err)
	}
	if existing != nil {
		return nil, ErrInventoryExists
	}

	inventory := &domain.Inventory{
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		BatchNumber: req.BatchNumber,
		Location:    req.Location,
		ExpiryDate:  req.ExpiryDate,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.inventoryRepo.WithTx(tx)
		if err := repo.Create(ctx, inventory); err != nil {
			return err
		}
		if req.Quantity > 0 {
			if _, err := repo.ApplyMovement(ctx, inventory, domain.MovementIn, req.Quantity, movementInfo(ctx, "", req.Notes)); err != nil {
				return err
			}
		}
		if req.ReservedQuantity > 0 {
			return repo.Reserve(ctx, inventory, req.ReservedQuantity)
		}
		return nil
	})
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrInventoryExists
		}
		return nil, s.mutationError("create", err)
	}

	s.logger.Info("inventory created",
		zap.String("inventory_id", inventory.ID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.String("warehouse_id", req.WarehouseID.String()),
		zap.Float64("quantity", req.Quantity),
	)
	return s.GetByID(ctx, inventory.ID)
}

func (s *InventoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Inventory, error) {
	inventory, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrInventoryNotFound, "inventory")
	}
	return inventory, nil
}

// Update edits metadata. A changed quantity becomes an ADJUSTMENT movement and a
// changed reserved quantity goes through the guarded reserve or release.
func (s *InventoryService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateInventoryRequest) (*domain.Inventory, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.inventoryRepo.WithTx(tx)
		inv, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}

		if req.BatchNumber != nil {
			inv.BatchNumber = *req.BatchNumber
		}
		if req.Location != nil {
			inv.Location = *req.Location
		}
		if req.ExpiryDate != nil {
			inv.ExpiryDate = req.ExpiryDate
		}
		if err := repo.Update(ctx, inv); err != nil {
			return err
		}

		if req.ReservedQuantity != nil && *req.ReservedQuantity < inv.ReservedQuantity {
			if err := repo.Release(ctx, inv, inv.ReservedQuantity-*req.ReservedQuantity); err != nil {
				return err
			}
		}
		if req.Quantity != nil && *req.Quantity != inv.Quantity {
			delta := *req.Quantity - inv.Quantity
			if _, err := repo.ApplyMovement(ctx, inv, domain.MovementAdjustment, delta, movementInfo(ctx, "", req.Notes)); err != nil {
				return err
			}
		}
		if req.ReservedQuantity != nil && *req.ReservedQuantity > inv.ReservedQuantity {
			return repo.Reserve(ctx, inv, *req.ReservedQuantity-inv.ReservedQuantity)
		}
		return nil
	})
	if err != nil {
		return nil, s.mutationError("update", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes an empty row that never recorded a movement. Rows with history
// stay so the movement log remains complete.
func (s *InventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.inventoryRepo.WithTx(tx)
		inv, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if inv.ReservedQuantity > 0 {
			return ErrInventoryReserved
		}
		if inv.Quantity > 0 {
			return ErrInventoryNotEmpty
		}
		movements, err := repo.CountMovements(ctx, id)
		if err != nil {
			return err
		}
		if movements > 0 {
			return ErrInventoryHasMovements
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return err
		}
		return s.mutationError("delete", err)
	}

	s.logger.Info("inventory deleted", zap.String("inventory_id", id.String()))
	return nil
}

func (s *InventoryService) List(ctx context.Context, filters *repository.InventoryFilters, opts repository.ListOptions) ([]domain.Inventory, int64, error) {
	rows, total, err := s.inventoryRepo.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list inventory: %w", err)
	}
	return rows, total, nil
}

// Transfer moves quantity of the source row's product into the destination warehouse.
// Either both rows and both movements are written, or nothing is.
func (s *InventoryService) Transfer(ctx context.Context, req *domain.TransferInventoryRequest) (*domain.TransferResult, error) {
	if req.Quantity <= 0 {
		return nil, fieldError("quantity", "must be greater than 0")
	}
	source, err := s.GetByID(ctx, req.SourceInventoryID)
	if err != nil {
		return nil, err
	}
	if source.WarehouseID == req.DestinationWarehouseID {
		return nil, stockError(repository.ErrSameWarehouse)
	}
	if _, err := s.warehouseRepo.GetByID(ctx, req.DestinationWarehouseID); err != nil {
		if repository.IsNotFound(err) {
			return nil, fieldError("destinationWarehouseId", "Warehouse does not exist")
		}
		return nil, fmt.Errorf("failed to get warehouse: %w", err)
	}

	outcome, err := s.inventoryRepo.Transfer(ctx, repository.TransferParams{
		SourceInventoryID:      req.SourceInventoryID,
		DestinationWarehouseID: req.DestinationWarehouseID,
		Quantity:               req.Quantity,
		Info:                   movementInfo(ctx, "TRANSFER-"+req.SourceInventoryID.String()[:8], req.Notes),
	})
	if err != nil {
		return nil, s.mutationError("transfer", err)
	}

	s.logger.Info("inventory transferred",
		zap.String("source_inventory_id", outcome.Source.ID.String()),
		zap.String("destination_inventory_id", outcome.Destination.ID.String()),
		zap.Float64("quantity", req.Quantity),
	)

	result := &domain.TransferResult{Movements: outcome.Movements}
	if result.Source, err = s.GetByID(ctx, outcome.Source.ID); err != nil {
		return nil, err
	}
	if result.Destination, err = s.GetByID(ctx, outcome.Destination.ID); err != nil {
		return nil, err
	}
	return result, nil
}

// Adjust applies a signed delta to a row. The movement type defaults to ADJUSTMENT
// and must be one of adjustableMovements. Decrements beyond available stock fail
// with InsufficientStockError.
func (s *InventoryService) Adjust(ctx context.Context, id uuid.UUID, req *domain.AdjustInventoryRequest) (*domain.InventoryMovement, error) {
	if req.Delta == 0 {
		return nil, fieldError("delta", "must not be zero")
	}
	movementType := req.MovementType
	if movementType == "" {
		movementType = domain.MovementAdjustment
	}
	if !adjustableMovements[movementType] {
		return nil, fieldError("movementType", "Must be one of ADJUSTMENT, IN, OUT, WASTE, RETURN")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var movement *domain.InventoryMovement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.inventoryRepo.WithTx(tx)
		inv, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		movement, err = repo.ApplyMovement(ctx, inv, movementType, req.Delta, movementInfo(ctx, req.Reference, req.Notes))
		return err
	})
	if err != nil {
		return nil, s.mutationError("adjust", err)
	}

	s.logger.Info("inventory adjusted",
		zap.String("inventory_id", id.String()),
		zap.String("movement_type", string(movementType)),
		zap.Float64("delta", req.Delta),
	)
	return movement, nil
}

// Reserve holds quantity for an order so it cannot be sold or transferred
func (s *InventoryService) Reserve(ctx context.Context, id uuid.UUID, req *domain.ReserveInventoryRequest) (*domain.Inventory, error) {
	return s.changeReservation(ctx, id, req, true)
}

// Release returns previously reserved quantity to available stock
func (s *InventoryService) Release(ctx context.Context, id uuid.UUID, req *domain.ReserveInventoryRequest) (*domain.Inventory, error) {
	return s.changeReservation(ctx, id, req, false)
}

func (s *InventoryService) changeReservation(ctx context.Context, id uuid.UUID, req *domain.ReserveInventoryRequest, reserve bool) (*domain.Inventory, error) {
	if req.Quantity <= 0 {
		return nil, fieldError("quantity", "must be greater than 0")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.inventoryRepo.WithTx(tx)
		inv, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if reserve {
			return repo.Reserve(ctx, inv, req.Quantity)
		}
		return repo.Release(ctx, inv, req.Quantity)
	})
	if err != nil {
		return nil, s.mutationError("reserve", err)
	}

	s.logger.Info("inventory reservation changed",
		zap.String("inventory_id", id.String()),
		zap.Bool("reserve", reserve),
		zap.Float64("quantity", req.Quantity),
		zap.String("reference", req.Reference),
	)
	return s.GetByID(ctx, id)
}

func (s *InventoryService) ListMovements(ctx context.Context, filters *repository.MovementFilters, opts repository.ListOptions) ([]domain.InventoryMovement, int64, error) {
	movements, total, err := s.inventoryRepo.ListMovements(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, total, nil
}

// mutationError maps a failed stock transaction to a service error
func (s *InventoryService) mutationError(op string, err error) error {
	if repository.IsNotFound(err) {
		return ErrInventoryNotFound
	}
	if isStockError(err) {
		return stockError(err)
	}
	return fmt.Errorf("failed to %s inventory: %w", op, err)
}
