package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WarehouseService handles stock locations
type WarehouseService struct {
	warehouseRepo *repository.WarehouseRepository
	logger        *zap.Logger
}

func NewWarehouseService(warehouseRepo *repository.WarehouseRepository, logger *zap.Logger) *WarehouseService {
	return &WarehouseService{warehouseRepo: warehouseRepo, logger: logger}
}

func (s *WarehouseService) Create(ctx context.Context, req *domain.CreateWarehouseRequest) (*domain.Warehouse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.ensureCodeFree(ctx, code, uuid.Nil); err != nil {
		return nil, err
	}

	warehouse := &domain.Warehouse{
		Code:     code,
		Name:     req.Name,
		Address:  req.Address,
		City:     req.City,
		Capacity: req.Capacity,
		IsActive: true,
	}
	if err := s.warehouseRepo.Create(ctx, warehouse); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrDuplicateWarehouseCode
		}
		return nil, fmt.Errorf("failed to create warehouse: %w", err)
	}
	s.logger.Info("warehouse created", zap.String("warehouse_id", warehouse.ID.String()), zap.String("code", code))
	return warehouse, nil
}

func (s *WarehouseService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Warehouse, error) {
	warehouse, err := s.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrWarehouseNotFound, "warehouse")
	}
	return warehouse, nil
}

func (s *WarehouseService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateWarehouseRequest) (*domain.Warehouse, error) {
	warehouse, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code != warehouse.Code {
			if err := s.ensureCodeFree(ctx, code, warehouse.ID); err != nil {
				return nil, err
			}
			warehouse.Code = code
		}
	}
	if req.Name != nil {
		warehouse.Name = *req.Name
	}
	if req.Address != nil {
		warehouse.Address = *req.Address
	}
	if req.City != nil {
		warehouse.City = *req.City
	}
	if req.Capacity != nil {
		warehouse.Capacity = *req.Capacity
	}

	if err := s.warehouseRepo.Update(ctx, warehouse); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrDuplicateWarehouseCode
		}
		return nil, fmt.Errorf("failed to update warehouse: %w", err)
	}
	return warehouse, nil
}

func (s *WarehouseService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Warehouse, error) {
	warehouse, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	warehouse.IsActive = active
	if err := s.warehouseRepo.Update(ctx, warehouse); err != nil {
		return nil, fmt.Errorf("failed to update warehouse: %w", err)
	}
	return warehouse, nil
}

// Delete removes a warehouse nothing references
func (s *WarehouseService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	deps, err := s.warehouseRepo.CountDependents(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count warehouse dependents: %w", err)
	}
	if deps.Inventory > 0 {
		return ErrWarehouseHasInventory
	}
	if deps.PurchaseOrders > 0 || deps.Productions > 0 {
		return ErrWarehouseInUse
	}
	if err := s.warehouseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete warehouse: %w", err)
	}
	s.logger.Info("warehouse deleted", zap.String("warehouse_id", id.String()))
	return nil
}

func (s *WarehouseService) List(ctx context.Context, filters *repository.WarehouseFilters, opts repository.ListOptions) ([]domain.Warehouse, int64, error) {
	warehouses, total, err := s.warehouseRepo.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list warehouses: %w", err)
	}
	return warehouses, total, nil
}

func (s *WarehouseService) ensureCodeFree(ctx context.Context, code string, self uuid.UUID) error {
	existing, err := s.warehouseRepo.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to check warehouse code: %w", err)
	}
	if existing != nil && existing.ID != self {
		return ErrDuplicateWarehouseCode
	}
	return nil
}
