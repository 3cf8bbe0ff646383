package service

import (
	"context"
	"fmt"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SupplierService handles business logic for suppliers
type SupplierService struct {
	supplierRepo *repository.SupplierRepository
	logger       *zap.Logger
}

// NewSupplierService creates a new supplier service instance
func NewSupplierService(supplierRepo *repository.SupplierRepository, logger *zap.Logger) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		logger:       logger,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req *domain.CreateSupplierRequest) (*domain.Supplier, error) {
	supplier := &domain.Supplier{
		Name:         req.Name,
		ContactName:  req.ContactName,
		Email:        normalizeEmail(req.Email),
		Phone:        req.Phone,
		Address:      req.Address,
		PaymentTerms: req.PaymentTerms,
		Notes:        req.Notes,
		IsActive:     true,
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	s.logger.Info("supplier created", zap.String("supplier_id", supplier.ID.String()))
	return supplier, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrSupplierNotFound, "supplier")
	}
	return supplier, nil
}

// Update applies the non-nil fields of req
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateSupplierRequest) (*domain.Supplier, error) {
	supplier, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.ContactName != nil {
		supplier.ContactName = *req.ContactName
	}
	if req.Email != nil {
		supplier.Email = normalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.PaymentTerms != nil {
		supplier.PaymentTerms = *req.PaymentTerms
	}
	if req.Notes != nil {
		supplier.Notes = *req.Notes
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}

// SetActive enables or disables a supplier
func (s *SupplierService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Supplier, error) {
	supplier, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.IsActive = active
	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}

// Delete removes a supplier with no purchase orders
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.supplierRepo.CountPurchaseOrders(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count purchase orders: %w", err)
	}
	if count > 0 {
		return ErrSupplierHasPurchaseOrders
	}

	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}

	s.logger.Info("supplier deleted", zap.String("supplier_id", id.String()))
	return nil
}

// List returns a paginated list of suppliers
func (s *SupplierService) List(ctx context.Context, filters *repository.SupplierFilters, opts repository.ListOptions) ([]domain.Supplier, int64, error) {
	suppliers, total, err := s.supplierRepo.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, total, nil
}
