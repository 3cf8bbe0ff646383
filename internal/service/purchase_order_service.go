package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PurchaseOrderService handles stock ordered from suppliers
type PurchaseOrderService struct {
	db            *gorm.DB
	poRepo        *repository.PurchaseOrderRepository
	supplierRepo  *repository.SupplierRepository
	warehouseRepo *repository.WarehouseRepository
	productRepo   *repository.ProductRepository
	inventoryRepo *repository.InventoryRepository
	numbers       *NumberSequenceService
	logger        *zap.Logger
}

func NewPurchaseOrderService(
	db *gorm.DB,
	poRepo *repository.PurchaseOrderRepository,
	supplierRepo *repository.SupplierRepository,
	warehouseRepo *repository.WarehouseRepository,
	productRepo *repository.ProductRepository,
	inventoryRepo *repository.InventoryRepository,
	numbers *NumberSequenceService,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		db:            db,
		poRepo:        poRepo,
		supplierRepo:  supplierRepo,
		warehouseRepo: warehouseRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		numbers:       numbers,
		logger:        logger,
	}
}

func (s *PurchaseOrderService) Create(ctx context.Context, req *domain.CreatePurchaseOrderRequest) (*domain.PurchaseOrder, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, req.SupplierID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fieldError("supplierId", "Supplier does not exist")
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	if !supplier.IsActive {
		return nil, fieldError("supplierId", "Supplier is not active")
	}
	if err := s.checkWarehouse(ctx, req.WarehouseID); err != nil {
		return nil, err
	}
	items, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	number, err := s.numbers.Generate(ctx, PrefixPurchaseOrder)
	if err != nil {
		return nil, err
	}

	orderDate := time.Now().UTC()
	if req.OrderDate != nil {
		orderDate = req.OrderDate.UTC()
	}
	po := &domain.PurchaseOrder{
		PONumber:     number,
		SupplierID:   supplier.ID,
		WarehouseID:  req.WarehouseID,
		Status:       domain.PurchaseOrderDraft,
		OrderDate:    orderDate,
		ExpectedDate: req.ExpectedDate,
		TotalAmount:  sumPurchaseItems(items),
		Notes:        req.Notes,
		CreatedByID:  actorID(ctx),
		Items:        items,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.poRepo.WithTx(tx).Create(ctx, po)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}

	s.logger.Info("purchase order created",
		zap.String("purchase_order_id", po.ID.String()),
		zap.String("po_number", number),
		zap.String("total", po.TotalAmount.StringFixed(2)),
	)
	return s.GetByID(ctx, po.ID)
}

func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrPurchaseOrderNotFound, "purchase order")
	}
	return po, nil
}

// Update edits a draft purchase order
func (s *PurchaseOrderService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdatePurchaseOrderRequest) (*domain.PurchaseOrder, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if req.WarehouseID != nil {
		if err := s.checkWarehouse(ctx, *req.WarehouseID); err != nil {
			return nil, err
		}
	}
	var items []domain.PurchaseOrderItem
	if req.Items != nil {
		var err error
		if items, err = s.buildItems(ctx, *req.Items); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.poRepo.WithTx(tx)
		po, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if po.Status != domain.PurchaseOrderDraft {
			return ErrPurchaseOrderNotEditable
		}

		if req.WarehouseID != nil {
			po.WarehouseID = *req.WarehouseID
		}
		if req.ExpectedDate != nil {
			po.ExpectedDate = req.ExpectedDate
		}
		if req.Notes != nil {
			po.Notes = *req.Notes
		}
		if req.Items != nil {
			if err := repo.ReplaceItems(ctx, id, items); err != nil {
				return err
			}
			po.TotalAmount = sumPurchaseItems(items)
		}
		return repo.Update(ctx, po)
	})
	if err != nil {
		return nil, purchaseOrderMutationError(err)
	}
	return s.GetByID(ctx, id)
}

// UpdateStatus moves the purchase order along its transition table. Receiving
// books every line into the order's warehouse with PURCHASE_IN movements inside
// the same transaction as the status change.
func (s *PurchaseOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdatePurchaseOrderStatusRequest) (*domain.PurchaseOrder, error) {
	if !req.Status.IsValid() {
		return nil, fieldError("status", "Must be one of the allowed values")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var previous domain.PurchaseOrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.poRepo.WithTx(tx)
		po, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		previous = po.Status
		if !po.Status.CanTransitionTo(req.Status) {
			return transitionError("purchase order", po.Status, req.Status)
		}
		if po.Status == req.Status {
			return nil
		}

		po.Status = req.Status
		if req.Status == domain.PurchaseOrderReceived {
			now := time.Now().UTC()
			po.ReceivedAt = &now
			if err := s.receive(ctx, tx, po); err != nil {
				return err
			}
		}
		return repo.Update(ctx, po)
	})
	if err != nil {
		return nil, purchaseOrderMutationError(err)
	}

	if previous != req.Status {
		s.logger.Info("purchase order status changed",
			zap.String("purchase_order_id", id.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(req.Status)),
		)
	}
	return s.GetByID(ctx, id)
}

func (s *PurchaseOrderService) receive(ctx context.Context, tx *gorm.DB, po *domain.PurchaseOrder) error {
	invRepo := s.inventoryRepo.WithTx(tx)
	info := movementInfo(ctx, po.PONumber, "Purchase order received")
	for _, item := range po.Items {
		inv, _, err := invRepo.LockOrCreate(ctx, item.ProductID, po.WarehouseID)
		if err != nil {
			return err
		}
		if _, err := invRepo.ApplyMovement(ctx, inv, domain.MovementPurchaseIn, item.Quantity, info); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a purchase order that was not received
func (s *PurchaseOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	po, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if po.Status == domain.PurchaseOrderReceived {
		return ErrPurchaseOrderReceived
	}
	if err := s.poRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete purchase order: %w", err)
	}
	s.logger.Info("purchase order deleted", zap.String("purchase_order_id", id.String()))
	return nil
}

func (s *PurchaseOrderService) List(ctx context.Context, filters *repository.PurchaseOrderFilters, opts repository.ListOptions) ([]domain.PurchaseOrder, int64, error) {
	pos, total, err := s.poRepo.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	return pos, total, nil
}

func (s *PurchaseOrderService) checkWarehouse(ctx context.Context, id uuid.UUID) error {
	if _, err := s.warehouseRepo.GetByID(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return fieldError("warehouseId", "Warehouse does not exist")
		}
		return fmt.Errorf("failed to get warehouse: %w", err)
	}
	return nil
}

func (s *PurchaseOrderService) buildItems(ctx context.Context, reqs []domain.PurchaseOrderItemRequest) ([]domain.PurchaseOrderItem, error) {
	ids := make([]uuid.UUID, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	items := make([]domain.PurchaseOrderItem, 0, len(reqs))
	for i, r := range reqs {
		product, ok := products[r.ProductID]
		if !ok {
			return nil, fieldError(fmt.Sprintf("items[%d].productId", i), "Product does not exist")
		}
		cost := r.UnitCost
		if cost.IsZero() {
			cost = product.CostPrice
		}
		if err := requireNonNegative(fmt.Sprintf("items[%d].unitCost", i), cost); err != nil {
			return nil, err
		}
		items = append(items, domain.PurchaseOrderItem{
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			UnitCost:  cost,
			LineTotal: cost.Mul(decimal.NewFromFloat(r.Quantity)).Round(2),
		})
	}
	return items, nil
}

func sumPurchaseItems(items []domain.PurchaseOrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return total.Round(2)
}

func purchaseOrderMutationError(err error) error {
	if repository.IsNotFound(err) {
		return ErrPurchaseOrderNotFound
	}
	var transition *TransitionError
	if errors.As(err, &transition) || errors.Is(err, ErrPurchaseOrderNotEditable) {
		return err
	}
	return fmt.Errorf("failed to update purchase order: %w", err)
}
