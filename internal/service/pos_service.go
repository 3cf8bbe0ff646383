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

// POSService rings up counter sales: one transaction creates a paid, delivered
// order and takes every line out of the till's warehouse with SALE movements.
type POSService struct {
	db            *gorm.DB
	orderRepo     *repository.OrderRepository
	inventoryRepo *repository.InventoryRepository
	productRepo   *repository.ProductRepository
	warehouseRepo *repository.WarehouseRepository
	customerRepo  *repository.CustomerRepository
	numbers       *NumberSequenceService
	logger        *zap.Logger
}

func NewPOSService(
	db *gorm.DB,
	orderRepo *repository.OrderRepository,
	inventoryRepo *repository.InventoryRepository,
	productRepo *repository.ProductRepository,
	warehouseRepo *repository.WarehouseRepository,
	customerRepo *repository.CustomerRepository,
	numbers *NumberSequenceService,
	logger *zap.Logger,
) *POSService {
	return &POSService{
		db:            db,
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		customerRepo:  customerRepo,
		numbers:       numbers,
		logger:        logger,
	}
}

// Sell records a sale. Any line without enough available stock rolls back the whole sale.
func (s *POSService) Sell(ctx context.Context, req *domain.POSSaleRequest) (*domain.Order, error) {
	if !req.PaymentMethod.IsValid() {
		return nil, fieldError("paymentMethod", "Must be one of the allowed values")
	}
	if err := requireNonNegative("discountAmount", req.DiscountAmount); err != nil {
		return nil, err
	}
	if _, err := s.warehouseRepo.GetByID(ctx, req.WarehouseID); err != nil {
		if repository.IsNotFound(err) {
			return nil, fieldError("warehouseId", "Warehouse does not exist")
		}
		return nil, fmt.Errorf("failed to get warehouse: %w", err)
	}
	if req.CustomerID != nil {
		if _, err := s.customerRepo.GetByID(ctx, *req.CustomerID); err != nil {
			if repository.IsNotFound(err) {
				return nil, fieldError("customerId", "Customer does not exist")
			}
			return nil, fmt.Errorf("failed to get customer: %w", err)
		}
	}

	ids := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	items := make([]domain.OrderItem, 0, len(req.Items))
	for i, line := range req.Items {
		product, ok := products[line.ProductID]
		if !ok || !product.IsActive {
			return nil, fieldError(fmt.Sprintf("items[%d].productId", i), "Product is not available")
		}
		items = append(items, newOrderItem(line.ProductID, line.Quantity, product.Price))
	}

	number, err := s.numbers.Generate(ctx, PrefixOrder)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		OrderNumber:    number,
		CustomerID:     req.CustomerID,
		Status:         domain.OrderDelivered,
		PaymentStatus:  domain.PaymentPaid,
		PaymentMethod:  req.PaymentMethod,
		Channel:        domain.ChannelPOS,
		DiscountAmount: req.DiscountAmount,
		CreatedByID:    actorID(ctx),
		Items:          items,
	}
	applyOrderTotals(order)
	now := time.Now().UTC()
	order.DeliveredAt = &now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invRepo := s.inventoryRepo.WithTx(tx)
		info := movementInfo(ctx, number, "POS sale")
		for i, line := range req.Items {
			inv, err := invRepo.GetByProductAndWarehouse(ctx, line.ProductID, req.WarehouseID)
			if err != nil {
				return err
			}
			if inv == nil {
				return &repository.ShortageError{Available: 0, Requested: line.Quantity}
			}
			if inv, err = invRepo.LockByID(ctx, inv.ID); err != nil {
				return err
			}
			if _, err := invRepo.ApplyMovement(ctx, inv, domain.MovementSale, -line.Quantity, info); err != nil {
				var shortage *repository.ShortageError
				if errors.As(err, &shortage) {
					s.logger.Info("pos sale rejected",
						zap.Int("line", i),
						zap.String("product_id", line.ProductID.String()),
						zap.Float64("available", shortage.Available),
						zap.Float64("requested", shortage.Requested),
					)
				}
				return err
			}
		}
		return s.orderRepo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		if isStockError(err) {
			return nil, stockError(err)
		}
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	s.logger.Info("pos sale recorded",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("warehouse_id", req.WarehouseID.String()),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)

	sale, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, lookupError(err, ErrOrderNotFound, "order")
	}
	return sale, nil
}
