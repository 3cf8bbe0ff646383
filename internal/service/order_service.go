package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService handles customer orders from every channel except the till,
// which goes through POSService.
type OrderService struct {
	db            *gorm.DB
	orderRepo     *repository.OrderRepository
	productRepo   *repository.ProductRepository
	customerRepo  *repository.CustomerRepository
	numbers       *NumberSequenceService
	notifications *NotificationService
	logger        *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	db *gorm.DB,
	orderRepo *repository.OrderRepository,
	productRepo *repository.ProductRepository,
	customerRepo *repository.CustomerRepository,
	numbers *NumberSequenceService,
	notifications *NotificationService,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		db:            db,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		numbers:       numbers,
		notifications: notifications,
		logger:        logger,
	}
}

// Create validates the request, prices every line and stores the order with its items
func (s *OrderService) Create(ctx context.Context, req *domain.CreateOrderRequest) (*domain.Order, error) {
	channel := req.Channel
	if channel == "" {
		channel = domain.ChannelOnline
	}
	if !channel.IsValid() {
		return nil, fieldError("channel", "Must be one of the allowed values")
	}
	status := req.Status
	if status == "" {
		status = domain.OrderPending
	}
	if !status.IsValid() || status.IsTerminal() {
		return nil, fieldError("status", "Must be a non-terminal order status")
	}
	if req.PaymentMethod != "" && !req.PaymentMethod.IsValid() {
		return nil, fieldError("paymentMethod", "Must be one of the allowed values")
	}
	if err := requireNonNegative("taxAmount", req.TaxAmount); err != nil {
		return nil, err
	}
	if err := requireNonNegative("discountAmount", req.DiscountAmount); err != nil {
		return nil, err
	}
	if _, err := s.customerRepo.GetByID(ctx, req.CustomerID); err != nil {
		if repository.IsNotFound(err) {
			return nil, fieldError("customerId", "Customer does not exist")
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	items, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	number, err := s.numbers.Generate(ctx, PrefixOrder)
	if err != nil {
		return nil, err
	}

	customerID := req.CustomerID
	order := &domain.Order{
		OrderNumber:    number,
		CustomerID:     &customerID,
		Status:         status,
		PaymentStatus:  domain.PaymentUnpaid,
		PaymentMethod:  req.PaymentMethod,
		Channel:        channel,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		Notes:          req.Notes,
		DeliveryDate:   req.DeliveryDate,
		CreatedByID:    actorID(ctx),
		Items:          items,
	}
	applyOrderTotals(order)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	return s.GetByID(ctx, order.ID)
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrOrderNotFound, "order")
	}
	return order, nil
}

// Update edits a pending or confirmed order. A non-nil Items replaces every line
// and the totals are recomputed in the same transaction.
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOrderRequest) (*domain.Order, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if req.PaymentMethod != nil && *req.PaymentMethod != "" && !req.PaymentMethod.IsValid() {
		return nil, fieldError("paymentMethod", "Must be one of the allowed values")
	}
	if req.TaxAmount != nil {
		if err := requireNonNegative("taxAmount", *req.TaxAmount); err != nil {
			return nil, err
		}
	}
	if req.DiscountAmount != nil {
		if err := requireNonNegative("discountAmount", *req.DiscountAmount); err != nil {
			return nil, err
		}
	}
	var items []domain.OrderItem
	if req.Items != nil {
		var err error
		if items, err = s.priceItems(ctx, *req.Items); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderPending && order.Status != domain.OrderConfirmed {
			return ErrOrderNotEditable
		}

		if req.PaymentMethod != nil {
			order.PaymentMethod = *req.PaymentMethod
		}
		if req.TaxAmount != nil {
			order.TaxAmount = *req.TaxAmount
		}
		if req.DiscountAmount != nil {
			order.DiscountAmount = *req.DiscountAmount
		}
		if req.Notes != nil {
			order.Notes = *req.Notes
		}
		if req.DeliveryDate != nil {
			order.DeliveryDate = req.DeliveryDate
		}

		if req.Items != nil {
			if err := repo.ReplaceItems(ctx, id, items); err != nil {
				return err
			}
			order.Items = items
		} else {
			current, err := repo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			order.Items = current.Items
		}
		applyOrderTotals(order)
		return repo.Update(ctx, order)
	})
	if err != nil {
		return nil, orderMutationError(err)
	}
	return s.GetByID(ctx, id)
}

// UpdateStatus moves the order along the order transition table.
// Reaching DELIVERED stamps deliveredAt.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateOrderStatusRequest) (*domain.Order, error) {
	if !req.Status.IsValid() {
		return nil, fieldError("status", "Must be one of the allowed values")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var previous domain.OrderStatus
	var createdBy *uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		previous = order.Status
		createdBy = order.CreatedByID
		if !order.Status.CanTransitionTo(req.Status) {
			return transitionError("order", order.Status, req.Status)
		}
		if order.Status == req.Status {
			return nil
		}
		applyOrderStatus(order, req.Status, time.Now().UTC())
		return repo.Update(ctx, order)
	})
	if err != nil {
		return nil, orderMutationError(err)
	}

	if previous != req.Status {
		s.logger.Info("order status changed",
			zap.String("order_id", id.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(req.Status)),
		)
		s.notifications.Queue(ctx, domain.NotificationOrderStatus, createdBy,
			"Order status changed",
			fmt.Sprintf("Order moved from %s to %s", previous, req.Status),
			"order", &id,
		)
	}
	return s.GetByID(ctx, id)
}

// UpdatePayment records the payment state of an order
func (s *OrderService) UpdatePayment(ctx context.Context, id uuid.UUID, req *domain.UpdatePaymentRequest) (*domain.Order, error) {
	if !req.PaymentStatus.IsValid() {
		return nil, fieldError("paymentStatus", "Must be one of the allowed values")
	}
	if req.PaymentMethod != nil && !req.PaymentMethod.IsValid() {
		return nil, fieldError("paymentMethod", "Must be one of the allowed values")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		order.PaymentStatus = req.PaymentStatus
		if req.PaymentMethod != nil {
			order.PaymentMethod = *req.PaymentMethod
		}
		return repo.Update(ctx, order)
	})
	if err != nil {
		return nil, orderMutationError(err)
	}

	s.logger.Info("order payment updated",
		zap.String("order_id", id.String()),
		zap.String("payment_status", string(req.PaymentStatus)),
	)
	return s.GetByID(ctx, id)
}

// Delete removes an order that was not delivered and has no deliveries
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == domain.OrderDelivered {
		return ErrOrderDelivered
	}
	count, err := s.orderRepo.CountDeliveries(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count deliveries: %w", err)
	}
	if count > 0 {
		return ErrOrderHasDeliveries
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	s.logger.Info("order deleted", zap.String("order_id", id.String()))
	return nil
}

func (s *OrderService) List(ctx context.Context, filters *repository.OrderFilters, opts repository.ListOptions) ([]domain.Order, int64, error) {
	orders, total, err := s.orderRepo.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// priceItems loads every product once and prices each line at the requested
// unit price, or the product's list price when none is given
func (s *OrderService) priceItems(ctx context.Context, reqs []domain.OrderItemRequest) ([]domain.OrderItem, error) {
	ids := make([]uuid.UUID, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(reqs))
	for i, r := range reqs {
		product, ok := products[r.ProductID]
		if !ok {
			return nil, fieldError(fmt.Sprintf("items[%d].productId", i), "Product does not exist")
		}
		if !product.IsActive {
			return nil, fieldError(fmt.Sprintf("items[%d].productId", i), "Product is not active")
		}
		price := product.Price
		if r.UnitPrice != nil {
			if err := requireNonNegative(fmt.Sprintf("items[%d].unitPrice", i), *r.UnitPrice); err != nil {
				return nil, err
			}
			price = *r.UnitPrice
		}
		items = append(items, newOrderItem(r.ProductID, r.Quantity, price))
	}
	return items, nil
}

func newOrderItem(productID uuid.UUID, quantity float64, unitPrice decimal.Decimal) domain.OrderItem {
	return domain.OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: unitPrice.Mul(decimal.NewFromFloat(quantity)).Round(2),
	}
}

// applyOrderTotals sets subtotal from the lines and total = subtotal + tax - discount,
// floored at zero
func applyOrderTotals(order *domain.Order) {
	subtotal := decimal.Zero
	for _, item := range order.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	order.Subtotal = subtotal.Round(2)
	total := order.Subtotal.Add(order.TaxAmount).Sub(order.DiscountAmount).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}
	order.TotalAmount = total
}

func applyOrderStatus(order *domain.Order, status domain.OrderStatus, now time.Time) {
	order.Status = status
	if status == domain.OrderDelivered && order.DeliveredAt == nil {
		order.DeliveredAt = &now
	}
}

func orderMutationError(err error) error {
	if repository.IsNotFound(err) {
		return ErrOrderNotFound
	}
	var transition *TransitionError
	if errors.As(err, &transition) || errors.Is(err, ErrOrderNotEditable) {
		return err
	}
	return fmt.Errorf("failed to update order: %w", err)
}

func actorID(ctx context.Context) *uuid.UUID {
	if userCtx, ok := auth.FromContext(ctx); ok {
		return userCtx.ActorID()
	}
	return nil
}
