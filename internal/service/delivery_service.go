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

// DeliveryService handles delivery runs for orders
type DeliveryService struct {
	db            *gorm.DB
	deliveryRepo  *repository.DeliveryRepository
	orderRepo     *repository.OrderRepository
	customerRepo  *repository.CustomerRepository
	userRepo      *repository.UserRepository
	numbers       *NumberSequenceService
	notifications *NotificationService
	logger        *zap.Logger
}

func NewDeliveryService(
	db *gorm.DB,
	deliveryRepo *repository.DeliveryRepository,
	orderRepo *repository.OrderRepository,
	customerRepo *repository.CustomerRepository,
	userRepo *repository.UserRepository,
	numbers *NumberSequenceService,
	notifications *NotificationService,
	logger *zap.Logger,
) *DeliveryService {
	return &DeliveryService{
		db:            db,
		deliveryRepo:  deliveryRepo,
		orderRepo:     orderRepo,
		customerRepo:  customerRepo,
		userRepo:      userRepo,
		numbers:       numbers,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *DeliveryService) Create(ctx context.Context, req *domain.CreateDeliveryRequest) (*domain.Delivery, error) {
	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fieldError("orderId", "Order does not exist")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.Status == domain.OrderCancelled || order.Status == domain.OrderReturned {
		return nil, ErrOrderClosed
	}

	locationID := req.CustomerLocationID
	if err := s.checkLocation(ctx, order, locationID); err != nil {
		return nil, err
	}
	if locationID == nil && order.Customer != nil {
		locationID = defaultLocationID(ctx, s.customerRepo, order.Customer.ID)
	}
	if err := s.checkAssignee(ctx, req.AssignedToID); err != nil {
		return nil, err
	}

	number, err := s.numbers.Generate(ctx, PrefixDelivery)
	if err != nil {
		return nil, err
	}

	status := domain.DeliveryPending
	if req.ScheduledDate != nil {
		status = domain.DeliveryScheduled
	}
	delivery := &domain.Delivery{
		DeliveryNumber:     number,
		OrderID:            order.ID,
		CustomerLocationID: locationID,
		AssignedToID:       req.AssignedToID,
		Status:             status,
		ScheduledDate:      req.ScheduledDate,
		DriverName:         req.DriverName,
		Vehicle:            req.Vehicle,
		Carrier:            req.Carrier,
		TrackingNumber:     req.TrackingNumber,
		Notes:              req.Notes,
	}
	if err := s.deliveryRepo.Create(ctx, delivery); err != nil {
		return nil, fmt.Errorf("failed to create delivery: %w", err)
	}

	s.logger.Info("delivery created",
		zap.String("delivery_id", delivery.ID.String()),
		zap.String("delivery_number", number),
		zap.String("order_id", order.ID.String()),
	)
	if req.AssignedToID != nil {
		s.notifications.Queue(ctx, domain.NotificationDeliveryStatus, req.AssignedToID,
			"Delivery assigned",
			fmt.Sprintf("Delivery %s for order %s was assigned to you", number, order.OrderNumber),
			"delivery", &delivery.ID,
		)
	}
	return s.GetByID(ctx, delivery.ID)
}

func (s *DeliveryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	delivery, err := s.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrDeliveryNotFound, "delivery")
	}
	return delivery, nil
}

func (s *DeliveryService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateDeliveryRequest) (*domain.Delivery, error) {
	delivery, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if delivery.Status.IsTerminal() {
		return nil, ErrDeliveryClosed
	}
	if req.CustomerLocationID != nil {
		order, err := s.orderRepo.GetByID(ctx, delivery.OrderID)
		if err != nil {
			return nil, lookupError(err, ErrOrderNotFound, "order")
		}
		if err := s.checkLocation(ctx, order, req.CustomerLocationID); err != nil {
			return nil, err
		}
		delivery.CustomerLocationID = req.CustomerLocationID
	}
	if err := s.checkAssignee(ctx, req.AssignedToID); err != nil {
		return nil, err
	}

	if req.AssignedToID != nil {
		delivery.AssignedToID = req.AssignedToID
	}
	if req.ScheduledDate != nil {
		delivery.ScheduledDate = req.ScheduledDate
	}
	if req.DriverName != nil {
		delivery.DriverName = *req.DriverName
	}
	if req.Vehicle != nil {
		delivery.Vehicle = *req.Vehicle
	}
	if req.Carrier != nil {
		delivery.Carrier = *req.Carrier
	}
	if req.TrackingNumber != nil {
		delivery.TrackingNumber = *req.TrackingNumber
	}
	if req.Notes != nil {
		delivery.Notes = *req.Notes
	}

	if err := s.deliveryRepo.Update(ctx, delivery); err != nil {
		return nil, fmt.Errorf("failed to update delivery: %w", err)
	}
	return s.GetByID(ctx, id)
}

// UpdateStatus moves the delivery along the delivery transition table. Leaving for the
// road marks the order OUT_FOR_DELIVERY and DELIVERED marks it DELIVERED, each only
// when the order's own table allows it.
func (s *DeliveryService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateDeliveryStatusRequest) (*domain.Delivery, error) {
	if !req.Status.IsValid() {
		return nil, fieldError("status", "Must be one of the allowed values")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var previous domain.DeliveryStatus
	var assignee *uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.deliveryRepo.WithTx(tx)
		delivery, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		previous = delivery.Status
		assignee = delivery.AssignedToID
		if !delivery.Status.CanTransitionTo(req.Status) {
			return transitionError("delivery", delivery.Status, req.Status)
		}
		if delivery.Status == req.Status {
			return nil
		}

		now := time.Now().UTC()
		delivery.Status = req.Status
		if req.Notes != "" {
			delivery.Notes = req.Notes
		}

		var orderStatus domain.OrderStatus
		switch req.Status {
		case domain.DeliveryInTransit:
			orderStatus = domain.OrderOutForDelivery
		case domain.DeliveryDelivered:
			delivery.DeliveredAt = &now
			orderStatus = domain.OrderDelivered
		}
		if err := repo.Update(ctx, delivery); err != nil {
			return err
		}
		if orderStatus == "" {
			return nil
		}

		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.LockByID(ctx, delivery.OrderID)
		if err != nil {
			return err
		}
		if order.Status == orderStatus || !order.Status.CanTransitionTo(orderStatus) {
			return nil
		}
		applyOrderStatus(order, orderStatus, now)
		return orderRepo.Update(ctx, order)
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrDeliveryNotFound
		}
		var transition *TransitionError
		if errors.As(err, &transition) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update delivery status: %w", err)
	}

	if previous != req.Status {
		s.logger.Info("delivery status changed",
			zap.String("delivery_id", id.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(req.Status)),
		)
		s.notifications.Queue(ctx, domain.NotificationDeliveryStatus, assignee,
			"Delivery status changed",
			fmt.Sprintf("Delivery moved from %s to %s", previous, req.Status),
			"delivery", &id,
		)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a delivery that is not on the road
func (s *DeliveryService) Delete(ctx context.Context, id uuid.UUID) error {
	delivery, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if delivery.Status == domain.DeliveryInTransit {
		return ErrDeliveryInTransit
	}
	if err := s.deliveryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete delivery: %w", err)
	}
	s.logger.Info("delivery deleted", zap.String("delivery_id", id.String()))
	return nil
}

func (s *DeliveryService) List(ctx context.Context, filters *repository.DeliveryFilters, opts repository.ListOptions) ([]domain.Delivery, int64, error) {
	deliveries, total, err := s.deliveryRepo.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deliveries: %w", err)
	}
	return deliveries, total, nil
}

// checkLocation requires the location to belong to the order's customer
func (s *DeliveryService) checkLocation(ctx context.Context, order *domain.Order, locationID *uuid.UUID) error {
	if locationID == nil {
		return nil
	}
	if order.CustomerID == nil {
		return fieldError("customerLocationId", "Order has no customer")
	}
	if _, err := s.customerRepo.GetLocation(ctx, *order.CustomerID, *locationID); err != nil {
		if repository.IsNotFound(err) {
			return fieldError("customerLocationId", "Location does not belong to the order's customer")
		}
		return fmt.Errorf("failed to get location: %w", err)
	}
	return nil
}

func (s *DeliveryService) checkAssignee(ctx context.Context, userID *uuid.UUID) error {
	if userID == nil {
		return nil
	}
	user, err := s.userRepo.GetByID(ctx, *userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return fieldError("assignedToId", "User does not exist")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return fieldError("assignedToId", "User is not active")
	}
	return nil
}

func defaultLocationID(ctx context.Context, repo *repository.CustomerRepository, customerID uuid.UUID) *uuid.UUID {
	locations, err := repo.ListLocations(ctx, customerID)
	if err != nil {
		return nil
	}
	for _, l := range locations {
		if l.IsDefault {
			id := l.ID
			return &id
		}
	}
	return nil
}
