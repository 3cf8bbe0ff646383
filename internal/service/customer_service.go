package service

import (
	"context"
	"fmt"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CustomerService handles customers and their delivery locations
type CustomerService struct {
	db           *gorm.DB
	customerRepo *repository.CustomerRepository
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(db *gorm.DB, customerRepo *repository.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		db:           db,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// Create creates a customer together with any locations in the request
func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.Customer, error) {
	customerType := req.CustomerType
	if customerType == "" {
		customerType = domain.CustomerTypeIndividual
	}
	if !customerType.IsValid() {
		return nil, fieldError("customerType", "Must be one of the allowed values")
	}

	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		CustomerType: customerType,
		CompanyName:  req.CompanyName,
		TaxID:        req.TaxID,
		Notes:        req.Notes,
		IsActive:     true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.customerRepo.WithTx(tx)
		if err := repo.Create(ctx, customer); err != nil {
			return err
		}

		defaultIdx := 0
		for i, l := range req.Locations {
			if l.IsDefault {
				defaultIdx = i
				break
			}
		}
		for i, l := range req.Locations {
			location := &domain.CustomerLocation{
				CustomerID:    customer.ID,
				Label:         l.Label,
				Address:       l.Address,
				City:          l.City,
				PostalCode:    l.PostalCode,
				DeliveryNotes: l.DeliveryNotes,
				IsDefault:     i == defaultIdx,
			}
			if err := repo.CreateLocation(ctx, location); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("customer created", zap.String("customer_id", customer.ID.String()))
	return s.GetByID(ctx, customer.ID)
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrCustomerNotFound, "customer")
	}
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.Customer, error) {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != customer.Email {
			if err := s.ensureEmailFree(ctx, email, customer.ID); err != nil {
				return nil, err
			}
			customer.Email = email
		}
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.CustomerType != nil {
		if !req.CustomerType.IsValid() {
			return nil, fieldError("customerType", "Must be one of the allowed values")
		}
		customer.CustomerType = *req.CustomerType
	}
	if req.CompanyName != nil {
		customer.CompanyName = *req.CompanyName
	}
	if req.TaxID != nil {
		customer.TaxID = *req.TaxID
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func (s *CustomerService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Customer, error) {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.IsActive = active
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

// Delete removes a customer that has no orders
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	orders, err := s.customerRepo.CountOrders(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count customer orders: %w", err)
	}
	if orders > 0 {
		return ErrCustomerHasOrders
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	s.logger.Info("customer deleted", zap.String("customer_id", id.String()))
	return nil
}

func (s *CustomerService) List(ctx context.Context, filters *repository.CustomerFilters, opts repository.ListOptions) ([]domain.Customer, int64, error) {
	customers, total, err := s.customerRepo.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

// ---- Locations ----

func (s *CustomerService) ListLocations(ctx context.Context, customerID uuid.UUID) ([]domain.CustomerLocation, error) {
	if _, err := s.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.customerRepo.ListLocations(ctx, customerID)
}

// AddLocation adds a location. The first location of a customer is always the default.
func (s *CustomerService) AddLocation(ctx context.Context, customerID uuid.UUID, req *domain.CreateCustomerLocationRequest) (*domain.CustomerLocation, error) {
	customer, err := s.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	location := &domain.CustomerLocation{
		CustomerID:    customerID,
		Label:         req.Label,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		DeliveryNotes: req.DeliveryNotes,
		IsDefault:     req.IsDefault || len(customer.Locations) == 0,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.customerRepo.WithTx(tx)
		if err := repo.CreateLocation(ctx, location); err != nil {
			return err
		}
		if location.IsDefault {
			return repo.ClearDefaultLocation(ctx, customerID, location.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add location: %w", err)
	}
	return location, nil
}

func (s *CustomerService) UpdateLocation(ctx context.Context, customerID, locationID uuid.UUID, req *domain.UpdateCustomerLocationRequest) (*domain.CustomerLocation, error) {
	location, err := s.customerRepo.GetLocation(ctx, customerID, locationID)
	if err != nil {
		return nil, lookupError(err, ErrLocationNotFound, "customer location")
	}

	if req.Label != nil {
		location.Label = *req.Label
	}
	if req.Address != nil {
		location.Address = *req.Address
	}
	if req.City != nil {
		location.City = *req.City
	}
	if req.PostalCode != nil {
		location.PostalCode = *req.PostalCode
	}
	if req.DeliveryNotes != nil {
		location.DeliveryNotes = *req.DeliveryNotes
	}
	if req.IsDefault != nil {
		location.IsDefault = *req.IsDefault
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.customerRepo.WithTx(tx)
		if err := repo.UpdateLocation(ctx, location); err != nil {
			return err
		}
		if location.IsDefault {
			return repo.ClearDefaultLocation(ctx, customerID, location.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update location: %w", err)
	}
	return location, nil
}

// DeleteLocation removes a location that no delivery points at
func (s *CustomerService) DeleteLocation(ctx context.Context, customerID, locationID uuid.UUID) error {
	if _, err := s.customerRepo.GetLocation(ctx, customerID, locationID); err != nil {
		return lookupError(err, ErrLocationNotFound, "customer location")
	}
	used, err := s.customerRepo.CountLocationDeliveries(ctx, locationID)
	if err != nil {
		return fmt.Errorf("failed to count location deliveries: %w", err)
	}
	if used > 0 {
		return ErrLocationInUse
	}
	return s.customerRepo.DeleteLocation(ctx, customerID, locationID)
}

func (s *CustomerService) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	if email == "" {
		return nil
	}
	existing, err := s.customerRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil && existing.ID != self {
		return ErrDuplicateEmail
	}
	return nil
}
