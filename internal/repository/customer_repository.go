package repository

import (
	"context"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerFilters defines filter options for customer listing
type CustomerFilters struct {
	CustomerType *domain.CustomerType
	IsActive     *bool
}

var customerSortableFields = map[string]string{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"name":         "name",
	"email":        "email",
	"customerType": "customer_type",
	"companyName":  "company_name",
}

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *CustomerRepository) WithTx(tx *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(customer).Error
}

// GetByID loads a customer with its locations
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).
		Preload("Locations", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_default DESC, label ASC")
		}).
		Where("id = ?", id).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetByEmail returns the customer owning email, or nil when there is none
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&customer).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(customer).Error
}

// Delete removes the customer and its locations
func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&domain.CustomerLocation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Customer{}, "id = ?", id).Error
	})
}

func (r *CustomerRepository) List(ctx context.Context, filters *CustomerFilters, opts ListOptions) ([]domain.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Customer{})
	query = applySearch(query, opts.Search, "name", "email", "phone", "company_name")
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil {
		if filters.CustomerType != nil {
			query = query.Where("customer_type = ?", *filters.CustomerType)
		}
		if filters.IsActive != nil {
			query = query.Where("is_active = ?", *filters.IsActive)
		}
	}

	var customers []domain.Customer
	total, err := paginate(query, opts, customerSortableFields, "created_at", &customers)
	return customers, total, err
}

// CountOrders returns how many orders reference the customer
func (r *CustomerRepository) CountOrders(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("customer_id = ?", id).Count(&count).Error
	return count, err
}

// ---- Locations ----

func (r *CustomerRepository) ListLocations(ctx context.Context, customerID uuid.UUID) ([]domain.CustomerLocation, error) {
	locations := []domain.CustomerLocation{}
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("is_default DESC, label ASC").
		Find(&locations).Error
	return locations, err
}

func (r *CustomerRepository) GetLocation(ctx context.Context, customerID, locationID uuid.UUID) (*domain.CustomerLocation, error) {
	var location domain.CustomerLocation
	err := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", locationID, customerID).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// GetLocationByID loads a location without checking its owner
func (r *CustomerRepository) GetLocationByID(ctx context.Context, locationID uuid.UUID) (*domain.CustomerLocation, error) {
	var location domain.CustomerLocation
	if err := r.db.WithContext(ctx).First(&location, "id = ?", locationID).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *CustomerRepository) CreateLocation(ctx context.Context, location *domain.CustomerLocation) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *CustomerRepository) UpdateLocation(ctx context.Context, location *domain.CustomerLocation) error {
	return r.db.WithContext(ctx).Save(location).Error
}

func (r *CustomerRepository) DeleteLocation(ctx context.Context, customerID, locationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", locationID, customerID).
		Delete(&domain.CustomerLocation{}).Error
}

// ClearDefaultLocation unsets the default flag on every location of the customer except keep
func (r *CustomerRepository) ClearDefaultLocation(ctx context.Context, customerID, keep uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.CustomerLocation{}).
		Where("customer_id = ? AND id <> ? AND is_default = ?", customerID, keep, true).
		Update("is_default", false).Error
}

// CountLocationDeliveries returns how many deliveries point at a location
func (r *CustomerRepository) CountLocationDeliveries(ctx context.Context, locationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Delivery{}).Where("customer_location_id = ?", locationID).Count(&count).Error
	return count, err
}
