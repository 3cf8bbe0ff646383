package repository

import (
	"context"
	"strings"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserFilters defines filter options for user listing
type UserFilters struct {
	Role     *domain.UserRole
	IsActive *bool
}

var userSortableFields = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"name":        "name",
	"email":       "email",
	"role":        "role",
	"lastLoginAt": "last_login_at",
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail looks a user up by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id).Error
}

// UpdateLastLogin stamps the last successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// List returns a page of users matching filters
func (r *UserRepository) List(ctx context.Context, filters *UserFilters, opts ListOptions) ([]domain.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.User{})
	query = applySearch(query, opts.Search, "name", "email")
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil {
		if filters.Role != nil {
			query = query.Where("role = ?", *filters.Role)
		}
		if filters.IsActive != nil {
			query = query.Where("is_active = ?", *filters.IsActive)
		}
	}

	var users []domain.User
	total, err := paginate(query, opts, userSortableFields, "created_at", &users)
	return users, total, err
}

// ListActiveByRoles returns the active users holding any of roles
func (r *UserRepository) ListActiveByRoles(ctx context.Context, roles ...domain.UserRole) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("role IN ? AND is_active = ?", roles, true).
		Order("name ASC").
		Find(&users).Error
	return users, err
}
