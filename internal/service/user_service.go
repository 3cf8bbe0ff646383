package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles staff accounts and sign-in
type UserService struct {
	userRepo *repository.UserRepository
	tokens   *auth.TokenManager
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo *repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login checks the credentials and issues a bearer token
func (s *UserService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info("login rejected", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	user.LastLoginAt = &now

	return &domain.LoginResponse{
		Message:   "Login successful",
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// Me returns the account of the request user
func (s *UserService) Me(ctx context.Context) (*domain.User, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextMissing
	}
	if userCtx.System {
		return &domain.User{
			BaseModel: domain.BaseModel{ID: userCtx.UserID},
			Email:     userCtx.Email,
			Name:      userCtx.Name,
			Role:      userCtx.Role,
			IsActive:  true,
		}, nil
	}
	return s.GetByID(ctx, userCtx.UserID)
}

// ChangePassword replaces the request user's password after checking the current one
func (s *UserService) ChangePassword(ctx context.Context, req *domain.ChangePasswordRequest) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok || userCtx.System {
		return ErrUserContextMissing
	}
	user, err := s.GetByID(ctx, userCtx.UserID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return fieldError("currentPassword", "Current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.logger.Info("password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	if !req.Role.IsValid() {
		return nil, fieldError("role", "Must be one of the allowed values")
	}
	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrUserNotFound, "user")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateUserRequest) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, fieldError("role", "Must be one of the allowed values")
		}
		user.Role = *req.Role
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// SetActive enables or disables sign-in for a user
func (s *UserService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if userCtx, ok := auth.FromContext(ctx); ok && userCtx.UserID == id && !active {
		return nil, fieldError("isActive", "You cannot deactivate your own account")
	}
	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes a user. The request user cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if userCtx, ok := auth.FromContext(ctx); ok && userCtx.UserID == id {
		return ErrCannotDeleteSelf
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *UserService) List(ctx context.Context, filters *repository.UserFilters, opts repository.ListOptions) ([]domain.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing.ID != self {
		return ErrDuplicateEmail
	}
	return nil
}
