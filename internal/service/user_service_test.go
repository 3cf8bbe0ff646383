package service_test

import (
	"testing"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/service"
	"github.com/crumbhouse/bakery-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUserService_Login tests credential checks and token issuing
func TestUserService_Login(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()

	created, err := s.users.Create(ctx, &domain.CreateUserRequest{
		Email:    "  Kari@Bakery.example ",
		Name:     "Kari",
		Password: "rye-and-honey",
		Role:     domain.RoleCashier,
	})
	require.NoError(t, err)
	assert.Equal(t, "kari@bakery.example", created.Email)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := s.users.Login(ctx, &domain.LoginRequest{Email: "kari@bakery.example", Password: "rye-and-honey"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, created.ID, resp.User.ID)
		assert.NotNil(t, resp.User.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.users.Login(ctx, &domain.LoginRequest{Email: "kari@bakery.example", Password: "wrong-password"})
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := s.users.Login(ctx, &domain.LoginRequest{Email: "nobody@bakery.example", Password: "rye-and-honey"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		_, err := s.users.SetActive(ctx, created.ID, false)
		require.NoError(t, err)

		_, err = s.users.Login(ctx, &domain.LoginRequest{Email: "kari@bakery.example", Password: "rye-and-honey"})
		assert.ErrorIs(t, err, service.ErrUserInactive)
	})
}

func TestUserService_CreateDuplicateEmail(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()
	testutil.CreateUser(t, s.db, "ola@bakery.example", "password-1", domain.RoleSalesStaff)

	_, err := s.users.Create(ctx, &domain.CreateUserRequest{
		Email:    "OLA@bakery.example",
		Name:     "Ola",
		Password: "password-2",
		Role:     domain.RoleSalesStaff,
	})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestUserService_SelfProtection(t *testing.T) {
	s := setupServices(t)
	admin := testutil.CreateUser(t, s.db, "admin@bakery.example", "password-1", domain.RoleAdmin)
	ctx := testutil.ContextForUser(admin)

	assert.ErrorIs(t, s.users.Delete(ctx, admin.ID), service.ErrConflict)
	_, err := s.users.SetActive(ctx, admin.ID, false)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestUserService_ChangePassword(t *testing.T) {
	s := setupServices(t)
	user := testutil.CreateUser(t, s.db, "baker@bakery.example", "old-password", domain.RoleProductionManager)
	ctx := testutil.ContextForUser(user)

	err := s.users.ChangePassword(ctx, &domain.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "new-password"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	require.NoError(t, s.users.ChangePassword(ctx, &domain.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password"}))
	_, err = s.users.Login(ctx, &domain.LoginRequest{Email: user.Email, Password: "new-password"})
	assert.NoError(t, err)
}
