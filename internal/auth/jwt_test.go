package auth_test

import (
	"testing"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenManager(issuer string, ttlMinutes int) *auth.TokenManager {
	return auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: "test-secret-with-enough-length",
		Issuer:    issuer,
		TokenTTL:  ttlMinutes,
	})
}

func testUser(role domain.UserRole) *domain.User {
	user := &domain.User{Email: "baker@example.com", Name: "Bea Baker", Role: role}
	user.ID = uuid.New()
	return user
}

// TestTokenManager_IssueAndValidate tests the round trip of an issued token
func TestTokenManager_IssueAndValidate(t *testing.T) {
	tokens := newTokenManager("bakery-api", 60)
	user := testUser(domain.RoleCashier)

	token, expiresAt, err := tokens.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	userCtx, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, user.Email, userCtx.Email)
	assert.Equal(t, domain.RoleCashier, userCtx.Role)
	assert.False(t, userCtx.System)
}

func TestTokenManager_Rejects(t *testing.T) {
	tokens := newTokenManager("bakery-api", 60)
	token, _, err := tokens.Issue(testUser(domain.RoleAdmin))
	require.NoError(t, err)

	t.Run("tampered signature", func(t *testing.T) {
		tampered := token[:len(token)-2] + "xx"
		_, err := tokens.Validate(tampered)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		_, err := newTokenManager("someone-else", 60).Validate(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Validate("not-a-token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := newTokenManager("bakery-api", -5)
		stale, _, err := expired.Issue(testUser(domain.RoleAdmin))
		require.NoError(t, err)

		_, err = expired.Validate(stale)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := auth.HashPassword("croissant-2024")
	require.NoError(t, err)
	assert.NotEqual(t, "croissant-2024", hash)
	assert.True(t, auth.CheckPassword(hash, "croissant-2024"))
	assert.False(t, auth.CheckPassword(hash, "baguette"))
}
