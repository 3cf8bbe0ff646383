package auth

import (
	"context"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   domain.UserRole
	// System is true for requests authenticated with the API key
	System bool
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// HasPermission checks the role table for the user's role
func (u *UserContext) HasPermission(permission domain.Permission) bool {
	return Allowed(u.Role, permission)
}

// IsAdmin reports whether the user holds the admin role
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// ActorID returns a pointer to the user id for audit columns, nil for system requests
func (u *UserContext) ActorID() *uuid.UUID {
	if u == nil || u.System || u.UserID == uuid.Nil {
		return nil
	}
	id := u.UserID
	return &id
}

// ActorName returns the name recorded on inventory movements
func (u *UserContext) ActorName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
