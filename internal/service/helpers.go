package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/shopspring/decimal"
)

// lookupError maps a repository lookup failure to notFound or a wrapped error
func lookupError(err error, notFound error, what string) error {
	if repository.IsNotFound(err) {
		return notFound
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// stockError converts repository stock errors to service errors, passing others through
func stockError(err error) error {
	var shortage *repository.ShortageError
	if errors.As(err, &shortage) {
		return &InsufficientStockError{Available: shortage.Available, Requested: shortage.Requested}
	}
	if errors.Is(err, repository.ErrSameWarehouse) {
		return fieldError("destinationWarehouseId", "must differ from the source warehouse")
	}
	if errors.Is(err, repository.ErrReleaseExceedsReserved) {
		return fieldError("quantity", "exceeds the reserved quantity")
	}
	return err
}

func isStockError(err error) bool {
	var shortage *repository.ShortageError
	return errors.As(err, &shortage) ||
		errors.Is(err, repository.ErrSameWarehouse) ||
		errors.Is(err, repository.ErrReleaseExceedsReserved)
}

// movementInfo fills the actor columns of a movement from the request user
func movementInfo(ctx context.Context, reference, notes string) repository.MovementInfo {
	info := repository.MovementInfo{Reference: reference, Notes: notes}
	if userCtx, ok := auth.FromContext(ctx); ok {
		info.PerformedByID = userCtx.ActorID()
		info.PerformedByName = userCtx.ActorName()
	}
	return info
}

func requireNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fieldError(field, "must not be negative")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func transitionError[S ~string](entity string, from, to S) error {
	return &TransitionError{Entity: entity, From: string(from), To: string(to)}
}
