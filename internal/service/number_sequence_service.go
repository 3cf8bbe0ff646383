package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crumbhouse/bakery-api/internal/repository"
	"go.uber.org/zap"
)

// Prefixes of human-readable document numbers
const (
	PrefixOrder         = "ORD"
	PrefixProduction    = "PRD"
	PrefixDelivery      = "DEL"
	PrefixPurchaseOrder = "PO"
)

// NumberSequenceService generates unique, formatted document numbers.
//
// Format: {PREFIX}-{YEAR}-{SEQUENCE}
// Example: ORD-2025-000042
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Generate returns the next number for prefix in the current UTC year.
// Call it before opening the transaction that stores the number.
func (s *NumberSequenceService) Generate(ctx context.Context, prefix string) (string, error) {
	year := s.now().UTC().Year()

	nextSeq, err := s.repo.GetNextNumber(ctx, prefix, year)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.String("prefix", prefix),
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate %s number: %w", prefix, err)
	}

	number := fmt.Sprintf("%s-%d-%06d", prefix, year, nextSeq)

	s.logger.Debug("generated number",
		zap.String("prefix", prefix),
		zap.String("number", number))

	return number, nil
}
