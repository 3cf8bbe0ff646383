package repository

import (
	"context"
	"fmt"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository hands out per-prefix, per-year sequence numbers
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// GetNextNumber atomically increments and returns the sequence for prefix/year.
// The row is locked with SELECT FOR UPDATE; a missing row starts at 1.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, prefix string, year int) (int, error) {
	var nextSeq int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("prefix = ? AND year = ?", prefix, year).
			First(&seq)

		switch {
		case IsNotFound(result.Error):
			seq = domain.NumberSequence{Prefix: prefix, Year: year, LastSequence: 1}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			nextSeq = 1
		case result.Error != nil:
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		default:
			nextSeq = seq.LastSequence + 1
			if err := tx.Model(&seq).Update("last_sequence", nextSeq).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return nextSeq, nil
}

// GetCurrentSequence returns the last issued value, 0 if none was issued
func (r *NumberSequenceRepository) GetCurrentSequence(ctx context.Context, prefix string, year int) (int, error) {
	var seq domain.NumberSequence
	err := r.db.WithContext(ctx).
		Where("prefix = ? AND year = ?", prefix, year).
		First(&seq).Error
	if IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", err)
	}
	return seq.LastSequence, nil
}
