package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"gorm.io/gorm"
)

const (
	// MaxPageSize is the maximum allowed page size for paginated queries
	MaxPageSize = 100
	// DefaultPageSize is used when the caller does not ask for a page size
	DefaultPageSize = 10
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // The field to sort by (API field name)
	Order SortOrder // asc or desc
}

// DefaultSortConfig returns a default sort configuration (createdAt DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "createdAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the SQL ORDER BY clause from field mapping and sort config.
// fieldMap maps API field names to database column names; unknown fields sort by defaultColumn DESC.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		return defaultColumn + " DESC"
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// ListOptions carries the options shared by every list query
type ListOptions struct {
	Page      int
	Limit     int
	Search    string
	DateRange domain.DateRange
	Sort      SortConfig
	// Now anchors the date range; zero means time.Now
	Now time.Time
}

// NormalizePage clamps page and limit to the allowed range
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// applySearch adds a case-insensitive substring match over columns
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + strings.ToLower(search) + "%"
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// applyDateRange restricts column to the window of the keyword; all_time is a no-op
func applyDateRange(query *gorm.DB, column string, r domain.DateRange, now time.Time) *gorm.DB {
	if r == "" {
		return query
	}
	if now.IsZero() {
		now = time.Now()
	}
	start, end, bounded := r.Bounds(now)
	if !bounded {
		return query
	}
	return query.Where(column+" >= ? AND "+column+" < ?", start, end)
}

// paginate counts the filtered query and loads one page of it into dest.
// A page past the end yields an empty slice and the real total.
// Preloads are applied to the page query only; gorm refuses Count with Preload.
func paginate[T any](query *gorm.DB, opts ListOptions, fieldMap map[string]string, defaultColumn string, dest *[]T, preloads ...string) (int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}

	page, limit := NormalizePage(opts.Page, opts.Limit)
	orderClause := BuildOrderClause(opts.Sort, fieldMap, defaultColumn)

	find := query.Session(&gorm.Session{})
	for _, p := range preloads {
		find = find.Preload(p)
	}

	offset := (page - 1) * limit
	if err := find.Offset(offset).Limit(limit).Order(orderClause).Find(dest).Error; err != nil {
		return 0, err
	}
	if *dest == nil {
		*dest = []T{}
	}
	return total, nil
}

// IsNotFound reports whether err is gorm's record-not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports whether err is a unique constraint violation
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
