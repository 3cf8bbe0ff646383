package domain_test

import (
	"testing"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

// Wednesday 2025-05-14 15:30 UTC
var reference = time.Date(2025, time.May, 14, 15, 30, 0, 0, time.UTC)

func TestParseDateRange(t *testing.T) {
	r, ok := domain.ParseDateRange(" This_Week ")
	assert.True(t, ok)
	assert.Equal(t, domain.DateRangeThisWeek, r)

	_, ok = domain.ParseDateRange("yesterday")
	assert.False(t, ok)
}

func TestDateRange_Bounds(t *testing.T) {
	tests := []struct {
		name       string
		r          domain.DateRange
		start, end time.Time
	}{
		{"today", domain.DateRangeToday,
			time.Date(2025, 5, 14, 0, 0, 0, 0, time.UTC), time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)},
		{"week starts monday", domain.DateRangeThisWeek,
			time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC), time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC)},
		{"month", domain.DateRangeThisMonth,
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"quarter", domain.DateRangeThisQuarter,
			time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, bounded := tt.r.Bounds(reference)
			assert.True(t, bounded)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}

	_, _, bounded := domain.DateRangeAllTime.Bounds(reference)
	assert.False(t, bounded)
}

func TestDateRange_WeekOnSunday(t *testing.T) {
	sunday := time.Date(2025, 5, 18, 23, 0, 0, 0, time.UTC)
	start, _, _ := domain.DateRangeThisWeek.Bounds(sunday)
	assert.Equal(t, time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC), start)
}

func TestResolveReportPeriod(t *testing.T) {
	p := domain.ResolveReportPeriod("30d", reference)
	assert.Equal(t, "30d", p.Name)
	assert.Equal(t, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), p.End)
	assert.Equal(t, 30, p.Days())
	assert.False(t, p.Defaulted)

	p = domain.ResolveReportPeriod("this_month", reference)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), p.Start)

	p = domain.ResolveReportPeriod("fortnight", reference)
	assert.Equal(t, "7d", p.Name)
	assert.True(t, p.Defaulted)

	p = domain.ResolveReportPeriod("", reference)
	assert.Equal(t, "7d", p.Name)
	assert.False(t, p.Defaulted)

	p = domain.ResolveReportPeriod("all_time", reference)
	assert.True(t, p.Start.IsZero())
}
