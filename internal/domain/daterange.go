package domain

import (
	"strings"
	"time"
)

// DateRange is a named window used by list filters and reports
type DateRange string

const (
	DateRangeToday       DateRange = "today"
	DateRangeThisWeek    DateRange = "this_week"
	DateRangeThisMonth   DateRange = "this_month"
	DateRangeThisQuarter DateRange = "this_quarter"
	DateRangeAllTime     DateRange = "all_time"
)

// ParseDateRange returns the keyword for s, case-insensitively
func ParseDateRange(s string) (DateRange, bool) {
	switch r := DateRange(strings.ToLower(strings.TrimSpace(s))); r {
	case DateRangeToday, DateRangeThisWeek, DateRangeThisMonth, DateRangeThisQuarter, DateRangeAllTime:
		return r, true
	}
	return "", false
}

// Bounds returns the half-open window [start, end) containing now.
// bounded is false for all_time. Weeks start on Monday.
func (d DateRange) Bounds(now time.Time) (start, end time.Time, bounded bool) {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch d {
	case DateRangeToday:
		return day, day.AddDate(0, 0, 1), true
	case DateRangeThisWeek:
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), true
	case DateRangeThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), true
	case DateRangeThisQuarter:
		firstMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		start = time.Date(now.Year(), firstMonth, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 3, 0), true
	}
	return time.Time{}, time.Time{}, false
}

// DefaultReportPeriod is used when a report period is missing or malformed
const DefaultReportPeriod = "7d"

// ReportPeriod is a resolved report window
type ReportPeriod struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// Defaulted is true when the requested period was not understood
	Defaulted bool `json:"defaulted,omitempty"`
}

// Days returns the number of calendar days the period covers
func (p ReportPeriod) Days() int {
	d := int(p.End.Sub(p.Start).Hours() / 24)
	if d < 1 {
		return 1
	}
	return d
}

// ResolveReportPeriod maps "7d", "30d", "90d", "12m" or a date range keyword to a window
// ending now. all_time starts at the zero time. Anything else falls back to 7d.
func ResolveReportPeriod(s string, now time.Time) ReportPeriod {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 1)

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "7d":
		return ReportPeriod{Name: "7d", Start: end.AddDate(0, 0, -7), End: end}
	case "30d":
		return ReportPeriod{Name: "30d", Start: end.AddDate(0, 0, -30), End: end}
	case "90d":
		return ReportPeriod{Name: "90d", Start: end.AddDate(0, 0, -90), End: end}
	case "12m":
		return ReportPeriod{Name: "12m", Start: end.AddDate(0, -12, 0), End: end}
	}

	if r, ok := ParseDateRange(s); ok {
		if start, rangeEnd, bounded := r.Bounds(now); bounded {
			return ReportPeriod{Name: string(r), Start: start, End: rangeEnd}
		}
		return ReportPeriod{Name: string(r), Start: time.Time{}, End: end}
	}

	p := ResolveReportPeriod(DefaultReportPeriod, now)
	p.Defaulted = s != ""
	return p
}
