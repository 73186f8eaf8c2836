package query

import (
	"fmt"
	"strings"
	"time"
)

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last millisecond of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// ParseDay parses an ISO date (2006-01-02) in loc, or a full RFC 3339 timestamp.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}

// DayRange builds a range from optional day bounds; to extends to the end of its day.
func DayRange(from, to *time.Time) DateRange {
	var r DateRange
	if from != nil {
		f := *from
		r.From = &f
	}
	if to != nil {
		t := EndOfDay(*to)
		r.To = &t
	}
	return r
}

// NamedRange is a predefined look-back window.
type NamedRange string

// Predefined windows.
const (
	RangeAll   NamedRange = "all"
	RangeToday NamedRange = "today"
	RangeWeek  NamedRange = "week"
	RangeMonth NamedRange = "month"
	RangeYear  NamedRange = "year"
)

// IsValid reports whether r is a known window.
func (r NamedRange) IsValid() bool {
	switch r {
	case RangeAll, RangeToday, RangeWeek, RangeMonth, RangeYear:
		return true
	}
	return false
}

// Resolve turns the window into an open-ended range starting relative to now.
// RangeAll resolves to false.
func (r NamedRange) Resolve(now time.Time) (DateRange, bool) {
	var from time.Time
	switch r {
	case RangeToday:
		from = StartOfDay(now)
	case RangeWeek:
		from = now.AddDate(0, 0, -7)
	case RangeMonth:
		from = now.AddDate(0, 0, -30)
	case RangeYear:
		from = now.AddDate(0, 0, -365)
	default:
		return DateRange{}, false
	}
	return DateRange{From: &from, Label: string(r)}, true
}
