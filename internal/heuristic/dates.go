package heuristic

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/mindvault/internal/domain/search/query"
)

var (
	lastNDaysRe = regexp.MustCompile(`\b(?:last|past)\s+(\d{1,3})\s+days?\b`)
	lastWeekRe  = regexp.MustCompile(`\blast\s+week\b`)
	thisWeekRe  = regexp.MustCompile(`\b(?:this|past)\s+week\b`)
	lastMonthRe = regexp.MustCompile(`\blast\s+month\b`)
	thisMonthRe = regexp.MustCompile(`\bthis\s+month\b`)
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	ordinalRe   = regexp.MustCompile(`^\d{1,2}(?:st|nd|rd|th)$`)
	monthNames  = map[string]bool{
		"jan": true, "january": true, "feb": true, "february": true, "mar": true, "march": true,
		"apr": true, "april": true, "may": true, "jun": true, "june": true, "jul": true, "july": true,
		"aug": true, "august": true, "sep": true, "sept": true, "september": true, "oct": true,
		"october": true, "nov": true, "november": true, "dec": true, "december": true,
	}
	dateWords = map[string]bool{
		"today": true, "yesterday": true, "tomorrow": true, "week": true, "weeks": true,
		"month": true, "months": true, "year": true, "years": true, "day": true, "days": true,
		"ago": true, "last": true, "this": true, "past": true, "recent": true, "recently": true,
	}
)

// ResolveRelativeDate finds a relative date phrase in text and resolves it
// against today's calendar day:
//
//	today, yesterday   the literal day
//	this week          the last 7 days, today included (also "past week")
//	last week          7 to 14 days ago
//	this month         from the 1st of the current month
//	last month         the previous calendar month
//	last/past N days   the last N days
//
// The upper bound always extends to the end of its day.
func ResolveRelativeDate(text string, today time.Time) (query.DateRange, bool) {
	t := strings.ToLower(text)
	day := query.StartOfDay(today)

	span := func(from, to time.Time) (query.DateRange, bool) {
		return query.DayRange(&from, &to), true
	}

	if m := lastNDaysRe.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return span(day.AddDate(0, 0, -n), day)
		}
	}
	switch {
	case lastWeekRe.MatchString(t):
		return span(day.AddDate(0, 0, -14), day.AddDate(0, 0, -7))
	case thisWeekRe.MatchString(t):
		return span(day.AddDate(0, 0, -7), day)
	case lastMonthRe.MatchString(t):
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return span(first.AddDate(0, -1, 0), first.AddDate(0, 0, -1))
	case thisMonthRe.MatchString(t):
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return span(first, day)
	case containsWord(t, "yesterday"):
		y := day.AddDate(0, 0, -1)
		return span(y, y)
	case containsWord(t, "today"):
		return span(day, day)
	}
	return query.DateRange{}, false
}

// IsDateTerm reports whether a keyword candidate is a date or a date word.
func IsDateTerm(s string) bool {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), ".,"))
	if s == "" {
		return false
	}
	if isoDateRe.MatchString(s) || ordinalRe.MatchString(s) || monthNames[s] || dateWords[s] {
		return true
	}
	for _, f := range strings.Fields(s) {
		if !(monthNames[f] || dateWords[f] || ordinalRe.MatchString(f) || isNumber(f)) {
			return false
		}
	}
	return strings.Contains(s, " ")
}

func containsWord(text, word string) bool {
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		if f == word {
			return true
		}
	}
	return false
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
