package heuristic

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Ordered from most to least specific; the first positive match wins.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`₹\s?(\d{1,3}(?:,\d{2,3})+(?:\.\d{2})?)`),
	regexp.MustCompile(`₹\s?(\d+(?:\.\d{2})?)`),
	regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+(?:\.\d{2})?)`),
	regexp.MustCompile(`\$\s?(\d+(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)\brs\.?\s?(\d[\d,]*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)\binr\s?(\d[\d,]*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)\bprice[:\s]+₹?\s?(\d[\d,]*(?:\.\d{2})?)`),
}

var leadingNumberRe = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)`)

// ExtractPrice finds the first currency amount in free text, rounded to a whole unit.
func ExtractPrice(text string) (float64, bool) {
	for _, re := range pricePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err == nil && v > 0 {
			return math.Round(v), true
		}
	}
	return 0, false
}

// ParsePrice reads a model- or user-supplied price: a number, or a string
// such as "₹1,999", "$29.99" or "1999". "null" and empty values are absent.
func ParsePrice(v any) (float64, bool) {
	switch p := v.(type) {
	case float64:
		return p, p > 0
	case int:
		return float64(p), p > 0
	case string:
		s := strings.TrimSpace(p)
		if s == "" || strings.EqualFold(s, "null") {
			return 0, false
		}
		m := leadingNumberRe.FindStringSubmatch(s)
		if m == nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil || f <= 0 {
			return 0, false
		}
		return f, true
	case fmt.Stringer:
		return ParsePrice(p.String())
	}
	return 0, false
}
