package heuristic

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/query"
)

var (
	typeWordRe = regexp.MustCompile(`(?i)\b(videos?|products?|images?|gifs?|voice|notes?|links?|pdfs?|docs?|social)\b`)
	capWordRe  = regexp.MustCompile(`\b([A-Z][A-Za-z0-9+#.-]*[A-Za-z0-9+#])\b`)
	ltPriceRe  = regexp.MustCompile(`(?i)\b(?:under|below|less than|upto|up to|within|cheaper than|max)\s*(?:₹|\$|rs\.?|inr)?\s*(\d[\d,]*(?:\.\d+)?)`)
	gtPriceRe  = regexp.MustCompile(`(?i)\b(?:over|above|more than|at least|min)\s*(?:₹|\$|rs\.?|inr)?\s*(\d[\d,]*(?:\.\d+)?)`)
	btPriceRe  = regexp.MustCompile(`(?i)(?:between\s*)?(?:₹|\$|rs\.?|inr)\s*(\d[\d,]*(?:\.\d+)?)\s*(?:-|to|and)\s*(?:₹|\$|rs\.?|inr)?\s*(\d[\d,]*(?:\.\d+)?)`)
	rangeArrRe = regexp.MustCompile(`(?i)price_?range["']?\s*[:=]\s*\[\s*["']?[₹$]?(\d[\d,]*(?:\.\d+)?)["']?\s*,\s*["']?[₹$]?(\d[\d,]*(?:\.\d+)?)`)
	fromDateRe = regexp.MustCompile(`(?i)["']?\bfrom\b["']?\s*[:=]\s*["']?(\d{4}-\d{2}-\d{2})`)
	toDateRe   = regexp.MustCompile(`(?i)["']?\bto\b["']?\s*[:=]\s*["']?(\d{4}-\d{2}-\d{2})`)
)

// Topics the model is prompted with; matched case-insensitively as whole words.
var knownTopics = []string{
	"AI", "travel", "coding", "design", "shopping", "productivity", "development",
	"finance", "health", "fitness", "food", "music", "education", "news", "gaming",
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"by": true, "for": true, "from": true, "has": true, "i": true, "in": true, "is": true,
	"it": true, "its": true, "me": true, "my": true, "of": true, "on": true, "or": true,
	"show": true, "that": true, "the": true, "their": true, "them": true, "there": true,
	"these": true, "this": true, "those": true, "to": true, "user": true, "was": true,
	"what": true, "which": true, "with": true, "json": true, "null": true, "here": true,
	"query": true, "type": true, "topic": true, "reason": true, "keywords": true,
	"saved": true, "items": true, "find": true, "looking": true, "want": true, "all": true,
	"later": true, "stuff": true, "things": true, "about": true, "some": true, "any": true,
}

// labelled finds `key: value` or `"key": "value"` in loosely structured text.
func labelled(text, key string) (string, bool) {
	re := regexp.MustCompile(`(?i)["']?\b` + regexp.QuoteMeta(key) + `\b["']?\s*[:=]\s*["']?([^"'\n,}\]]+)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	v := m[1]
	if i := strings.Index(v, ". "); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(v), ".;"))
	if v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "none") {
		return "", false
	}
	return v, true
}

// labelledList finds `key: [a, b]` or `key: a, b` and returns the trimmed elements.
func labelledList(text, key string) []string {
	re := regexp.MustCompile(`(?i)["']?\b` + regexp.QuoteMeta(key) + `\b["']?\s*[:=]\s*\[?([^\]\n}]*)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var out []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" && !strings.EqualFold(part, "null") {
			out = append(out, part)
		}
	}
	return out
}

// GuessType returns the first item type named in text, labelled or not.
// "text" is only accepted when labelled, since it is too common in prose.
func GuessType(text string) (item.Type, bool) {
	if v, ok := labelled(text, "type"); ok {
		if t, ok := item.ParseType(v); ok {
			return t, true
		}
	}
	m := typeWordRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	w := strings.ToLower(m[1])
	if w != "voice" && w != "social" {
		w = strings.TrimSuffix(w, "s")
	}
	return item.ParseType(w)
}

// GuessReason returns a known intent label found in text.
func GuessReason(text string) (string, bool) {
	if v, ok := labelled(text, "reason"); ok && item.IsKnownReason(v) {
		return strings.ToLower(v), true
	}
	lower := strings.ToLower(text)
	for _, r := range item.Reasons() {
		if strings.Contains(lower, r) {
			return r, true
		}
	}
	return "", false
}

// GuessTopic prefers a labelled topic, then a known topic word, then the
// first capitalized non-stopword that does not start a sentence.
func GuessTopic(text string) (string, bool) {
	for _, key := range []string{"topic", "topicAuto", "category"} {
		if v, ok := labelled(text, key); ok {
			return v, true
		}
	}
	for _, topic := range knownTopics {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(topic) + `\b`)
		if re.MatchString(text) {
			return topic, true
		}
	}
	for _, loc := range capWordRe.FindAllStringSubmatchIndex(text, -1) {
		w := text[loc[2]:loc[3]]
		if stopWords[strings.ToLower(w)] || startsSentence(text, loc[2]) {
			continue
		}
		if _, isType := item.ParseType(w); isType || IsDateTerm(w) {
			continue
		}
		return w, true
	}
	return "", false
}

// GuessPriceRange reads a labelled price range or a comparative phrase
// ("under ₹3000", "over $50", "₹100-500"). Currency symbols are dropped.
func GuessPriceRange(text string) (query.PriceRange, bool) {
	if m := rangeArrRe.FindStringSubmatch(text); m != nil {
		return query.NewPriceRange(num(m[1]), num(m[2])), true
	}
	if m := btPriceRe.FindStringSubmatch(text); m != nil {
		return query.NewPriceRange(num(m[1]), num(m[2])), true
	}
	if m := ltPriceRe.FindStringSubmatch(text); m != nil {
		return query.NewPriceRange(0, num(m[1])), true
	}
	if m := gtPriceRe.FindStringSubmatch(text); m != nil {
		return query.PriceRange{Min: num(m[1]), Max: math.Inf(1)}, true
	}
	return query.PriceRange{}, false
}

// GuessKeywords returns labelled keywords, without dates, capped at item.MaxKeywords.
func GuessKeywords(text string) []string {
	return CleanKeywords(labelledList(text, "keywords"))
}

// CleanKeywords drops blanks, duplicates, dates and prices and caps the list.
func CleanKeywords(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, k := range in {
		k = strings.TrimSpace(k)
		lk := strings.ToLower(k)
		if k == "" || seen[lk] || IsDateTerm(k) || isPriceTerm(k) {
			continue
		}
		seen[lk] = true
		out = append(out, k)
		if len(out) == item.MaxKeywords {
			break
		}
	}
	return out
}

// GuessDateRange reads labelled ISO from/to dates, else a relative phrase.
func GuessDateRange(text string, today time.Time) (query.DateRange, bool) {
	var from, to *time.Time
	if m := fromDateRe.FindStringSubmatch(text); m != nil {
		if t, err := query.ParseDay(m[1], today.Location()); err == nil {
			from = &t
		}
	}
	if m := toDateRe.FindStringSubmatch(text); m != nil {
		if t, err := query.ParseDay(m[1], today.Location()); err == nil {
			to = &t
		}
	}
	if from != nil || to != nil {
		return query.DayRange(from, to), true
	}
	return ResolveRelativeDate(text, today)
}

// GuessFilter extracts a best-guess QueryFilter from raw text, typically a
// model reply that did not contain a JSON object. Every facet is tagged extracted.
func GuessFilter(text string, today time.Time) query.Filter {
	var f query.Filter
	if t, ok := GuessType(text); ok {
		f.Type = query.Extracted(t)
	}
	if v, ok := GuessTopic(text); ok {
		f.Topic = query.Extracted(v)
	}
	if v, ok := GuessReason(text); ok {
		f.Reason = query.Extracted(v)
	}
	if p, ok := GuessPriceRange(text); ok {
		f.Price = query.Extracted(p)
	}
	if kw := GuessKeywords(text); len(kw) > 0 {
		f.Keywords = query.Extracted(kw)
	}
	if d, ok := GuessDateRange(text, today); ok {
		f.Dates = query.Extracted(d)
	}
	return f
}

// GuessClassification extracts a best-guess classification from raw text.
// It never fails; unknown fields keep the defaults (text, "to view later", "general").
func GuessClassification(text string) item.Classification {
	c := item.DefaultClassification()
	if v, ok := labelled(text, "type"); ok {
		if t, ok := item.ParseType(v); ok {
			c.Type = t
		}
	}
	if v, ok := GuessReason(text); ok {
		c.Reason = v
	}
	if v, ok := labelled(text, "platform"); ok {
		c.Platform = strings.ToLower(v)
	}
	if v, ok := labelled(text, "topicAuto"); ok {
		c.TopicAuto = v
	}
	if v, ok := labelled(text, "summary"); ok {
		c.Summary = v
	}
	if v, ok := labelled(text, "price"); ok {
		if p, ok := ParsePrice(v); ok {
			c.Price = &p
		}
	}
	c.Keywords = GuessKeywords(text)
	return c
}

func startsSentence(text string, at int) bool {
	i := at - 1
	for i >= 0 && (text[i] == ' ' || text[i] == '\t' || text[i] == '"' || text[i] == '\'') {
		i--
	}
	return i < 0 || text[i] == '.' || text[i] == '!' || text[i] == '?' || text[i] == '\n'
}

func isPriceTerm(s string) bool {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "₹$") {
		return true
	}
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return err == nil
}

func num(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return v
}
