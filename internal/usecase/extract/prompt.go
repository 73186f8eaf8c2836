package extract

import (
	"strings"
	"time"

	"github.com/kailas-cloud/mindvault/internal/domain/item"
)

const systemHint = "You turn search queries over a personal bookmark vault into filters. Reply with one JSON object only."

// buildPrompt asks for the filter facets of q. today anchors relative dates.
func buildPrompt(q string, today time.Time) string {
	types := make([]string, 0, len(item.Types()))
	for _, t := range item.Types() {
		types = append(types, string(t))
	}

	var b strings.Builder
	b.WriteString(systemHint)
	b.WriteString("\n\nToday is ")
	b.WriteString(today.Format(time.DateOnly))
	b.WriteString(".\nQuery: \"")
	b.WriteString(q)
	b.WriteString("\"\n\nReturn these fields, null when the query does not mention them:\n")
	b.WriteString("- type: one of " + strings.Join(types, ", ") + "\n")
	b.WriteString("- topic: e.g. AI, travel, coding, design, shopping, productivity, development\n")
	b.WriteString("- reason: one of \"" + strings.Join(item.Reasons(), "\", \"") + "\"\n")
	b.WriteString("- priceRange: [min, max] as plain numbers without currency symbols\n")
	b.WriteString("- keywords: important search words, never dates or prices\n")
	b.WriteString("- dateRange: {\"from\": \"YYYY-MM-DD\", \"to\": \"YYYY-MM-DD\"}\n\n")
	b.WriteString("Date rules relative to today:\n")
	b.WriteString("- \"this week\" means the last 7 days\n")
	b.WriteString("- \"last week\" means 7 to 14 days ago\n")
	b.WriteString("- \"this month\" starts on day 1 of the current month\n")
	b.WriteString("- \"last month\" is the whole previous calendar month\n")
	b.WriteString("- \"today\" and \"yesterday\" are single dates\n")
	b.WriteString("If no date is mentioned, dateRange is null.\n\n")
	b.WriteString(`Example: {"type":"product","topic":null,"reason":null,"priceRange":[0,3000],"keywords":["headphones"],"dateRange":null}`)
	return b.String()
}
