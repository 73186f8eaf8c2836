package classify

import (
	"strings"

	"github.com/kailas-cloud/mindvault/internal/domain/item"
)

const maxContentRunes = 800

const systemHint = "You classify items saved to a personal vault. Reply with one JSON object only."

func buildPrompt(in Input, visual bool) string {
	types := make([]string, 0, len(item.Types()))
	for _, t := range item.Types() {
		types = append(types, `"`+string(t)+`"`)
	}

	var b strings.Builder
	b.WriteString(systemHint)
	b.WriteString("\n\nTitle: " + in.Title)
	b.WriteString("\nURL: " + orDefault(in.URL, "N/A"))
	b.WriteString("\nType: " + orDefault(string(in.Type), "not specified"))
	b.WriteString("\nText Content: " + truncate(content(in), maxContentRunes))
	if visual {
		b.WriteString("\n\nThe attached image is the saved item. Describe what it shows.")
	}
	b.WriteString("\n\nReturn JSON:\n{\n")
	b.WriteString(`  "type": ` + strings.Join(types, " | ") + ",\n")
	b.WriteString(`  "reason": "` + strings.Join(item.Reasons(), `" | "`) + "\",\n")
	b.WriteString(`  "platform": "youtube" | "amazon" | "flipkart" | "instagram" | "chatgpt" | "medium" | "github" | "twitter" | "generic",` + "\n")
	b.WriteString(`  "topicAuto": "AI" | "productivity" | "travel" | "development" | "design" | etc.,` + "\n")
	b.WriteString(`  "keywords": ["keyword1", "keyword2", "keyword3"],` + "\n")
	if visual {
		b.WriteString(`  "summary": "one or two sentences about the image",` + "\n")
	}
	b.WriteString(`  "price": "₹1999" | "1999" | null` + "\n}\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Amazon and Flipkart URLs are usually products. Take the price from the text content.\n")
	b.WriteString("- Return the price as a number or a string with a currency symbol. Use null for non-products.\n")
	b.WriteString("- Keywords are 3 to 5 meaningful words describing the item, not common words.\n")
	b.WriteString("- Detect the platform from the URL, or infer it from the content.\n")
	return b.String()
}

// content picks the first non-empty body text.
func content(in Input) string {
	for _, s := range []string{in.PageText, in.SelectedText, in.Description} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
