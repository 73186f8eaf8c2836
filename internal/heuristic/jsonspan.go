package heuristic

import (
	"encoding/json"
	"strings"
)

// FirstObject returns the first well-formed JSON object embedded in text.
// Model output often wraps the object in prose or code fences; anything
// before the object and after its closing brace is ignored.
func FirstObject(text string) (json.RawMessage, bool) {
	for i := strings.IndexByte(text, '{'); i >= 0; {
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err == nil {
			return raw, true
		}
		next := strings.IndexByte(text[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, false
}
