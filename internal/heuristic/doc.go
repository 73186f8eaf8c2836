// Package heuristic holds the deterministic fallbacks used when the language
// model is unavailable or answers with something that is not JSON: relative
// date resolution, filter and classification guessing from raw text, URL
// classification, and price extraction. Everything here is a pure function.
package heuristic
