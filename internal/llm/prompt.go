package llm

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxInputChars is the document text budget sent to a provider.
const DefaultMaxInputChars = 12000

// BuildPrompt composes the extraction instructions followed by the document
// text.
func BuildPrompt(text string) string {
	parts := []string{
		"You are a clinical laboratory report parser.",
		"Extract every test result from the document text below.",
		"Return ONLY a JSON array. Each element must be an object with exactly these keys:",
		`  "name": the test name as printed (string)`,
		`  "value": the numeric result, or null when the result is not a number`,
		`  "value_text": the result exactly as printed, including comparators such as < or >`,
		`  "unit": the unit as printed, or "" when none`,
		`  "reference_range": the reference range as printed, or "" when none`,
		`  "flag": one of "H", "L", "A", "C", or null`,
		"Do not invent results. Skip patient details, addresses and report metadata.",
		"",
		"Document text:",
		text,
	}
	return strings.Join(parts, "\n")
}

// TruncateText limits text to maxChars runes and reports whether it cut
// anything.
func TruncateText(text string, maxChars int) (string, bool) {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text, false
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i], true
		}
		n++
	}
	return text, false
}
