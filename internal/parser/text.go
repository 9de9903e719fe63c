package parser

import (
	"strings"
	"unicode/utf8"

	"labparse/internal/domain"
)

// SplitPages splits text on the page-break marker. A trailing empty page
// left by a final marker is dropped.
func SplitPages(text string) []string {
	pages := strings.Split(text, domain.PageBreak)
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages
}

// Head returns at most n leading runes of text.
func Head(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

// ContainsAny reports whether lower-cased haystack contains any needle.
// Needles are expected in lower case.
func ContainsAny(haystack string, needles ...string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(h, n) {
			return true
		}
	}
	return false
}

// CountDistinct counts how many needles occur in the lower-cased haystack.
func CountDistinct(haystack string, needles ...string) int {
	h := strings.ToLower(haystack)
	n := 0
	for _, needle := range needles {
		if strings.Contains(h, needle) {
			n++
		}
	}
	return n
}
