package normalize

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and collapses every non-alphanumeric run into a
// single underscore, trimming leading and trailing underscores.
func Slugify(s string) string {
	s = strings.ToLower(Key(s))
	return strings.Trim(nonAlnum.ReplaceAllString(s, "_"), "_")
}
