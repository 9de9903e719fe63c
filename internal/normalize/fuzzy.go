package normalize

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// indel weighs a substitution as a deletion plus an insertion, so that
// Similarity yields 1 - distance/(len(a)+len(b)).
var indel = levenshtein.NewParams().SubCost(2)

// Ratio is the normalized indel similarity of a and b in [0,1].
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		if a == b {
			return 1
		}
		return 0
	}
	return levenshtein.Similarity(a, b, indel)
}

// PartialRatio is the best Ratio of the shorter string against every
// equally long window of the longer one.
func PartialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	s := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := Ratio(s, string(long[i:i+len(short)]))
		if r > best {
			best = r
			if best == 1 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio compares the strings after sorting their words.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared words against each side's remainder.
func TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	var inter, onlyA, onlyB []string
	for t := range ta {
		if tb[t] {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if !ta[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(inter, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := Ratio(withA, withB)
	if base != "" {
		best = max(best, Ratio(base, withA), Ratio(base, withB))
	}
	return best
}

// WeightedRatio combines the ratios above, preferring partial matching
// when the lengths differ substantially.
func WeightedRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	base := Ratio(a, b)
	la, lb := len([]rune(a)), len([]rune(b))
	lenRatio := float64(max(la, lb)) / float64(min(la, lb))

	const unbase = 0.95
	if lenRatio < 1.5 {
		return max(base, TokenSortRatio(a, b)*unbase, TokenSetRatio(a, b)*unbase)
	}

	partialScale := 0.9
	if lenRatio > 8 {
		partialScale = 0.6
	}
	return max(base,
		PartialRatio(a, b)*partialScale,
		TokenSortRatio(a, b)*unbase*partialScale,
		TokenSetRatio(a, b)*unbase*partialScale,
	)
}

func sortedTokens(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, f := range strings.Fields(s) {
		out[f] = true
	}
	return out
}
