package normalize

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// ExactScore is the score of an exact alias hit.
	ExactScore = 1.0
	// OverlapScore is the score of a containment match.
	OverlapScore = 0.92
	// FuzzyThreshold is the minimum weighted-ratio similarity accepted.
	FuzzyThreshold = 0.85

	minOverlapLen = 6
	minFuzzyLen   = 3
)

// Dictionary resolves raw marker names to canonical identifiers.
// It is immutable after construction and safe for concurrent use.
type Dictionary struct {
	exact     map[string]string
	keys      []string
	aliases   map[string][]string
	conflicts []string
}

// NewDictionary builds a dictionary from canonical -> aliases.
// Each canonical identifier is registered as an alias of itself.
func NewDictionary(aliases map[string][]string) *Dictionary {
	d := &Dictionary{
		exact:   make(map[string]string),
		aliases: make(map[string][]string, len(aliases)),
	}

	canonicals := make([]string, 0, len(aliases))
	for c := range aliases {
		canonicals = append(canonicals, c)
	}
	sort.Strings(canonicals)

	for _, canonical := range canonicals {
		all := append([]string{canonical}, aliases[canonical]...)
		d.aliases[canonical] = all
		for _, a := range all {
			k := Key(a)
			if k == "" {
				continue
			}
			if prev, ok := d.exact[k]; ok {
				if prev != canonical {
					d.conflicts = append(d.conflicts,
						fmt.Sprintf("alias %q claimed by %s and %s", a, prev, canonical))
				}
				continue
			}
			d.exact[k] = canonical
		}
	}

	d.keys = make([]string, 0, len(d.exact))
	for k := range d.exact {
		d.keys = append(d.keys, k)
	}
	sort.Slice(d.keys, func(i, j int) bool {
		if len(d.keys[i]) != len(d.keys[j]) {
			return len(d.keys[i]) > len(d.keys[j])
		}
		return d.keys[i] < d.keys[j]
	})
	return d
}

var defaultDictionary = NewDictionary(markerAliases)

// Default returns the built-in marker dictionary.
func Default() *Dictionary {
	return defaultDictionary
}

// NormalizeMarkerName resolves raw against the built-in dictionary.
func NormalizeMarkerName(raw string) (string, float64) {
	return defaultDictionary.Resolve(raw)
}

// Resolve returns the canonical identifier for raw and a match score.
// An unresolved name returns ("", 0).
func (d *Dictionary) Resolve(raw string) (string, float64) {
	k := Key(raw)
	if k == "" {
		return "", 0
	}

	if c, ok := d.exact[k]; ok {
		return c, ExactScore
	}

	if len(k) >= minOverlapLen {
		for _, alias := range d.keys {
			if len(alias) >= minOverlapLen && strings.Contains(k, alias) {
				return d.exact[alias], OverlapScore
			}
		}
		for _, alias := range d.keys {
			if strings.Contains(alias, k) {
				return d.exact[alias], OverlapScore
			}
		}
	}

	if len([]rune(k)) < minFuzzyLen {
		return "", 0
	}

	best, bestScore := "", 0.0
	for _, alias := range d.keys {
		s := WeightedRatio(k, alias)
		if s > bestScore {
			best, bestScore = alias, s
		}
	}
	if bestScore >= FuzzyThreshold {
		return d.exact[best], bestScore
	}
	return "", 0
}

// Canonicals returns every canonical identifier, sorted.
func (d *Dictionary) Canonicals() []string {
	out := make([]string, 0, len(d.aliases))
	for c := range d.aliases {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Aliases returns the registered spellings of canonical, including itself.
func (d *Dictionary) Aliases(canonical string) []string {
	return append([]string(nil), d.aliases[canonical]...)
}

// Check reports aliases claimed by more than one canonical and aliases
// that do not resolve back to their own canonical.
func (d *Dictionary) Check() []string {
	problems := append([]string(nil), d.conflicts...)
	for _, canonical := range d.Canonicals() {
		for _, a := range d.aliases[canonical] {
			got, _ := d.Resolve(a)
			if got != canonical {
				problems = append(problems,
					fmt.Sprintf("alias %q of %s resolves to %q", a, canonical, got))
			}
		}
	}
	return problems
}

// Key folds a name for comparison: NFKC, lower case, punctuation and
// underscores collapsed to single spaces. Percent and hash signs are kept
// because they distinguish relative from absolute counts.
func Key(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '%' || r == '#':
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}
