package parser

import (
	"regexp"
	"strconv"
	"strings"

	"labparse/internal/domain"
	"labparse/internal/normalize"
)

var (
	comparatorReplacer = strings.NewReplacer("<=", "", ">=", "", "<", "", ">", "", "≤", "", "≥", "", "~", "", ",", "", " ", "")

	refRange = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*[-–]\s*(-?\d+(?:\.\d+)?)`)
	refLower = regexp.MustCompile(`(?:>=?|≥)\s*(-?\d+(?:\.\d+)?)`)
	refUpper = regexp.MustCompile(`(?:<=?|≤)\s*(-?\d+(?:\.\d+)?)`)

	refLabel  = regexp.MustCompile(`(?i)\b(?:reference\s+(?:range|interval)|ref(?:erence)?|range|normal)\s*:`)
	refWords  = regexp.MustCompile(`(?i)not\s+estab|see\s+(?:note|below|comment)|negative|non-?reactive|not\s+detected`)
	unitShape = regexp.MustCompile(`^[A-Za-zµμ%#][\wµμ%/^*.\-{}²³]*$`)
)

// ParseValue parses a printed result value. Comparator prefixes, thousands
// separators and a trailing single-letter flag are removed before parsing.
// The trailing flag, if any, is returned normalized.
func ParseValue(text string) (float64, string, bool) {
	s := strings.TrimSpace(text)
	flag := ""
	if n := len(s); n > 1 {
		if f := NormalizeFlag(s[n-1:]); f != "" && isDigit(s[n-2]) {
			flag = f
			s = s[:n-1]
		}
	}
	v, err := strconv.ParseFloat(comparatorReplacer.Replace(s), 64)
	if err != nil {
		return 0, flag, false
	}
	return v, flag, true
}

// ParseReference parses reference text into bounds. Patterns are tried in
// order: "A-B", ">A", "<A".
func ParseReference(text string) (low, high *float64) {
	if m := refRange.FindStringSubmatch(text); m != nil {
		return parseFloatPtr(m[1]), parseFloatPtr(m[2])
	}
	if m := refLower.FindStringSubmatch(text); m != nil {
		return parseFloatPtr(m[1]), nil
	}
	if m := refUpper.FindStringSubmatch(text); m != nil {
		return nil, parseFloatPtr(m[1])
	}
	return nil, nil
}

var flagAliases = map[string]string{
	"H": domain.FlagHigh, "HH": domain.FlagHigh, "HIGH": domain.FlagHigh,
	"L": domain.FlagLow, "LL": domain.FlagLow, "LOW": domain.FlagLow,
	"A": domain.FlagAbnormal, "ABN": domain.FlagAbnormal, "ABNORMAL": domain.FlagAbnormal,
	"C": domain.FlagCritical, "CRIT": domain.FlagCritical, "CRITICAL": domain.FlagCritical,
}

// NormalizeFlag maps printed flags to H, L, A or C. Unknown text yields "".
func NormalizeFlag(raw string) string {
	return flagAliases[strings.ToUpper(strings.Trim(raw, " *!()"))]
}

// tail is what follows a value on a result line.
type tail struct {
	unit    string
	refText string
	flag    string
}

// parseTail pulls a reference range, a unit and a flag out of the text after
// a value, in whatever order the lab prints them.
func parseTail(s string) tail {
	var t tail
	s = refLabel.ReplaceAllString(s, " ")
	s = strings.NewReplacer("(", " ", ")", " ", "[", " ", "]", " ", "|", " ").Replace(s)

	if loc := refRange.FindStringIndex(s); loc != nil {
		t.refText = strings.TrimSpace(s[loc[0]:loc[1]])
		s = s[:loc[0]] + " " + s[loc[1]:]
	} else if loc := firstIndex(s, refLower, refUpper); loc != nil {
		t.refText = strings.TrimSpace(s[loc[0]:loc[1]])
		s = s[:loc[0]] + " " + s[loc[1]:]
	}

	fields := strings.Fields(s)
	var leftover []string
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if t.flag == "" {
			if flag := NormalizeFlag(f); flag != "" {
				t.flag = flag
				continue
			}
		}
		if t.unit == "" {
			if i+1 < len(fields) && normalize.IsKnownUnit(f+" "+fields[i+1]) {
				t.unit = f + " " + fields[i+1]
				i++
				continue
			}
			if normalize.IsKnownUnit(f) || (unitShape.MatchString(f) && strings.ContainsAny(f, "/%")) {
				t.unit = f
				continue
			}
		}
		leftover = append(leftover, f)
	}

	if t.refText == "" && len(leftover) > 0 {
		rest := strings.Join(leftover, " ")
		if refWords.MatchString(rest) {
			t.refText = rest
		}
	}
	return t
}

func firstIndex(s string, patterns ...*regexp.Regexp) []int {
	var best []int
	for _, p := range patterns {
		if loc := p.FindStringIndex(s); loc != nil && (best == nil || loc[0] < best[0]) {
			best = loc
		}
	}
	return best
}

func parseFloatPtr(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
