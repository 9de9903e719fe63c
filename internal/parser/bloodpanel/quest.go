package bloodpanel

import (
	"regexp"
	"strings"

	"labparse/internal/normalize"
	"labparse/internal/parser"
)

var (
	questLabCode   = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,2}$`)
	questSiteCode  = regexp.MustCompile(`^0\d$`)
	questSkipLines = []*regexp.Regexp{
		regexp.MustCompile(`(?i)performing\s+(?:site|lab(?:oratory)?)`),
		regexp.MustCompile(`^[A-Z][A-Z0-9]{1,2}\s+Quest\s+Diagnostics`),
		regexp.MustCompile(`(?i)^quest\s+diagnostics\b`),
		regexp.MustCompile(`(?i)^in\s+range\s+out\s+of\s+range`),
	}
)

// NewQuest creates the Quest Diagnostics adapter.
func NewQuest(opts parser.Options) *Adapter {
	return newAdapter(parser.LineEngine{
		Name:          "quest",
		DisplayName:   "Quest Diagnostics",
		LabName:       "Quest Diagnostics",
		FormatMatched: true,
		Preprocess:    stripQuestLabCode,
		Skip:          questSkipLines,
		Options:       opts,
	}, PriorityMajorLab, func(text, filename string) bool {
		return filenameHas(filename, "quest") || parser.ContainsAny(text, "quest diagnostics")
	})
}

// stripQuestLabCode drops the performing-lab code Quest prints after the
// reference column, e.g. "EN" or "01".
func stripQuestLabCode(line string) string {
	fields := strings.Fields(line)
	n := len(fields)
	if n < 3 {
		return line
	}
	last, prev := fields[n-1], fields[n-2]
	switch {
	case questLabCode.MatchString(last) && parser.NormalizeFlag(last) == "" && !normalize.IsKnownUnit(last):
	case questSiteCode.MatchString(last) && strings.ContainsAny(prev, "%abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"):
	default:
		return line
	}
	return strings.Join(fields[:n-1], " ")
}
