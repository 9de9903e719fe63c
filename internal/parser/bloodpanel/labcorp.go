package bloodpanel

import (
	"regexp"

	"labparse/internal/parser"
)

var (
	labcorpFootnote       = regexp.MustCompile(`^(.*?[A-Za-z)])\s+0\d(\s+[<>]?\d)`)
	labcorpPreviousResult = regexp.MustCompile(`\s+[<>]?\d+(?:\.\d+)?\s+\d{1,2}/\d{1,2}/\d{2,4}`)
	labcorpSkipLines      = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:please\s+note|dates?\s+of\s+service|labcorp\b|laboratory\s+corporation)`),
		regexp.MustCompile(`(?i)current\s+result\s+and\s+flag`),
		regexp.MustCompile(`^0\d\s+[A-Z][A-Za-z]`),
		regexp.MustCompile(`(?i)\bdir:\s`),
	}
)

// NewLabCorp creates the LabCorp adapter.
func NewLabCorp(opts parser.Options) *Adapter {
	return newAdapter(parser.LineEngine{
		Name:          "labcorp",
		DisplayName:   "LabCorp",
		LabName:       "LabCorp",
		FormatMatched: true,
		Preprocess:    cleanLabCorpLine,
		Skip:          labcorpSkipLines,
		Options:       opts,
	}, PriorityMajorLab, func(text, filename string) bool {
		return filenameHas(filename, "labcorp") ||
			parser.ContainsAny(text, "labcorp", "laboratory corporation of america")
	})
}

// cleanLabCorpLine removes the previous-result column and the footnote code
// LabCorp prints between the test name and the current value.
func cleanLabCorpLine(line string) string {
	line = labcorpPreviousResult.ReplaceAllString(line, "")
	return labcorpFootnote.ReplaceAllString(line, "$1$2")
}
