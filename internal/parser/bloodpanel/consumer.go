package bloodpanel

import (
	"regexp"
	"strings"

	"labparse/internal/parser"
)

var (
	functionStatus = regexp.MustCompile(`(?i)\b(?:in\s+range|out\s+of\s+range|above\s+range|below\s+range|optimal)\b`)
	functionAbove  = regexp.MustCompile(`(?i)\babove\s+range\b`)
	functionBelow  = regexp.MustCompile(`(?i)\bbelow\s+range\b`)

	insideTrackerZone = regexp.MustCompile(`(?i)\b(?:optimized|needs\s+work|at\s+risk|optimal\s+zone:?)`)

	consumerSkipLines = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^biomarkers?\b.*\b(?:result|value|zone|range|status)\b`),
		regexp.MustCompile(`(?i)^(?:function\s+health|insidetracker|inside\s+tracker)\b`),
		regexp.MustCompile(`(?i)^(?:your\s+(?:results|score|zone)|what\s+this\s+means)`),
	}
)

// NewFunctionHealth creates the Function Health adapter.
func NewFunctionHealth(opts parser.Options) *Adapter {
	return newAdapter(parser.LineEngine{
		Name:          "function_health",
		DisplayName:   "Function Health",
		LabName:       "Function Health",
		FormatMatched: true,
		Preprocess:    cleanFunctionHealthLine,
		Skip:          consumerSkipLines,
		Options:       opts,
	}, PriorityConsumer, func(text, filename string) bool {
		return filenameHas(filename, "function_health", "function-health", "functionhealth") ||
			parser.ContainsAny(text, "function health", "functionhealth")
	})
}

// cleanFunctionHealthLine removes status words. "Above Range" and
// "Below Range" become H and L flags.
func cleanFunctionHealthLine(line string) string {
	flag := ""
	switch {
	case functionAbove.MatchString(line):
		flag = " H"
	case functionBelow.MatchString(line):
		flag = " L"
	}
	line = strings.Join(strings.Fields(functionStatus.ReplaceAllString(line, " ")), " ")
	return line + flag
}

// NewInsideTracker creates the InsideTracker adapter.
func NewInsideTracker(opts parser.Options) *Adapter {
	return newAdapter(parser.LineEngine{
		Name:          "insidetracker",
		DisplayName:   "InsideTracker",
		LabName:       "InsideTracker",
		FormatMatched: true,
		Preprocess:    cleanInsideTrackerLine,
		Skip:          consumerSkipLines,
		Options:       opts,
	}, PriorityConsumer, func(text, filename string) bool {
		return filenameHas(filename, "insidetracker", "inside_tracker", "inside-tracker") ||
			parser.ContainsAny(text, "insidetracker", "inside tracker")
	})
}

func cleanInsideTrackerLine(line string) string {
	return strings.Join(strings.Fields(insideTrackerZone.ReplaceAllString(line, " ")), " ")
}
