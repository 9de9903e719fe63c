package parser

import (
	"regexp"
	"strings"
	"time"

	"labparse/internal/domain"
)

// Metadata holds document-level fields read from the report header.
type Metadata struct {
	PatientName      string
	CollectionDate   *domain.Date
	ReportDate       *domain.Date
	OrderingProvider string
}

const datePattern = `(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2}|[A-Z][a-z]{2,8}\.?\s+\d{1,2},?\s+\d{4}|\d{1,2}-[A-Z][a-z]{2}-\d{4})`

const personPattern = `((?:Dr\.?[ \t]+)?[A-Z][A-Za-z'.\-]+(?:,?[ \t]+[A-Z][A-Za-z'.\-]+){0,3})`

// Header patterns, tried in order until one matches.
var (
	collectionDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:date\s+collected|collection\s+date|specimen\s+collected|date\s+of\s+collection)\s*[:\-]?\s*` + datePattern),
		regexp.MustCompile(`(?i:collected(?:\s+on)?|drawn(?:\s+on)?)\s*[:\-]?\s*` + datePattern),
	}
	reportDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:date\s+reported|report(?:ed)?\s+date|final\s+report\s+date|date\s+of\s+report)\s*[:\-]?\s*` + datePattern),
		regexp.MustCompile(`(?i:reported(?:\s+on)?|resulted(?:\s+on)?)\s*[:\-]?\s*` + datePattern),
	}
	patientPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:patient\s+name)\s*:\s*` + personPattern),
		regexp.MustCompile(`(?i:patient)\s*:\s*` + personPattern),
		regexp.MustCompile(`(?m)^\s*(?i:name)\s*:\s*` + personPattern),
	}
	providerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:ordering\s+(?:physician|provider|doctor|clinician))\s*:\s*` + personPattern),
		regexp.MustCompile(`(?i:ordered\s+by|physician|provider|doctor)\s*:\s*` + personPattern),
	}
)

// dateLayouts are tried in order.
var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"Jan. 2, 2006",
	"2-Jan-2006",
}

// ParseDate parses a printed date against the known layouts.
func ParseDate(s string) (*domain.Date, bool) {
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := domain.Date{Time: t}
			return &d, true
		}
	}
	return nil, false
}

// ExtractMetadata reads header fields from the leading headerChars runes.
func ExtractMetadata(text string, headerChars int) Metadata {
	head := Head(text, headerChars)
	var md Metadata
	md.CollectionDate = firstDate(head, collectionDatePatterns)
	md.ReportDate = firstDate(head, reportDatePatterns)
	md.PatientName = cleanPerson(firstMatch(head, patientPatterns))
	md.OrderingProvider = cleanPerson(firstMatch(head, providerPatterns))
	return md
}

// Apply copies the metadata onto res.
func (md Metadata) Apply(res *domain.ParseResult) {
	res.PatientName = md.PatientName
	res.CollectionDate = md.CollectionDate
	res.ReportDate = md.ReportDate
	res.OrderingProvider = md.OrderingProvider
}

// headerLabels end a captured person name when a label follows on the same line.
var headerLabels = map[string]bool{
	"DOB": true, "AGE": true, "SEX": true, "GENDER": true, "ID": true, "PHONE": true,
	"ACCOUNT": true, "ACCT": true, "NPI": true, "DATE": true, "SPECIMEN": true, "FASTING": true,
}

func cleanPerson(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if headerLabels[strings.ToUpper(strings.Trim(w, ",.:"))] {
			words = words[:i]
			break
		}
	}
	return strings.TrimRight(strings.Join(words, " "), ",")
}

func firstDate(text string, patterns []*regexp.Regexp) *domain.Date {
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if d, ok := ParseDate(m[1]); ok {
				return d
			}
		}
	}
	return nil
}

// FirstMatch returns the first capture group of the first matching pattern.
func FirstMatch(text string, patterns ...*regexp.Regexp) string {
	return firstMatch(text, patterns)
}

func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
