package parser

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"labparse/internal/confidence"
	"labparse/internal/domain"
	"labparse/internal/logging"
	"labparse/internal/normalize"
)

// Options tunes the shared extraction engine.
type Options struct {
	HeaderChars     int
	MinLineLength   int
	ReviewThreshold float64
	Dictionary      *normalize.Dictionary
	Logger          logging.Logger
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		HeaderChars:     3000,
		MinLineLength:   4,
		ReviewThreshold: domain.MediumThreshold,
		Dictionary:      normalize.Default(),
		Logger:          logging.NewNopLogger(),
	}
}

// WithDefaults fills zero fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.HeaderChars <= 0 {
		o.HeaderChars = d.HeaderChars
	}
	if o.MinLineLength <= 0 {
		o.MinLineLength = d.MinLineLength
	}
	if o.ReviewThreshold <= 0 {
		o.ReviewThreshold = d.ReviewThreshold
	}
	if o.Dictionary == nil {
		o.Dictionary = d.Dictionary
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	return o
}

const (
	namePattern  = `(?P<name>(?:\d+-)?[A-Za-z%][A-Za-z0-9 ,()/%#.+'&\-]*?[A-Za-z0-9)%#])`
	valuePattern = `(?P<value>(?:<=|>=|[<>≤≥~])?\s?-?\d+(?:,\d{3})*(?:\.\d+)?)`
	flagPattern  = `(?P<flag>HH|LL|HIGH|LOW|High|Low|ABNORMAL|Abnormal|CRITICAL|Critical|CRIT|ABN|H|L|A|C)`
)

// Line patterns, tried in order: qualitative, primary, fallback.
var (
	QualitativePattern = regexp.MustCompile(`^` + namePattern + `[\s:]+(?P<value>(?i:` + qualitativeAlternation() + `))(?:\s+(?P<flag>A|ABNORMAL|Abnormal))?(?:\s+(?P<tail>.*))?$`)
	PrimaryPattern     = regexp.MustCompile(`^` + namePattern + `[\s:]+` + valuePattern + `(?P<attached>[HLAC])?(?:\s+` + flagPattern + `)?(?:\s+(?P<tail>.*))?$`)
	FallbackPattern    = regexp.MustCompile(`^(?P<name>[A-Za-z%][^\d<>|:]{1,60}?)\s*(?:[:|.\-–]+\s*)+` + valuePattern + `(?:\s+(?P<tail>.*))?$`)

	numericToken = regexp.MustCompile(`(?:^|\s)[<>]?\d+(?:\.\d+)?(?:\s|$)`)
)

// DefaultSkipPatterns filter lines that are never result rows.
var DefaultSkipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^page\s+\d+(?:\s+of\s+\d+)?$`),
	regexp.MustCompile(`^[<>]?\d+(?:\.\d+)?$`),
	regexp.MustCompile(`^[\s\-=_*.~#]+$`),
	regexp.MustCompile(`(?i)^(?:patient|dob|date\s+of\s+birth|account|acct|specimen|accession|requisition|phone|fax|npi|address|ordering|ordered\s+by|physician|collected|received|reported|lab\s+director|clia|final\s+report|printed|client|medical\s+record|mrn|date\s+(?:of|collected|reported|received|printed))\b`),
	regexp.MustCompile(`(?i)^(?:name|age|sex|gender|provider|doctor|collection|report\s+date|date|status|fasting|location|id|tel)\s*[:#]`),
	regexp.MustCompile(`(?i)^(?:test(?:\s+name)?|analyte|component|tests?\s+ordered)\s+(?:result|value|flag|in\s+range)`),
	regexp.MustCompile(`(?i)reference\s+(?:range|interval)\s*$`),
	regexp.MustCompile(`(?i)not\s+reported|test\s+not\s+performed|\bcancel+ed\b`),
	regexp.MustCompile(`(?i)\b(?:copyright|©|all\s+rights\s+reserved|www\.|https?://)`),
}

func qualitativeAlternation() string {
	phrases := confidence.QualitativePhrases()
	sort.SliceStable(phrases, func(i, j int) bool { return len(phrases[i]) > len(phrases[j]) })
	for i, p := range phrases {
		phrases[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(phrases, "|")
}

// LineEngine is the line-oriented extractor shared by the blood-panel
// adapters and the universal fallback.
type LineEngine struct {
	Name          string
	DisplayName   string
	LabName       string
	FormatMatched bool
	// Preprocess rewrites a trimmed line before matching.
	Preprocess func(line string) string
	// Skip is checked in addition to DefaultSkipPatterns.
	Skip []*regexp.Regexp
	Options
}

// Parse runs the engine over text. A document with no extractable markers
// yields an unsuccessful result that needs review.
func (e *LineEngine) Parse(ctx context.Context, text string) *domain.ParseResult {
	started := time.Now()
	opts := e.Options.WithDefaults()

	res := &domain.ParseResult{
		Success:        true,
		ParserUsed:     e.Name,
		FormatDetected: e.DisplayName,
		LabName:        e.LabName,
		RawText:        text,
		Warnings:       []string{},
	}
	if strings.TrimSpace(text) == "" {
		failed := FailedResult(e.Name, e.DisplayName, domain.ErrEmptyText)
		failed.ParseTimeMS = elapsedMS(started)
		return failed
	}

	pages := SplitPages(text)
	res.PageCount = len(pages)
	ExtractMetadata(text, opts.HeaderChars).Apply(res)

	var markers []domain.MarkerResult
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			failed := FailedResult(e.Name, e.DisplayName, fmt.Errorf("parse aborted at page %d: %w", i+1, err))
			failed.ParseTimeMS = elapsedMS(started)
			return failed
		}
		for _, raw := range strings.Split(page, "\n") {
			if m, ok := e.ParseLine(raw, i+1, opts); ok {
				markers = append(markers, m)
			}
		}
	}

	var dropped []string
	res.Markers, dropped = Dedupe(markers)
	res.Warnings = append(res.Warnings, dropped...)
	if len(res.Markers) == 0 {
		res.Success = false
		res.Error = domain.ErrNoMarkers.Error()
		res.NeedsReview = true
		res.AddWarning("no result lines recognized by %s", e.DisplayName)
	}
	Finalize(res, opts.ReviewThreshold, started)
	opts.Logger.Debug("parser.lines.done",
		logging.String("adapter", e.Name),
		logging.Int("pages", res.PageCount),
		logging.Int("candidates", len(markers)),
		logging.Int("markers", len(res.Markers)),
	)
	return res
}

// ParseLine extracts a marker from a single line, if it holds one.
func (e *LineEngine) ParseLine(raw string, page int, opts Options) (domain.MarkerResult, bool) {
	line := strings.Join(strings.Fields(raw), " ")
	if len(line) < opts.MinLineLength || e.skip(line) {
		return domain.MarkerResult{}, false
	}
	if e.Preprocess != nil {
		line = strings.TrimSpace(e.Preprocess(line))
		if len(line) < opts.MinLineLength {
			return domain.MarkerResult{}, false
		}
	}

	if g := match(QualitativePattern, line); g != nil && !numericToken.MatchString(g["name"]) {
		return e.qualitative(g, page, opts), true
	}
	if g := match(PrimaryPattern, line); g != nil {
		return e.numeric(g, page, opts)
	}
	if g := match(FallbackPattern, line); g != nil {
		return e.numeric(g, page, opts)
	}
	return domain.MarkerResult{}, false
}

func (e *LineEngine) skip(line string) bool {
	for _, p := range DefaultSkipPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	for _, p := range e.Skip {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

func (e *LineEngine) qualitative(g map[string]string, page int, opts Options) domain.MarkerResult {
	name := strings.TrimSpace(g["name"])
	refText := strings.TrimSpace(g["tail"])
	m := domain.MarkerResult{
		DisplayName:   name,
		ValueText:     g["value"],
		ReferenceText: refText,
		Flag:          NormalizeFlag(g["flag"]),
		Page:          page,
	}
	resolved := e.resolveName(&m, opts)
	m.Confidence, m.ConfidenceReasons = confidence.ScoreMarker(confidence.Signals{
		FormatMatched:    e.FormatMatched,
		NameResolved:     resolved,
		Qualitative:      true,
		ReferencePresent: refText != "",
	})
	return m
}

func (e *LineEngine) numeric(g map[string]string, page int, opts Options) (domain.MarkerResult, bool) {
	valueText := strings.TrimSpace(g["value"])
	value, embedded, ok := ParseValue(valueText + g["attached"])
	if !ok {
		return domain.MarkerResult{}, false
	}

	t := parseTail(g["tail"])
	flag := NormalizeFlag(g["flag"])
	if flag == "" {
		flag = embedded
	}
	if flag == "" {
		flag = t.flag
	}

	refText := t.refText
	if refText == "" && strings.ContainsAny(valueText, "<>≤≥") {
		refText = valueText
	}
	low, high := ParseReference(refText)

	m := domain.MarkerResult{
		DisplayName:   strings.TrimSpace(g["name"]),
		Value:         value,
		ValueText:     valueText,
		Unit:          t.unit,
		CanonicalUnit: normalize.NormalizeUnit(t.unit),
		ReferenceLow:  low,
		ReferenceHigh: high,
		ReferenceText: refText,
		Flag:          flag,
		Page:          page,
	}
	resolved := e.resolveName(&m, opts)
	m.Confidence, m.ConfidenceReasons = confidence.ScoreMarker(confidence.Signals{
		FormatMatched:    e.FormatMatched,
		NameResolved:     resolved,
		ValueParsed:      true,
		UnitKnown:        normalize.IsKnownUnit(t.unit),
		UnitPresent:      t.unit != "",
		ReferenceParsed:  low != nil || high != nil,
		ReferencePresent: refText != "",
	})
	return m, true
}

// resolveName sets the canonical name, falling back to a slug.
func (e *LineEngine) resolveName(m *domain.MarkerResult, opts Options) bool {
	canonical, _ := opts.Dictionary.Resolve(m.DisplayName)
	if canonical != "" {
		m.CanonicalName = canonical
		return true
	}
	m.CanonicalName = normalize.Slugify(m.DisplayName)
	return false
}

func match(p *regexp.Regexp, s string) map[string]string {
	sub := p.FindStringSubmatch(s)
	if sub == nil {
		return nil
	}
	out := make(map[string]string, len(sub))
	for i, name := range p.SubexpNames() {
		if name != "" && out[name] == "" {
			out[name] = sub[i]
		}
	}
	return out
}
