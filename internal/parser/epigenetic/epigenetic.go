// Package epigenetic parses biological-age (DNA methylation) test reports
// into domain.EpigeneticParseResult.
package epigenetic

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"labparse/internal/domain"
	"labparse/internal/logging"
	"labparse/internal/parser"
	"labparse/internal/port"
)

// Detection priorities.
const (
	PriorityNamed   = 40
	PriorityGeneric = 80
)

const (
	namedBaseline   = 0.45
	genericBaseline = 0.30
	filledSpan      = 0.45
	organBonus      = 0.05
	namedCap        = 1.0
	genericCap      = 0.85
	headlineFields  = 4
)

// Profile describes one provider's biological-age report.
type Profile struct {
	Name        string
	DisplayName string
	Named       bool
	Priority    int
	TextHints   []string
	FileHints   []string
	// HeadlineClock identifies the provider's own headline age, if any.
	HeadlineClock string
}

// Built-in profiles.
var (
	TruDiagnostic = Profile{
		Name:          "trudiagnostic",
		DisplayName:   "TruDiagnostic",
		Named:         true,
		Priority:      PriorityNamed,
		TextHints:     []string{"trudiagnostic", "truage"},
		FileHints:     []string{"trudiagnostic", "truage"},
		HeadlineClock: "truage",
	}
	TallyHealth = Profile{
		Name:          "tally_health",
		DisplayName:   "Tally Health",
		Named:         true,
		Priority:      PriorityNamed,
		TextHints:     []string{"tally health", "tallyhealth", "tally age"},
		FileHints:     []string{"tally"},
		HeadlineClock: "tally_age",
	}
	Generic = Profile{
		Name:          "generic_epigenetic",
		DisplayName:   "Generic Epigenetic Test",
		Priority:      PriorityGeneric,
		HeadlineClock: "biological_age",
	}
)

var epigeneticVocabulary = []string{
	"epigenetic", "methylation", "biological age", "dunedinpace", "horvath", "grimage", "phenoage",
	"hannum", "pace of aging",
}

const num = `(\d{1,3}(?:\.\d+)?)`

var ageMention = regexp.MustCompile(`(?i)\bage\b`)

var (
	chronologicalPattern = regexp.MustCompile(`(?i)(?:chronological|calendar|actual)\s+age\s*(?:\([^)]*\))?\s*[:\-|]?\s*` + num)

	biologicalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:truage|tally\s+age|your\s+(?:biological|epigenetic)\s+age(?:\s+is)?)\s*[:\-|]?\s*` + num),
		regexp.MustCompile(`(?im)^\s*(?:overall\s+)?(?:biological|epigenetic)\s+age\s*(?:\([^)]*\))?\s*[:\-|]?\s*` + num),
	}

	pacePattern           = regexp.MustCompile(`(?i)(?:pace\s+of\s+aging|aging\s+pace|rate\s+of\s+aging|speed\s+of\s+aging)\s*(?:\([^)]*\))?\s*[:\-|]?\s*(\d(?:\.\d+)?)`)
	interpretationPattern = regexp.MustCompile(`(?i)aging\s+(\d{1,3}(?:\.\d+)?)\s*%\s+(slower|faster)\s+than\s+(?:the\s+)?average`)
	telomereLengthPattern = regexp.MustCompile(`(?i)telomere\s+length\s*(?:\([^)]*\))?\s*[:\-|]?\s*(\d{1,2}(?:\.\d+)?)\s*(?:kb)?`)

	telomerePercentile = []*regexp.Regexp{
		regexp.MustCompile(`(?i)telomere[^\n]*?(\d{1,3}(?:\.\d+)?)\s*(?:st|nd|rd|th)\s+percentile`),
		regexp.MustCompile(`(?i)telomere\s+percentile\s*[:\-|]?\s*(\d{1,3}(?:\.\d+)?)`),
	}

	testDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:test\s+date|sample\s+(?:date|collected)|collection\s+date|date\s+collected|report\s+date|kit\s+received)\s*[:\-]?\s*` + dateCapture),
		regexp.MustCompile(`(?i:date)\s*[:\-]\s*` + dateCapture),
	}

	organPattern = regexp.MustCompile(`(?im)^\s*(` + organAlternation + `)(?:\s+(?:system|age|biological\s+age))*\s*[:\-|]?\s*(\d{1,3}(?:\.\d+)?)\s*(?:years?|yrs?)?\s*$`)
)

const dateCapture = `(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2}|[A-Z][a-z]{2,8}\.?\s+\d{1,2},?\s+\d{4})`

const organAlternation = `heart|liver|kidney|brain|lung|immune|metabolic|inflammation|blood\s+vessels?|blood|hormone|` +
	`musculoskeletal|vascular|adipose|skin|intestine|pancreas`

// Adapter parses one epigenetic profile.
type Adapter struct {
	profile Profile
	opts    parser.Options
	log     logging.Logger
}

var _ port.EpigeneticAdapter = (*Adapter)(nil)

// New creates an adapter for profile.
func New(profile Profile, opts parser.Options) *Adapter {
	opts = opts.WithDefaults()
	return &Adapter{profile: profile, opts: opts, log: opts.Logger.Named(profile.Name)}
}

func (a *Adapter) Name() string        { return a.profile.Name }
func (a *Adapter) DisplayName() string { return a.profile.DisplayName }
func (a *Adapter) Priority() int       { return a.profile.Priority }

// CanParse matches provider hints, or epigenetic vocabulary plus an age
// mention for the generic profile.
func (a *Adapter) CanParse(text, filename string) bool {
	if !a.profile.Named {
		return parser.ContainsAny(text, epigeneticVocabulary...) && ageMention.MatchString(text)
	}
	return parser.ContainsAny(filename, a.profile.FileHints...) || parser.ContainsAny(text, a.profile.TextHints...)
}

// Parse runs ParseStructured and flattens the result.
func (a *Adapter) Parse(ctx context.Context, input port.ParseInput) (*domain.ParseResult, error) {
	return a.ParseStructured(ctx, input.Text).ToParseResult(), nil
}

// ParseStructured extracts the full biological-age result. Failures produce
// an unsuccessful result rather than a panic.
func (a *Adapter) ParseStructured(ctx context.Context, text string) (res *domain.EpigeneticParseResult) {
	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err := &parser.AdapterError{Adapter: a.Name(), Err: &parser.PanicError{Value: rec}}
			a.log.Error("parser.epigenetic.panic", logging.Err(err))
			res = a.failed(err)
		}
		res.ParseTimeMS = float64(time.Since(started).Microseconds()) / 1000
	}()

	if strings.TrimSpace(text) == "" {
		return a.failed(domain.ErrEmptyText)
	}
	if err := ctx.Err(); err != nil {
		return a.failed(fmt.Errorf("parse aborted: %w", err))
	}
	return a.extract(text)
}

func (a *Adapter) extract(text string) *domain.EpigeneticParseResult {
	res := &domain.EpigeneticParseResult{
		Success:        true,
		ParserUsed:     a.profile.Name,
		FormatDetected: a.profile.DisplayName,
		RawText:        text,
		PageCount:      len(parser.SplitPages(text)),
		Warnings:       []string{},
		Clocks:         []domain.EpigeneticClockResult{},
		OrganAges:      []domain.OrganAgeResult{},
	}

	head := parser.Head(text, a.opts.HeaderChars)
	if d, ok := parser.ParseDate(parser.FirstMatch(head, testDatePatterns...)); ok {
		res.TestDate = d
	}
	res.PatientName = parser.ExtractMetadata(head, a.opts.HeaderChars).PatientName

	res.ChronologicalAge = number(parser.FirstMatch(text, chronologicalPattern))
	res.BiologicalAge = number(parser.FirstMatch(text, biologicalPatterns...))
	if res.BiologicalAge != nil {
		res.PrimaryClock = a.profile.HeadlineClock
	}

	res.Clocks = append(res.Clocks, clocks(text)...)
	if res.BiologicalAge == nil {
		for _, c := range res.Clocks {
			if c.Unit == UnitYears {
				res.BiologicalAge = domain.FloatPtr(c.Value)
				res.PrimaryClock = c.Name
				break
			}
		}
	}
	if res.BiologicalAge != nil && res.ChronologicalAge != nil {
		res.AgeDelta = domain.FloatPtr(round(*res.BiologicalAge-*res.ChronologicalAge, 2))
	}

	res.PaceOfAging = number(parser.FirstMatch(text, pacePattern))
	if res.PaceOfAging == nil {
		if c, ok := res.Clock(slugDunedinPACE); ok {
			res.PaceOfAging = domain.FloatPtr(c.Value)
		}
	}
	res.PaceInterpretation = interpretation(text, res.PaceOfAging)

	res.OrganAges = append(res.OrganAges, organAges(text, res.ChronologicalAge)...)
	res.TelomereLength = number(parser.FirstMatch(text, telomereLengthPattern))
	res.TelomerePercentile = number(parser.FirstMatch(text, telomerePercentile...))

	filled := 0
	for _, ok := range []bool{res.ChronologicalAge != nil, res.BiologicalAge != nil, len(res.Clocks) > 0, res.PaceOfAging != nil} {
		if ok {
			filled++
		}
	}
	raw := a.baseConfidence(filled)
	if len(res.OrganAges) > 0 {
		raw += organBonus
	}
	res.RawConfidence = round(min(raw, a.confidenceCap()), 4)
	res.Confidence = domain.ConfidenceFromScore(res.RawConfidence)
	res.NeedsReview = res.RawConfidence < a.opts.ReviewThreshold
	for i := range res.Clocks {
		res.Clocks[i].Confidence = res.RawConfidence
	}
	for i := range res.OrganAges {
		res.OrganAges[i].Confidence = res.RawConfidence
	}

	switch {
	case filled == 0 && len(res.OrganAges) == 0 && res.TelomereLength == nil:
		res.Success = false
		res.Error = domain.ErrNoMarkers.Error()
		res.NeedsReview = true
		res.Confidence = domain.ConfidenceUncertain
		res.Warnings = append(res.Warnings, "no biological-age fields recognized")
	case res.ChronologicalAge == nil:
		res.Warnings = append(res.Warnings, "chronological age not found; age delta unavailable")
	}

	a.log.Debug("parser.epigenetic.done",
		logging.Int("fields", filled),
		logging.Int("clocks", len(res.Clocks)),
		logging.Int("organs", len(res.OrganAges)),
		logging.Float64("raw_confidence", res.RawConfidence),
	)
	return res
}

// clocks collects every recognized clock once, in pattern order.
func clocks(text string) []domain.EpigeneticClockResult {
	var out []domain.EpigeneticClockResult
	seen := map[string]bool{}
	for _, p := range clockPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			slug, ok := ClockSlug(m[1])
			if !ok || seen[slug] {
				continue
			}
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			seen[slug] = true
			out = append(out, domain.EpigeneticClockResult{
				Name:        slug,
				DisplayName: ClockDisplayName(slug),
				Value:       v,
				Unit:        clockUnit(slug),
			})
		}
	}
	return out
}

// Interpret describes a pace of aging relative to one year per year.
func Interpret(pace float64) string {
	pct := math.Round(math.Abs(1-pace) * 100)
	switch {
	case pct == 0:
		return "aging at the average rate"
	case pace < 1:
		return fmt.Sprintf("aging %s%% slower than average", strconv.FormatFloat(pct, 'f', -1, 64))
	default:
		return fmt.Sprintf("aging %s%% faster than average", strconv.FormatFloat(pct, 'f', -1, 64))
	}
}

func interpretation(text string, pace *float64) string {
	if m := interpretationPattern.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("aging %s%% %s than average", m[1], strings.ToLower(m[2]))
	}
	if pace == nil {
		return ""
	}
	return Interpret(*pace)
}

func organAges(text string, chrono *float64) []domain.OrganAgeResult {
	var out []domain.OrganAgeResult
	seen := map[string]bool{}
	for _, m := range organPattern.FindAllStringSubmatch(text, -1) {
		system := strings.ReplaceAll(strings.ToLower(strings.Join(strings.Fields(m[1]), " ")), " ", "_")
		if seen[system] {
			continue
		}
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		seen[system] = true
		o := domain.OrganAgeResult{System: system, BiologicalAge: v}
		if chrono != nil {
			o.Delta = domain.FloatPtr(round(v-*chrono, 2))
		}
		out = append(out, o)
	}
	return out
}

func (a *Adapter) baseConfidence(filled int) float64 {
	frac := float64(filled) / headlineFields
	if a.profile.Named {
		return namedBaseline + frac*filledSpan
	}
	return genericBaseline + frac*filledSpan
}

func (a *Adapter) confidenceCap() float64 {
	if a.profile.Named {
		return namedCap
	}
	return genericCap
}

func (a *Adapter) failed(err error) *domain.EpigeneticParseResult {
	return &domain.EpigeneticParseResult{
		Success:        false,
		ParserUsed:     a.profile.Name,
		FormatDetected: a.profile.DisplayName,
		Confidence:     domain.ConfidenceUncertain,
		NeedsReview:    true,
		Warnings:       []string{err.Error()},
		Error:          err.Error(),
		Clocks:         []domain.EpigeneticClockResult{},
		OrganAges:      []domain.OrganAgeResult{},
	}
}

func number(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
