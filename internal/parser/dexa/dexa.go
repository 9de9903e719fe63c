// Package dexa parses body-composition (DEXA/DXA) scan reports into
// domain.DexaParseResult and flattens them for the router.
package dexa

import (
	"context"
	"fmt"
	"strings"
	"time"

	"labparse/internal/domain"
	"labparse/internal/logging"
	"labparse/internal/parser"
	"labparse/internal/port"
)

// Detection priorities.
const (
	PriorityNamed   = 30
	PriorityGeneric = 80
)

// Confidence arithmetic. Named brands start higher than the generic parser.
const (
	namedBaseline   = 0.40
	namedSpan       = 0.50
	namedCap        = 1.0
	genericBaseline = 0.25
	genericSpan     = 0.45
	genericCap      = 0.85
	tableBonus      = 0.05
	totalFields     = 5
)

// Profile describes one DEXA report layout.
// Named profiles assume pounds for every mass field.
type Profile struct {
	Name         string
	DisplayName  string
	Facility     string
	Named        bool
	Priority     int
	TextHints    []string
	FileHints    []string
	RegionColumn []string
}

var defaultColumns = []string{colFatPct, colTotalMass, colFatMass, colLeanMass, colBMC}

// Built-in profiles.
var (
	DexaFit = Profile{
		Name:         "dexafit",
		DisplayName:  "DexaFit",
		Facility:     "DexaFit",
		Named:        true,
		Priority:     PriorityNamed,
		TextHints:    []string{"dexafit", "dexa fit"},
		FileHints:    []string{"dexafit"},
		RegionColumn: defaultColumns,
	}
	BodySpec = Profile{
		Name:         "bodyspec",
		DisplayName:  "BodySpec",
		Facility:     "BodySpec",
		Named:        true,
		Priority:     PriorityNamed,
		TextHints:    []string{"bodyspec", "body spec"},
		FileHints:    []string{"bodyspec"},
		RegionColumn: defaultColumns,
	}
	Hologic = Profile{
		Name:         "hologic",
		DisplayName:  "Hologic DXA",
		Named:        true,
		Priority:     PriorityNamed,
		TextHints:    []string{"hologic"},
		FileHints:    []string{"hologic"},
		RegionColumn: []string{colFatMass, colLeanMass, colTotalMass, colFatPct},
	}
	Generic = Profile{
		Name:         "generic_dexa",
		DisplayName:  "Generic DEXA Scan",
		Priority:     PriorityGeneric,
		RegionColumn: defaultColumns,
	}
)

var (
	dexaVocabulary = []string{"dexa", "dxa", "body composition", "bone density", "densitometry", "absorptiometry"}
	dexaFields     = []string{"fat mass", "lean mass", "body fat", "bmd", "visceral", "lean tissue", "fat tissue"}
)

// Adapter parses one DEXA profile.
type Adapter struct {
	profile Profile
	opts    parser.Options
	log     logging.Logger
}

var _ port.DexaAdapter = (*Adapter)(nil)

// New creates an adapter for profile.
func New(profile Profile, opts parser.Options) *Adapter {
	opts = opts.WithDefaults()
	return &Adapter{profile: profile, opts: opts, log: opts.Logger.Named(profile.Name)}
}

func (a *Adapter) Name() string        { return a.profile.Name }
func (a *Adapter) DisplayName() string { return a.profile.DisplayName }
func (a *Adapter) Priority() int       { return a.profile.Priority }

// CanParse matches brand hints, or DEXA vocabulary plus a body-composition
// field for the generic profile.
func (a *Adapter) CanParse(text, filename string) bool {
	if !a.profile.Named {
		return parser.ContainsAny(text, dexaVocabulary...) && parser.ContainsAny(text, dexaFields...)
	}
	return parser.ContainsAny(filename, a.profile.FileHints...) || parser.ContainsAny(text, a.profile.TextHints...)
}

// Parse runs ParseStructured and flattens the result.
func (a *Adapter) Parse(ctx context.Context, input port.ParseInput) (*domain.ParseResult, error) {
	return a.ParseStructured(ctx, input.Text).ToParseResult(), nil
}

// ParseStructured extracts the full body-composition result. It never
// panics; failures produce an unsuccessful result.
func (a *Adapter) ParseStructured(ctx context.Context, text string) (res *domain.DexaParseResult) {
	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err := &parser.AdapterError{Adapter: a.Name(), Err: &parser.PanicError{Value: rec}}
			a.log.Error("parser.dexa.panic", logging.Err(err))
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

func (a *Adapter) extract(text string) *domain.DexaParseResult {
	res := &domain.DexaParseResult{
		Success:        true,
		ParserUsed:     a.profile.Name,
		FormatDetected: a.profile.DisplayName,
		RawText:        text,
		PageCount:      len(parser.SplitPages(text)),
		Warnings:       []string{},
		Facility:       a.profile.Facility,
		Regions:        []domain.DexaRegionResult{},
		BoneDensity:    []domain.DexaBoneDensityResult{},
	}

	head := parser.Head(text, a.opts.HeaderChars)
	if d, ok := parser.ParseDate(parser.FirstMatch(head, scanDatePatterns...)); ok {
		res.ScanDate = d
	}
	res.PatientName = parser.ExtractMetadata(head, a.opts.HeaderChars).PatientName
	if res.Facility == "" {
		res.Facility = parser.FirstMatch(head, facilityPattern)
	}

	docUnit := inferDocumentUnit(text)
	unitFor := func(printed string) string {
		if a.profile.Named {
			return "lb"
		}
		if u := canonicalMassUnit(printed); u != "" {
			return u
		}
		return docUnit
	}
	mass := func(f field) *float64 {
		if !f.found {
			return nil
		}
		return toGrams(f.value, unitFor(f.unit))
	}

	filled := 0
	if f := capture(text, fatPctPatterns...); f.found {
		res.TotalBodyFatPct = domain.FloatPtr(f.value)
		filled++
	}
	for _, item := range []struct {
		dst **float64
		f   field
	}{
		{&res.TotalFatMassG, capture(text, fatMassPattern)},
		{&res.TotalLeanMassG, capture(text, leanMassPattern)},
		{&res.TotalBMCG, capture(text, bmcPattern)},
		{&res.TotalMassG, capture(text, totalMassPattern)},
	} {
		if v := mass(item.f); v != nil {
			*item.dst = v
			filled++
		}
	}

	res.VisceralFatMassG = mass(capture(text, visceralMassPattern))
	if f := capture(text, visceralVolumePattern); f.found {
		res.VisceralFatVolumeCM3 = domain.FloatPtr(f.value)
	}

	if f := capture(text, androidPattern); f.found {
		res.AndroidFatPct = domain.FloatPtr(f.value)
	}
	if f := capture(text, gynoidPattern); f.found {
		res.GynoidFatPct = domain.FloatPtr(f.value)
	}
	if f := capture(text, ratioPattern); f.found {
		res.AndroidGynoidRatio = domain.FloatPtr(f.value)
	} else if res.AndroidFatPct != nil && res.GynoidFatPct != nil {
		res.AndroidGynoidRatio = AndroidGynoidRatio(*res.AndroidFatPct, *res.GynoidFatPct)
	}

	raw := a.baseConfidence(filled)
	t := &tables{columns: a.profile.RegionColumn, massUnit: func(string) string { return unitFor("") }}
	t.scan(text, raw)
	res.Regions = append(res.Regions, t.regions...)
	res.BoneDensity = append(res.BoneDensity, t.sites...)
	res.AppendicularLeanMassG = AppendicularLeanMass(res.Regions)

	if len(res.Regions) > 0 {
		raw += tableBonus
	}
	if len(res.BoneDensity) > 0 {
		raw += tableBonus
	}
	res.RawConfidence = round(min(raw, a.confidenceCap()), 4)
	res.Confidence = domain.ConfidenceFromScore(res.RawConfidence)
	res.NeedsReview = res.RawConfidence < a.opts.ReviewThreshold

	if filled == 0 && len(res.Regions) == 0 && len(res.BoneDensity) == 0 {
		res.Success = false
		res.Error = domain.ErrNoMarkers.Error()
		res.NeedsReview = true
		res.Confidence = domain.ConfidenceUncertain
		res.Warnings = append(res.Warnings, "no body-composition fields recognized")
	} else if filled < totalFields {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d of %d total-body fields found", filled, totalFields))
	}

	a.log.Debug("parser.dexa.done",
		logging.Int("fields", filled),
		logging.Int("regions", len(res.Regions)),
		logging.Int("sites", len(res.BoneDensity)),
		logging.Float64("raw_confidence", res.RawConfidence),
	)
	return res
}

func (a *Adapter) baseConfidence(filled int) float64 {
	frac := float64(filled) / totalFields
	if a.profile.Named {
		return namedBaseline + frac*namedSpan
	}
	return genericBaseline + frac*genericSpan
}

func (a *Adapter) confidenceCap() float64 {
	if a.profile.Named {
		return namedCap
	}
	return genericCap
}

func (a *Adapter) failed(err error) *domain.DexaParseResult {
	return &domain.DexaParseResult{
		Success:        false,
		ParserUsed:     a.profile.Name,
		FormatDetected: a.profile.DisplayName,
		Confidence:     domain.ConfidenceUncertain,
		NeedsReview:    true,
		Warnings:       []string{err.Error()},
		Error:          err.Error(),
		Regions:        []domain.DexaRegionResult{},
		BoneDensity:    []domain.DexaBoneDensityResult{},
	}
}
