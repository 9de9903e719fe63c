// Package universal implements the catch-all adapter. It runs the shared
// line engine without format credit and, when that finds nothing, hands the
// document to an external extraction provider.
package universal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"labparse/internal/confidence"
	"labparse/internal/domain"
	"labparse/internal/llm"
	"labparse/internal/logging"
	"labparse/internal/normalize"
	"labparse/internal/parser"
	"labparse/internal/port"
)

// Priority is the highest priority number in use, so the adapter is tried last.
const Priority = 1000

const (
	name        = "universal"
	displayName = "Universal Fallback"
)

// Adapter is the catch-all port.FormatAdapter.
type Adapter struct {
	engine        parser.LineEngine
	extractor     port.MarkerExtractor
	maxInputChars int
	log           logging.Logger
}

var _ port.FormatAdapter = (*Adapter)(nil)

// New creates the universal adapter. extractor may be nil, in which case
// documents the line engine cannot read fail with ErrProviderUnavailable.
func New(opts parser.Options, extractor port.MarkerExtractor, maxInputChars int) *Adapter {
	opts = opts.WithDefaults()
	if maxInputChars <= 0 {
		maxInputChars = llm.DefaultMaxInputChars
	}
	return &Adapter{
		engine: parser.LineEngine{
			Name:        name,
			DisplayName: displayName,
			Options:     opts,
		},
		extractor:     extractor,
		maxInputChars: maxInputChars,
		log:           opts.Logger.Named(name),
	}
}

func (a *Adapter) Name() string        { return name }
func (a *Adapter) DisplayName() string { return displayName }
func (a *Adapter) Priority() int       { return Priority }

// CanParse accepts every document.
func (a *Adapter) CanParse(string, string) bool { return true }

// Parse extracts markers heuristically, then through the extraction
// provider if the heuristics found none. The result always needs review.
func (a *Adapter) Parse(ctx context.Context, input port.ParseInput) (*domain.ParseResult, error) {
	res := parser.Guard(a.log, name, displayName, func() *domain.ParseResult {
		return a.parse(ctx, input)
	})
	res.NeedsReview = true
	return res, nil
}

func (a *Adapter) parse(ctx context.Context, input port.ParseInput) *domain.ParseResult {
	started := time.Now()
	res := a.engine.Parse(ctx, input.Text)
	if len(res.Markers) > 0 || strings.TrimSpace(input.Text) == "" || ctx.Err() != nil {
		return res
	}

	if a.extractor == nil {
		res.Error = fmt.Errorf("%w: %w", domain.ErrNoMarkers, domain.ErrProviderUnavailable).Error()
		res.AddWarning("%s: heuristic extraction found no markers and no AI provider is configured", domain.ErrProviderUnavailable)
		a.log.Warn("parser.universal.no_provider", logging.String("filename", input.Filename))
		return res
	}
	return a.extract(ctx, input, res, started)
}

// extract delegates to the provider. Provider and decoding failures leave a
// successful result with zero markers and an explanatory warning.
func (a *Adapter) extract(ctx context.Context, input port.ParseInput, res *domain.ParseResult, started time.Time) *domain.ParseResult {
	res.Success = true
	res.Error = ""

	text, truncated := llm.TruncateText(input.Text, a.maxInputChars)
	if truncated {
		res.AddWarning("document truncated to %d characters for AI extraction", a.maxInputChars)
		a.log.Warn("parser.universal.truncated",
			logging.String("filename", input.Filename),
			logging.Int("limit", a.maxInputChars),
		)
	}

	resp, err := a.extractor.Extract(ctx, port.ExtractionRequest{Text: text, Filename: input.Filename})
	if err != nil {
		a.log.Warn("parser.universal.provider_failed", logging.String("filename", input.Filename), logging.Err(err))
		res.AddWarning("AI extraction could not be completed: %v", err)
		parser.Finalize(res, a.engine.ReviewThreshold, started)
		return res
	}

	decoded, err := llm.DecodeItems(resp.Content)
	if err != nil {
		a.log.Warn("parser.universal.decode_failed", logging.String("model", resp.Model), logging.Err(err))
		res.AddWarning("AI response could not be decoded: %v", err)
		parser.Finalize(res, a.engine.ReviewThreshold, started)
		return res
	}
	if decoded.Invalid > 0 {
		res.AddWarning("%d AI-extracted items failed validation and were dropped", decoded.Invalid)
	}

	markers := make([]domain.MarkerResult, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		if m, ok := a.marker(item); ok {
			markers = append(markers, m)
		}
	}
	var dropped []string
	res.Markers, dropped = parser.Dedupe(markers)
	res.Warnings = append(res.Warnings, dropped...)
	if len(res.Markers) == 0 {
		res.AddWarning("AI extraction returned no markers")
	}
	parser.Finalize(res, a.engine.ReviewThreshold, started)

	a.log.Info("parser.universal.ai_done",
		logging.String("model", resp.Model),
		logging.Int("items", len(decoded.Items)),
		logging.Int("invalid", decoded.Invalid),
		logging.Int("markers", len(res.Markers)),
	)
	return res
}

// marker converts one provider item. Items with neither a number nor any
// printed value are dropped. Page is 0 because the provider does not report it.
func (a *Adapter) marker(item llm.Item) (domain.MarkerResult, bool) {
	valueText := strings.TrimSpace(item.ValueText)
	m := domain.MarkerResult{
		DisplayName:   item.Name,
		ValueText:     valueText,
		Unit:          strings.TrimSpace(item.Unit),
		ReferenceText: strings.TrimSpace(item.ReferenceRange),
		Flag:          parser.NormalizeFlag(item.Flag),
	}
	m.CanonicalUnit = normalize.NormalizeUnit(m.Unit)

	parsed := false
	embedded := ""
	switch {
	case item.Value != nil:
		m.Value, parsed = *item.Value, true
	case valueText != "":
		m.Value, embedded, parsed = parser.ParseValue(valueText)
		if !parsed {
			m.Value = 0
		}
	default:
		return domain.MarkerResult{}, false
	}
	if m.Flag == "" {
		m.Flag = embedded
	}
	m.ReferenceLow, m.ReferenceHigh = parser.ParseReference(m.ReferenceText)

	canonical, _ := a.engine.Dictionary.Resolve(item.Name)
	m.CanonicalName = canonical
	if canonical == "" {
		m.CanonicalName = normalize.Slugify(item.Name)
	}

	m.Confidence, m.ConfidenceReasons = confidence.ScoreMarker(confidence.Signals{
		NameResolved:     canonical != "",
		ValueParsed:      parsed,
		Qualitative:      !parsed && confidence.IsQualitative(valueText),
		UnitKnown:        normalize.IsKnownUnit(m.Unit),
		UnitPresent:      m.Unit != "",
		ReferenceParsed:  m.ReferenceLow != nil || m.ReferenceHigh != nil,
		ReferencePresent: m.ReferenceText != "",
	})
	return m, true
}
