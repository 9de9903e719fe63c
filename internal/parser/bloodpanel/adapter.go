// Package bloodpanel holds the format adapters for commercial and consumer
// blood-panel reports. All of them run the shared line engine with
// provider-specific recognition and line clean-up.
package bloodpanel

import (
	"context"

	"labparse/internal/domain"
	"labparse/internal/logging"
	"labparse/internal/parser"
	"labparse/internal/port"
)

// Detection priorities.
const (
	PriorityMajorLab = 10
	PriorityConsumer = 20
	PriorityGeneric  = 90
)

// Adapter is a blood-panel port.FormatAdapter backed by parser.LineEngine.
type Adapter struct {
	priority  int
	recognize func(text, filename string) bool
	engine    parser.LineEngine
	log       logging.Logger
}

var _ port.FormatAdapter = (*Adapter)(nil)

func newAdapter(engine parser.LineEngine, priority int, recognize func(text, filename string) bool) *Adapter {
	engine.Options = engine.Options.WithDefaults()
	return &Adapter{
		priority:  priority,
		recognize: recognize,
		engine:    engine,
		log:       engine.Options.Logger.Named(engine.Name),
	}
}

func (a *Adapter) Name() string        { return a.engine.Name }
func (a *Adapter) DisplayName() string { return a.engine.DisplayName }
func (a *Adapter) Priority() int       { return a.priority }

// CanParse reports whether the leading text or filename identifies the format.
func (a *Adapter) CanParse(text, filename string) bool {
	return a.recognize(text, filename)
}

// Parse extracts markers from input.Text. Failures are folded into the result.
func (a *Adapter) Parse(ctx context.Context, input port.ParseInput) (*domain.ParseResult, error) {
	return parser.Guard(a.log, a.Name(), a.DisplayName(), func() *domain.ParseResult {
		return a.engine.Parse(ctx, input.Text)
	}), nil
}

// ParseLine exposes single-line extraction for diagnostics and tests.
func (a *Adapter) ParseLine(line string) (domain.MarkerResult, bool) {
	return a.engine.ParseLine(line, 1, a.engine.Options)
}

func filenameHas(filename string, hints ...string) bool {
	return parser.ContainsAny(filename, hints...)
}
