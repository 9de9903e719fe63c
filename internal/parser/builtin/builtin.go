// Package builtin assembles the default adapter registry.
package builtin

import (
	"labparse/internal/parser"
	"labparse/internal/parser/bloodpanel"
	"labparse/internal/parser/dexa"
	"labparse/internal/parser/epigenetic"
	"labparse/internal/parser/universal"
	"labparse/internal/port"
)

// NewRegistry registers every built-in adapter. extractor backs the
// universal fallback and may be nil. Registration order is fixed so that
// adapters sharing a priority are always tried in the same order.
func NewRegistry(opts parser.Options, extractor port.MarkerExtractor, maxInputChars int) *parser.Registry {
	opts = opts.WithDefaults()
	reg := parser.NewRegistry(opts.Logger.Named("registry"))
	for _, a := range Adapters(opts, extractor, maxInputChars) {
		reg.Register(a)
	}
	return reg
}

// Adapters returns the built-in adapters in registration order.
func Adapters(opts parser.Options, extractor port.MarkerExtractor, maxInputChars int) []port.FormatAdapter {
	return []port.FormatAdapter{
		bloodpanel.NewQuest(opts),
		bloodpanel.NewLabCorp(opts),
		bloodpanel.NewFunctionHealth(opts),
		bloodpanel.NewInsideTracker(opts),
		dexa.New(dexa.DexaFit, opts),
		dexa.New(dexa.BodySpec, opts),
		dexa.New(dexa.Hologic, opts),
		epigenetic.New(epigenetic.TruDiagnostic, opts),
		epigenetic.New(epigenetic.TallyHealth, opts),
		dexa.New(dexa.Generic, opts),
		epigenetic.New(epigenetic.Generic, opts),
		bloodpanel.NewGeneric(opts),
		universal.New(opts, extractor, maxInputChars),
	}
}
