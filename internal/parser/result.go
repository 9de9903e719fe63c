package parser

import (
	"time"

	"labparse/internal/confidence"
	"labparse/internal/domain"
	"labparse/internal/logging"
)

// FailedResult builds a well-formed unsuccessful result. The error message
// is also recorded as a warning.
func FailedResult(adapter, format string, err error, warnings ...string) *domain.ParseResult {
	return &domain.ParseResult{
		Success:        false,
		ParserUsed:     adapter,
		FormatDetected: format,
		Confidence:     domain.ConfidenceUncertain,
		Markers:        []domain.MarkerResult{},
		Warnings:       append(append([]string{}, warnings...), err.Error()),
		NeedsReview:    true,
		Error:          err.Error(),
	}
}

// Guard runs parse and converts a panic into a failed result. Adapters wrap
// their Parse bodies with it so malformed input never escapes as a panic.
func Guard(log logging.Logger, adapter, format string, parse func() *domain.ParseResult) (res *domain.ParseResult) {
	defer func() {
		if rec := recover(); rec != nil {
			err := &AdapterError{Adapter: adapter, Err: &PanicError{Value: rec}}
			log.Error("parser.adapter.panic", logging.String("adapter", adapter), logging.Err(err))
			res = FailedResult(adapter, format, err)
		}
	}()
	return parse()
}

// Finalize fills the aggregate fields of res from its markers.
func Finalize(res *domain.ParseResult, reviewThreshold float64, started time.Time) {
	if res.Markers == nil {
		res.Markers = []domain.MarkerResult{}
	}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	res.Confidence = confidence.Overall(res.Markers)
	res.NeedsReview = res.NeedsReview || confidence.NeedsReview(res.Markers, reviewThreshold)
	res.ParseTimeMS = elapsedMS(started)
}

func elapsedMS(started time.Time) float64 {
	return float64(time.Since(started).Microseconds()) / 1000
}
