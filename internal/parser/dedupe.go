package parser

import (
	"fmt"

	"labparse/internal/domain"
	"labparse/internal/normalize"
)

// Dedupe keeps one marker per canonical name: the highest-confidence one,
// or the earliest on ties. Output follows first-occurrence order.
//
// A discarded marker printed under a different name than the one kept is
// reported in the returned warnings.
func Dedupe(markers []domain.MarkerResult) ([]domain.MarkerResult, []string) {
	index := make(map[string]int, len(markers))
	out := make([]domain.MarkerResult, 0, len(markers))
	var warnings []string
	for _, m := range markers {
		i, ok := index[m.CanonicalName]
		if !ok {
			index[m.CanonicalName] = len(out)
			out = append(out, m)
			continue
		}
		kept, dropped := out[i], m
		if m.Confidence > out[i].Confidence {
			kept, dropped = m, out[i]
			out[i] = m
		}
		if normalize.Key(kept.DisplayName) != normalize.Key(dropped.DisplayName) {
			warnings = append(warnings, fmt.Sprintf("%q (page %d) dropped: %s already reported as %q",
				dropped.DisplayName, dropped.Page, m.CanonicalName, kept.DisplayName))
		}
	}
	return out, warnings
}
