package confidence

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"labparse/internal/domain"
)

// Signal weights. Full credit across all five sums to 1.0.
const (
	WeightFormat    = 0.30
	WeightName      = 0.20
	WeightValue     = 0.20
	WeightUnit      = 0.15
	WeightReference = 0.15

	// LowScoreCutoff marks a marker as unreliable for the overall penalty.
	LowScoreCutoff = 0.5
	// LowFractionPenalty is applied per unit fraction of unreliable markers.
	LowFractionPenalty = 0.2
)

// Signals describes how cleanly a single marker was extracted.
type Signals struct {
	FormatMatched    bool
	NameResolved     bool
	ValueParsed      bool
	Qualitative      bool
	UnitKnown        bool
	UnitPresent      bool
	ReferenceParsed  bool
	ReferencePresent bool
}

// ScoreMarker returns the additive score for s in [0,1] and one reason per signal.
func ScoreMarker(s Signals) (float64, []string) {
	score := 0.0
	reasons := make([]string, 0, 5)
	credit := func(w float64, reason string) {
		score += w
		reasons = append(reasons, fmt.Sprintf("%s (+%.3g)", reason, w))
	}

	if s.FormatMatched {
		credit(WeightFormat, "format matched")
	} else {
		credit(0, "format not matched")
	}

	if s.NameResolved {
		credit(WeightName, "name resolved in dictionary")
	} else {
		credit(0, "name not in dictionary")
	}

	switch {
	case s.ValueParsed:
		credit(WeightValue, "value parsed as number")
	case s.Qualitative:
		credit(WeightValue/2, "qualitative value")
	default:
		credit(0, "value not parsed")
	}

	switch {
	case s.UnitKnown:
		credit(WeightUnit, "unit recognized")
	case !s.UnitPresent:
		credit(WeightUnit/2, "no unit present")
	default:
		credit(0, "unit not recognized")
	}

	switch {
	case s.ReferenceParsed:
		credit(WeightReference, "reference range parsed")
	case s.ReferencePresent:
		credit(WeightReference/2, "reference text not parsed")
	default:
		credit(0, "no reference range")
	}

	return clamp(round4(score)), reasons
}

// qualitativePhrases are result words that carry meaning without a number.
var qualitativePhrases = []string{
	"not detected", "non-reactive", "nonreactive", "none detected", "none seen",
	"negative", "positive", "detected", "reactive", "indeterminate", "equivocal",
	"normal", "abnormal", "present", "absent", "trace",
}

// QualitativePhrases returns the recognized qualitative result phrases.
func QualitativePhrases() []string {
	return append([]string(nil), qualitativePhrases...)
}

// IsQualitative reports whether text is a recognized qualitative phrase.
func IsQualitative(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, p := range qualitativePhrases {
		if t == p {
			return true
		}
	}
	return false
}

// OverallScore is the median marker score minus the low-fraction penalty,
// floored at zero. An empty set scores zero.
func OverallScore(markers []domain.MarkerResult) float64 {
	if len(markers) == 0 {
		return 0
	}
	scores := make([]float64, len(markers))
	low := 0
	for i, m := range markers {
		scores[i] = m.Confidence
		if m.Confidence < LowScoreCutoff {
			low++
		}
	}
	sort.Float64s(scores)

	n := len(scores)
	median := scores[n/2]
	if n%2 == 0 {
		median = (scores[n/2-1] + scores[n/2]) / 2
	}
	penalty := LowFractionPenalty * float64(low) / float64(n)
	return clamp(round4(median - penalty))
}

// Overall maps OverallScore to a confidence band.
func Overall(markers []domain.MarkerResult) domain.ConfidenceLevel {
	return domain.ConfidenceFromScore(OverallScore(markers))
}

// NeedsReview reports whether any marker scores below threshold.
func NeedsReview(markers []domain.MarkerResult, threshold float64) bool {
	for _, m := range markers {
		if m.Confidence < threshold {
			return true
		}
	}
	return false
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
