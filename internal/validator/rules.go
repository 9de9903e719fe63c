package validator

import (
	"fmt"
	"strings"

	"labparse/internal/domain"
)

// Marker is the view of a marker the rules see.
type Marker struct {
	domain.MarkerResult
	// Numeric is false for qualitative results whose Value carries no meaning.
	Numeric bool
}

type rule struct {
	key      string
	name     string
	severity Severity
	check    func(m Marker) []Result
}

func (r *rule) Validate(m Marker) []Result { return r.check(m) }
func (r *rule) RuleKey() string            { return r.key }
func (r *rule) RuleName() string           { return r.name }
func (r *rule) Severity() Severity         { return r.severity }

// BuiltinValidators returns the built-in marker rules.
func BuiltinValidators() []Validator {
	return []Validator{
		&rule{key: "marker.reference_order", name: "Reference Range Order", severity: SeverityError, check: checkReferenceOrder},
		&rule{key: "marker.percent_bounds", name: "Percentage Bounds", severity: SeverityError, check: checkPercentBounds},
		&rule{key: "marker.non_negative", name: "Non-negative Value", severity: SeverityWarning, check: checkNonNegative},
		&rule{key: "marker.flag_consistency", name: "Flag Consistency", severity: SeverityWarning, check: checkFlagConsistency},
	}
}

func fmtf(v float64) string { return fmt.Sprintf("%g", v) }

func checkReferenceOrder(m Marker) []Result {
	if m.ReferenceLow == nil || m.ReferenceHigh == nil {
		return nil
	}
	low, high := *m.ReferenceLow, *m.ReferenceHigh
	if low <= high {
		return []Result{{Passed: true}}
	}
	return []Result{{
		Expected: "low <= high",
		Actual:   fmtf(low) + " > " + fmtf(high),
		Message:  fmt.Sprintf("reference low %s exceeds high %s", fmtf(low), fmtf(high)),
	}}
}

func checkPercentBounds(m Marker) []Result {
	if !m.Numeric || m.CanonicalUnit != "%" {
		return nil
	}
	if m.Value >= 0 && m.Value <= 100 {
		return []Result{{Passed: true}}
	}
	return []Result{{
		Expected: "0-100",
		Actual:   fmtf(m.Value),
		Message:  fmt.Sprintf("percentage %s is outside 0-100", fmtf(m.Value)),
	}}
}

// signedSuffixes name markers that are legitimately negative.
var signedSuffixes = []string{"_t_score", "_z_score", "_delta", "base_excess"}

func checkNonNegative(m Marker) []Result {
	if !m.Numeric {
		return nil
	}
	for _, suffix := range signedSuffixes {
		if strings.HasSuffix(m.CanonicalName, suffix) {
			return nil
		}
	}
	if m.Value >= 0 {
		return []Result{{Passed: true}}
	}
	return []Result{{
		Expected: ">= 0",
		Actual:   fmtf(m.Value),
		Message:  fmt.Sprintf("negative value %s", fmtf(m.Value)),
	}}
}

// checkFlagConsistency compares a printed H/L flag with the parsed range.
// Critical and abnormal flags carry no direction and are not checked, nor
// are reversed ranges.
func checkFlagConsistency(m Marker) []Result {
	if !m.Numeric || (m.ReferenceLow == nil && m.ReferenceHigh == nil) {
		return nil
	}
	if m.ReferenceLow != nil && m.ReferenceHigh != nil && *m.ReferenceLow > *m.ReferenceHigh {
		return nil
	}
	above := m.ReferenceHigh != nil && m.Value > *m.ReferenceHigh
	below := m.ReferenceLow != nil && m.Value < *m.ReferenceLow

	switch strings.ToUpper(m.Flag) {
	case "H":
		if !above {
			return []Result{{Expected: "above range", Actual: fmtf(m.Value), Message: fmt.Sprintf("flagged high but %s is not above the reference range", fmtf(m.Value))}}
		}
	case "L":
		if !below {
			return []Result{{Expected: "below range", Actual: fmtf(m.Value), Message: fmt.Sprintf("flagged low but %s is not below the reference range", fmtf(m.Value))}}
		}
	case "":
		if above || below {
			return []Result{{Expected: "flag", Actual: fmtf(m.Value), Message: fmt.Sprintf("%s is outside the reference range but not flagged", fmtf(m.Value))}}
		}
	}
	return []Result{{Passed: true}}
}
