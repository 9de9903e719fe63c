package validator

import (
	"strings"

	"labparse/internal/domain"
	"labparse/internal/logging"
	"labparse/internal/parser"
)

// MarkerStatus values.
const (
	StatusValid   = "valid"
	StatusUnsure  = "unsure"
	StatusInvalid = "invalid"
)

// lowConfidence marks markers unsure when no rule failed.
const lowConfidence = 0.5

// MarkerStatus is the computed validation state of one marker.
type MarkerStatus struct {
	Status   string   `json:"status"`
	Messages []string `json:"messages"`
}

// Engine runs every registered rule over a result's markers.
type Engine struct {
	registry *Registry
	log      logging.Logger
}

var _ parser.Checker = (*Engine)(nil)

// NewEngine creates a validation engine. A nil registry uses the built-in rules.
func NewEngine(registry *Registry, log logging.Logger) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Engine{registry: registry, log: log.Named("validator")}
}

type failure struct {
	severity Severity
	message  string
}

// Check appends one warning per failed rule and records each marker's
// status. Values, confidence and review flags are left alone.
func (e *Engine) Check(res *domain.ParseResult) {
	failed := 0
	for i, fs := range e.run(res) {
		for _, f := range fs {
			res.AddWarning("%s: %s", markerLabel(res.Markers[i]), f.message)
			failed++
		}
		res.Markers[i].Status = status(res.Markers[i], fs).Status
	}
	if failed > 0 {
		e.log.Debug("validator.check_failed",
			logging.String("adapter", res.ParserUsed),
			logging.Int("failures", failed),
		)
	}
}

// Statuses derives a status per canonical marker name. Error failures make
// a marker invalid, warnings make it unsure, and markers without failures
// are unsure when their confidence is at or below 0.5.
func (e *Engine) Statuses(res *domain.ParseResult) map[string]*MarkerStatus {
	out := make(map[string]*MarkerStatus, len(res.Markers))
	for i, fs := range e.run(res) {
		out[res.Markers[i].CanonicalName] = status(res.Markers[i], fs)
	}
	return out
}

func status(m domain.MarkerResult, fs []failure) *MarkerStatus {
	st := &MarkerStatus{Status: StatusValid, Messages: []string{}}
	for _, f := range fs {
		if f.severity == SeverityError {
			st.Status = StatusInvalid
		} else if st.Status != StatusInvalid {
			st.Status = StatusUnsure
		}
		st.Messages = append(st.Messages, f.message)
	}
	if len(fs) == 0 && m.Confidence <= lowConfidence {
		st.Status = StatusUnsure
	}
	return st
}

func (e *Engine) run(res *domain.ParseResult) [][]failure {
	rules := e.registry.All()
	out := make([][]failure, len(res.Markers))
	for i, m := range res.Markers {
		view := Marker{MarkerResult: m, Numeric: isNumeric(m)}
		for _, v := range rules {
			for _, r := range v.Validate(view) {
				if !r.Passed {
					out[i] = append(out[i], failure{severity: v.Severity(), message: r.Message})
				}
			}
		}
	}
	return out
}

func isNumeric(m domain.MarkerResult) bool {
	if strings.TrimSpace(m.ValueText) == "" {
		return true
	}
	_, _, ok := parser.ParseValue(m.ValueText)
	return ok
}

func markerLabel(m domain.MarkerResult) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.CanonicalName
}
