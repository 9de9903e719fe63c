// Package validator runs consistency rules over extracted markers. Rules
// never change values; failures become warnings and per-marker statuses.
package validator

// Severity of a failed rule.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Result is the outcome of one rule against one marker.
type Result struct {
	Passed   bool
	Expected string
	Actual   string
	Message  string
}

// Validator is the interface for a single built-in validation rule.
type Validator interface {
	Validate(m Marker) []Result
	RuleKey() string
	RuleName() string
	Severity() Severity
}
