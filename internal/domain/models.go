package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date rendered as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON renders the date in ISO-8601 calendar form.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

// UnmarshalJSON accepts the ISO-8601 calendar form.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// MarkerResult is one extracted biomarker reading.
type MarkerResult struct {
	CanonicalName     string   `json:"canonical_name"`
	DisplayName       string   `json:"display_name"`
	Value             float64  `json:"value"`
	ValueText         string   `json:"value_text"`
	Unit              string   `json:"unit"`
	CanonicalUnit     string   `json:"canonical_unit"`
	ReferenceLow      *float64 `json:"reference_low"`
	ReferenceHigh     *float64 `json:"reference_high"`
	ReferenceText     string   `json:"reference_text"`
	Flag              string   `json:"flag,omitempty"`
	Confidence        float64  `json:"confidence"`
	ConfidenceReasons []string `json:"confidence_reasons"`
	Page              int      `json:"page"`
	// Status is the consistency-check outcome: valid, unsure or invalid.
	// Empty when no checks ran.
	Status string `json:"status,omitempty"`
}

// ConfidenceLevel returns the band of the marker's score.
func (m MarkerResult) ConfidenceLevel() ConfidenceLevel {
	return ConfidenceFromScore(m.Confidence)
}

// ParseResult is the outcome of parsing one document.
type ParseResult struct {
	Success          bool            `json:"success"`
	ParserUsed       string          `json:"parser_used"`
	FormatDetected   string          `json:"format_detected"`
	Confidence       ConfidenceLevel `json:"confidence"`
	Markers          []MarkerResult  `json:"markers"`
	Warnings         []string        `json:"warnings"`
	NeedsReview      bool            `json:"needs_review"`
	RawText          string          `json:"-"`
	PageCount        int             `json:"page_count"`
	ParseTimeMS      float64         `json:"parse_time_ms"`
	PatientName      string          `json:"patient_name,omitempty"`
	CollectionDate   *Date           `json:"collection_date,omitempty"`
	ReportDate       *Date           `json:"report_date,omitempty"`
	LabName          string          `json:"lab_name,omitempty"`
	OrderingProvider string          `json:"ordering_provider,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// Marker returns the first marker with the given canonical name.
func (r *ParseResult) Marker(canonical string) (MarkerResult, bool) {
	for _, m := range r.Markers {
		if m.CanonicalName == canonical {
			return m, true
		}
	}
	return MarkerResult{}, false
}

// AddWarning appends a warning message.
func (r *ParseResult) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 {
	return &v
}
