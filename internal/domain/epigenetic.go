package domain

import "strconv"

// EpigeneticClockResult is one methylation-clock reading.
type EpigeneticClockResult struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Confidence  float64 `json:"confidence"`
}

// OrganAgeResult is the biological age of one organ system.
type OrganAgeResult struct {
	System        string   `json:"system"`
	BiologicalAge float64  `json:"biological_age"`
	Delta         *float64 `json:"delta"`
	Confidence    float64  `json:"confidence"`
}

// EpigeneticParseResult is the structured outcome of a biological-age test.
type EpigeneticParseResult struct {
	Success        bool            `json:"success"`
	ParserUsed     string          `json:"parser_used"`
	FormatDetected string          `json:"format_detected"`
	Confidence     ConfidenceLevel `json:"confidence"`
	RawConfidence  float64         `json:"raw_confidence"`
	NeedsReview    bool            `json:"needs_review"`
	Warnings       []string        `json:"warnings"`
	RawText        string          `json:"-"`
	PageCount      int             `json:"page_count"`
	ParseTimeMS    float64         `json:"parse_time_ms"`
	Error          string          `json:"error,omitempty"`

	TestDate    *Date  `json:"test_date,omitempty"`
	PatientName string `json:"patient_name,omitempty"`

	ChronologicalAge *float64 `json:"chronological_age"`
	BiologicalAge    *float64 `json:"biological_age"`
	PrimaryClock     string   `json:"primary_clock,omitempty"`
	AgeDelta         *float64 `json:"age_delta"`

	Clocks []EpigeneticClockResult `json:"clocks"`

	PaceOfAging        *float64 `json:"pace_of_aging"`
	PaceInterpretation string   `json:"pace_interpretation,omitempty"`

	OrganAges []OrganAgeResult `json:"organ_ages"`

	TelomereLength     *float64 `json:"telomere_length"`
	TelomerePercentile *float64 `json:"telomere_percentile"`
}

// Clock returns the clock with the given slug.
func (r *EpigeneticParseResult) Clock(slug string) (EpigeneticClockResult, bool) {
	for _, c := range r.Clocks {
		if c.Name == slug {
			return c, true
		}
	}
	return EpigeneticClockResult{}, false
}

// ToMarkers flattens the test into marker rows.
func (r *EpigeneticParseResult) ToMarkers() []MarkerResult {
	var out []MarkerResult
	add := func(name, display, unit string, v *float64, conf float64) {
		if v == nil {
			return
		}
		out = append(out, derivedMarker(name, display, unit, *v, conf, "epigenetic"))
	}

	add("chronological_age", "Chronological Age", "years", r.ChronologicalAge, r.RawConfidence)
	add("biological_age", "Biological Age", "years", r.BiologicalAge, r.RawConfidence)
	for _, c := range r.Clocks {
		if c.Name == "dunedinpace" && r.PaceOfAging != nil {
			continue
		}
		v := c.Value
		add(c.Name, c.DisplayName, c.Unit, &v, c.Confidence)
	}
	add("pace_of_aging", "Pace of Aging", "years/year", r.PaceOfAging, r.RawConfidence)
	for _, o := range r.OrganAges {
		v := o.BiologicalAge
		add(o.System+"_age", o.System+" age", "years", &v, o.Confidence)
	}
	add("telomere_length", "Telomere Length", "kb", r.TelomereLength, r.RawConfidence)
	add("telomere_percentile", "Telomere Percentile", "%", r.TelomerePercentile, r.RawConfidence)
	return out
}

// ToParseResult converts the test into the flat result shape.
func (r *EpigeneticParseResult) ToParseResult() *ParseResult {
	markers := r.ToMarkers()
	return &ParseResult{
		Success:        r.Success,
		ParserUsed:     r.ParserUsed,
		FormatDetected: r.FormatDetected,
		Confidence:     r.Confidence,
		Markers:        markers,
		Warnings:       append([]string{}, r.Warnings...),
		NeedsReview:    r.NeedsReview || anyBelow(markers, MediumThreshold),
		RawText:        r.RawText,
		PageCount:      r.PageCount,
		ParseTimeMS:    r.ParseTimeMS,
		PatientName:    r.PatientName,
		CollectionDate: r.TestDate,
		Error:          r.Error,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
