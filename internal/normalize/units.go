package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// unitSpellings maps canonical units to the variants labs print.
var unitSpellings = map[string][]string{
	"mg/dL":         {"mg/dl", "mg/dL", "mg / dL", "mg per dL"},
	"g/dL":          {"g/dl", "gm/dL"},
	"mg/L":          {"mg/l"},
	"mmol/L":        {"mmol/l", "mmol / L"},
	"µmol/L":        {"umol/L", "μmol/L", "micromol/L"},
	"nmol/L":        {"nmol/l"},
	"pmol/L":        {"pmol/l"},
	"mEq/L":         {"meq/l", "mEq / L"},
	"U/L":           {"u/l", "units/L"},
	"IU/L":          {"iu/l"},
	"mIU/L":         {"miu/l"},
	"mIU/mL":        {"miu/ml"},
	"µIU/mL":        {"uIU/mL", "μIU/mL", "microIU/mL"},
	"ng/mL":         {"ng/ml"},
	"ng/dL":         {"ng/dl"},
	"pg/mL":         {"pg/ml"},
	"µg/dL":         {"ug/dL", "mcg/dL", "μg/dL"},
	"µg/L":          {"ug/L", "mcg/L"},
	"%":             {"percent", "pct"},
	"fL":            {"fl"},
	"pg":            {"picograms"},
	"10³/µL":        {"x10E3/uL", "x10^3/uL", "K/uL", "Thousand/uL", "10^3/uL", "10*3/uL", "K/mcL"},
	"10⁶/µL":        {"x10E6/uL", "x10^6/uL", "M/uL", "Million/uL", "10^6/uL", "10*6/uL", "M/mcL"},
	"cells/µL":      {"cells/uL", "cells/mcL"},
	"mL/min/1.73m²": {"mL/min/1.73m2", "mL/min/1.73 m2", "mL/min/{1.73_m2}"},
	"ratio":         {"(ratio)"},
	"mg/g":          {"mg/g creat"},
	"g":             {"grams", "gm"},
	"kg":            {"kgs", "kilograms"},
	"lb":            {"lbs", "pounds", "pound"},
	"g/cm²":         {"g/cm2", "g/cm^2"},
	"cm³":           {"cm3", "cc"},
	"years":         {"yrs", "year", "yr"},
	"kb":            {"kbp"},
}

var unitIndex = buildUnitIndex()

func buildUnitIndex() map[string]string {
	idx := make(map[string]string)
	for canonical, variants := range unitSpellings {
		idx[UnitKey(canonical)] = canonical
		for _, v := range variants {
			idx[UnitKey(v)] = canonical
		}
	}
	return idx
}

// UnitKey folds a unit for lookup: NFKC, lower case, micro signs as "u",
// whitespace removed.
func UnitKey(raw string) string {
	s := strings.ToLower(norm.NFKC.String(raw))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == 'μ' || r == 'µ':
			b.WriteByte('u')
		case r == ' ' || r == '\t':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeUnit returns the canonical spelling of raw. Unknown units are
// returned unchanged.
func NormalizeUnit(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if c, ok := unitIndex[UnitKey(trimmed)]; ok {
		return c
	}
	return raw
}

// IsKnownUnit reports whether raw is a registered unit spelling.
func IsKnownUnit(raw string) bool {
	_, ok := unitIndex[UnitKey(strings.TrimSpace(raw))]
	return ok && strings.TrimSpace(raw) != ""
}

type unitPair struct{ from, to string }

// pairFactors are unit conversions registered without a marker context.
// The mmol/L and mg/dL pair uses the glucose factor.
var pairFactors = map[unitPair]float64{
	{"mmol/L", "mg/dL"}: 18.0,
	{"mg/dL", "mmol/L"}: 1 / 18.0,
	{"µmol/L", "mg/dL"}: 1 / 88.4,
	{"mg/dL", "µmol/L"}: 88.4,
	{"lb", "g"}:         453.59237,
	{"g", "lb"}:         1 / 453.59237,
	{"kg", "g"}:         1000,
	{"g", "kg"}:         0.001,
	{"lb", "kg"}:        0.45359237,
	{"kg", "lb"}:        1 / 0.45359237,
	{"g/dL", "mg/dL"}:   1000,
	{"mg/dL", "g/dL"}:   0.001,
	{"mg/L", "mg/dL"}:   0.1,
	{"mg/dL", "mg/L"}:   10,
}

// concentrationPairs depend on the analyte's molar mass.
var concentrationPairs = map[unitPair]bool{
	{"mmol/L", "mg/dL"}: true,
	{"mg/dL", "mmol/L"}: true,
	{"µmol/L", "mg/dL"}: true,
	{"mg/dL", "µmol/L"}: true,
	{"nmol/L", "ng/mL"}: true,
	{"ng/mL", "nmol/L"}: true,
	{"nmol/L", "ng/dL"}: true,
	{"ng/dL", "nmol/L"}: true,
}

// markerFactors override pairFactors for specific analytes.
var markerFactors = map[string]map[unitPair]float64{
	"glucose": {
		{"mmol/L", "mg/dL"}: 18.0,
		{"mg/dL", "mmol/L"}: 1 / 18.0,
	},
	"total_cholesterol":   cholesterolFactors,
	"hdl_cholesterol":     cholesterolFactors,
	"ldl_cholesterol":     cholesterolFactors,
	"non_hdl_cholesterol": cholesterolFactors,
	"triglycerides": {
		{"mmol/L", "mg/dL"}: 88.57,
		{"mg/dL", "mmol/L"}: 1 / 88.57,
	},
	"creatinine": {
		{"µmol/L", "mg/dL"}: 1 / 88.4,
		{"mg/dL", "µmol/L"}: 88.4,
	},
	"vitamin_d": {
		{"nmol/L", "ng/mL"}: 0.4006,
		{"ng/mL", "nmol/L"}: 1 / 0.4006,
	},
	"testosterone_total": {
		{"nmol/L", "ng/dL"}: 28.84,
		{"ng/dL", "nmol/L"}: 1 / 28.84,
	},
}

var cholesterolFactors = map[unitPair]float64{
	{"mmol/L", "mg/dL"}: 38.67,
	{"mg/dL", "mmol/L"}: 1 / 38.67,
}

// ConvertValue converts value between two units using the registered
// pair table. It reports false when no factor is known.
func ConvertValue(value float64, from, to string) (float64, bool) {
	f, t := NormalizeUnit(from), NormalizeUnit(to)
	if f == t {
		return value, true
	}
	factor, ok := pairFactors[unitPair{f, t}]
	if !ok {
		return 0, false
	}
	return value * factor, true
}

// ConvertMarkerValue converts value for a specific canonical marker.
// Analyte-dependent concentration pairs only convert when the marker
// has a registered factor.
func ConvertMarkerValue(canonical string, value float64, from, to string) (float64, bool) {
	f, t := NormalizeUnit(from), NormalizeUnit(to)
	if f == t {
		return value, true
	}
	pair := unitPair{f, t}
	if factors, ok := markerFactors[canonical]; ok {
		if factor, ok := factors[pair]; ok {
			return value * factor, true
		}
	}
	if concentrationPairs[pair] {
		return 0, false
	}
	return ConvertValue(value, f, t)
}
