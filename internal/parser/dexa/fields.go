package dexa

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"labparse/internal/domain"
)

// Mass conversion factors to grams.
const (
	GramsPerPound    = 453.59237
	GramsPerKilogram = 1000.0
)

const (
	num      = `(-?\d+(?:,\d{3})*(?:\.\d+)?)`
	massUnit = `\s*(lbs?|pounds?|kgs?|kilograms?|grams|g)?\b`
	sep      = `\s*(?:\((?:lbs?|kg|g|%)\))?\s*[:\-|]?\s*`
)

// Total-body field patterns. Each captures the value and an optional unit.
var (
	fatPctPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*(?:total\s+)?(?:body\s+)?fat\s*(?:%|percent(?:age)?)` + sep + num),
		regexp.MustCompile(`(?im)^\s*(?:total\s+)?(?:body\s+)?fat` + sep + num + `\s*%`),
	}
	fatMassPattern   = regexp.MustCompile(`(?im)^\s*(?:total\s+)?(?:body\s+)?fat\s+(?:mass|tissue)` + sep + num + massUnit)
	leanMassPattern  = regexp.MustCompile(`(?im)^\s*(?:total\s+)?lean(?:\s+(?:body|soft))?(?:\s+(?:mass|tissue))` + sep + num + massUnit)
	bmcPattern       = regexp.MustCompile(`(?im)^\s*(?:total\s+)?(?:bone\s+mineral\s+content|bmc|bone\s+mass)` + sep + num + massUnit)
	totalMassPattern = regexp.MustCompile(`(?im)^\s*(?:total\s+(?:body\s+)?mass|total\s+weight|body\s+weight|weight)` + sep + num + massUnit)

	visceralMassPattern   = regexp.MustCompile(`(?i)(?:visceral\s+(?:adipose\s+tissue|fat)|VAT)(?:\s*\(VAT\))?\s+mass` + sep + num + massUnit)
	visceralVolumePattern = regexp.MustCompile(`(?i)(?:visceral\s+(?:adipose\s+tissue|fat)|VAT)(?:\s*\(VAT\))?\s+volume` + sep + num + `\s*(?:cm3|cm³|cc|in3)?`)

	androidPattern = regexp.MustCompile(`(?im)^\s*android\s*(?:fat\s*)?(?:%|percent)?` + sep + num)
	gynoidPattern  = regexp.MustCompile(`(?im)^\s*gynoid\s*(?:fat\s*)?(?:%|percent)?` + sep + num)
	ratioPattern   = regexp.MustCompile(`(?i)(?:a\s*/\s*g|android\s*/\s*gynoid)\s+(?:fat\s+)?ratio` + sep + num)

	scanDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:scan\s+date|date\s+of\s+scan|measured|exam\s+date|test\s+date|scan\s+time)\s*[:\-]?\s*` + dateCapture),
		regexp.MustCompile(`(?i:date)\s*[:\-]\s*` + dateCapture),
	}
	facilityPattern = regexp.MustCompile(`(?im)^\s*(?:facility|location|clinic|center|centre)\s*:\s*([^\n]+?)\s*$`)
)

const dateCapture = `(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2}|[A-Z][a-z]{2,8}\.?\s+\d{1,2},?\s+\d{4})`

// field is one captured total-body value with its printed unit.
type field struct {
	value float64
	unit  string
	found bool
}

// capture returns the first field matched by patterns, tried in order.
func capture(text string, patterns ...*regexp.Regexp) field {
	var m []string
	for _, p := range patterns {
		if m = p.FindStringSubmatch(text); m != nil {
			break
		}
	}
	if m == nil {
		return field{}
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return field{}
	}
	f := field{value: v, found: true}
	if len(m) > 2 {
		f.unit = strings.ToLower(m[2])
	}
	return f
}

// canonicalMassUnit folds printed mass units to "lb", "kg" or "g".
func canonicalMassUnit(u string) string {
	switch strings.ToLower(strings.TrimSpace(u)) {
	case "lb", "lbs", "pound", "pounds":
		return "lb"
	case "kg", "kgs", "kilogram", "kilograms":
		return "kg"
	case "g", "grams":
		return "g"
	}
	return ""
}

// inferDocumentUnit guesses the mass unit a document prints in when a field
// carries none.
func inferDocumentUnit(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "(lbs)") || strings.Contains(lower, " lbs") || strings.Contains(lower, "(lb)"):
		return "lb"
	case strings.Contains(lower, "(kg)") || strings.Contains(lower, " kg"):
		return "kg"
	default:
		return "g"
	}
}

// toGrams converts v in unit to grams, rounded to two decimals.
func toGrams(v float64, unit string) *float64 {
	switch unit {
	case "lb":
		v *= GramsPerPound
	case "kg":
		v *= GramsPerKilogram
	}
	r := round(v, 2)
	return &r
}

// AndroidGynoidRatio is android% over gynoid%, rounded to three decimals.
// A zero gynoid value yields nil.
func AndroidGynoidRatio(android, gynoid float64) *float64 {
	if gynoid == 0 {
		return nil
	}
	r := round(android/gynoid, 3)
	return &r
}

// AppendicularLeanMass sums arm and leg lean mass. It is nil when both are
// zero or missing.
func AppendicularLeanMass(regions []domain.DexaRegionResult) *float64 {
	lean := map[string]float64{}
	for _, r := range regions {
		if r.LeanMassG != nil {
			lean[r.Region] = *r.LeanMassG
		}
	}
	arms := lean["left_arm"] + lean["right_arm"]
	if arms == 0 {
		arms = lean["arms"]
	}
	legs := lean["left_leg"] + lean["right_leg"]
	if legs == 0 {
		legs = lean["legs"]
	}
	if arms == 0 && legs == 0 {
		return nil
	}
	v := round(arms+legs, 2)
	return &v
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
