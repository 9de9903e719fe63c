package epigenetic

import (
	"regexp"
	"sort"
	"strings"
)

// Clock units.
const (
	UnitYears     = "years"
	UnitPaceRatio = "years/year"
)

const slugDunedinPACE = "dunedinpace"

// clockSlugs maps printed clock names to canonical slugs.
var clockSlugs = map[string]string{
	"horvath":        "horvath",
	"horvath clock":  "horvath",
	"pchorvath":      "horvath",
	"horvath2":       "horvath_skin_blood",
	"horvath skin":   "horvath_skin_blood",
	"skin and blood": "horvath_skin_blood",
	"skin & blood":   "horvath_skin_blood",
	"hannum":         "hannum",
	"pchannum":       "hannum",
	"phenoage":       "phenoage",
	"pheno age":      "phenoage",
	"dnamphenoage":   "phenoage",
	"pcphenoage":     "phenoage",
	"levine":         "phenoage",
	"grimage":        "grimage",
	"grim age":       "grimage",
	"grimage2":       "grimage",
	"dnamgrimage":    "grimage",
	"pcgrimage":      "grimage",
	"dunedinpace":    slugDunedinPACE,
	"dunedin pace":   slugDunedinPACE,
	"dunedinpoam":    slugDunedinPACE,
	"dunedin":        slugDunedinPACE,
	"omicmage":       "omicmage",
	"symphonyage":    "symphonyage",
	"intrinsic age":  "intrinsic_age",
	"extrinsic age":  "extrinsic_age",
}

// clockDisplay names each canonical clock.
var clockDisplay = map[string]string{
	"horvath":            "Horvath Clock",
	"horvath_skin_blood": "Horvath Skin & Blood Clock",
	"hannum":             "Hannum Clock",
	"phenoage":           "PhenoAge",
	"grimage":            "GrimAge",
	slugDunedinPACE:      "DunedinPACE",
	"omicmage":           "OMICmAge",
	"symphonyage":        "SYMPHONYAge",
	"intrinsic_age":      "Intrinsic Age",
	"extrinsic_age":      "Extrinsic Age",
}

var clockKeys = func() []string {
	keys := make([]string, 0, len(clockSlugs))
	for k := range clockSlugs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// ClockSlug resolves a printed clock name, exactly and then by the longest
// known prefix.
func ClockSlug(name string) (string, bool) {
	n := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if slug, ok := clockSlugs[n]; ok {
		return slug, true
	}
	if slug, ok := clockSlugs[strings.ReplaceAll(n, " ", "")]; ok {
		return slug, true
	}
	for _, k := range clockKeys {
		if strings.HasPrefix(n, k) {
			return clockSlugs[k], true
		}
	}
	return "", false
}

// ClockDisplayName returns the display name of a canonical clock.
func ClockDisplayName(slug string) string {
	if d, ok := clockDisplay[slug]; ok {
		return d
	}
	return slug
}

func clockUnit(slug string) string {
	if slug == slugDunedinPACE {
		return UnitPaceRatio
	}
	return UnitYears
}

const (
	clockSuffix = `(?:\s+(?:clock|epigenetic\s+age|biological\s+age|age))*`
	clockValue  = `\s*(?:\([^)]*\))?\s*[:\-|=]?\s*(\d{1,3}(?:\.\d+)?)`
)

func clockPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^\s*(` + label + `)` + clockSuffix + clockValue)
}

// clockPatterns each recognize one clock family. Group 1 is the printed
// name, group 2 the value.
var clockPatterns = []*regexp.Regexp{
	clockPattern(`(?:pc\s*)?horvath(?:2|\s+skin\s*(?:and|&)\s*blood)?`),
	clockPattern(`(?:pc\s*)?hannum`),
	clockPattern(`(?:(?:dnam|pc)\s*)?pheno\s*age|levine`),
	clockPattern(`(?:(?:dnam|pc)\s*)?grim\s*age2?`),
	clockPattern(`dunedin\s*(?:pace|poam)`),
	clockPattern(`omicm\s*age`),
	clockPattern(`symphony\s*age`),
}
