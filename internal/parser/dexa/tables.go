package dexa

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"labparse/internal/domain"
)

// regionNames maps printed region labels to canonical region names.
var regionNames = map[string]string{
	"left arm":    "left_arm",
	"l arm":       "left_arm",
	"arm left":    "left_arm",
	"right arm":   "right_arm",
	"r arm":       "right_arm",
	"arm right":   "right_arm",
	"left leg":    "left_leg",
	"l leg":       "left_leg",
	"leg left":    "left_leg",
	"right leg":   "right_leg",
	"r leg":       "right_leg",
	"leg right":   "right_leg",
	"arms":        "arms",
	"legs":        "legs",
	"trunk":       "trunk",
	"left trunk":  "left_trunk",
	"right trunk": "right_trunk",
	"android":     "android",
	"gynoid":      "gynoid",
	"head":        "head",
	"ribs":        "ribs",
	"pelvis":      "pelvis",
	"total":       "total",
	"subtotal":    "subtotal",
}

// siteNames maps printed bone-density site labels to canonical site names.
var siteNames = map[string]string{
	"lumbar spine":       "lumbar_spine",
	"l1-l4":              "lumbar_spine",
	"l1 - l4":            "lumbar_spine",
	"ap spine":           "lumbar_spine",
	"spine":              "lumbar_spine",
	"femoral neck":       "femoral_neck",
	"neck":               "femoral_neck",
	"left femoral neck":  "femoral_neck",
	"right femoral neck": "femoral_neck",
	"total hip":          "total_hip",
	"hip":                "total_hip",
	"left hip":           "total_hip",
	"right hip":          "total_hip",
	"dual femur":         "total_hip",
	"total body":         "total_body",
	"whole body":         "total_body",
	"forearm":            "forearm",
	"radius":             "forearm",
	"1/3 radius":         "forearm",
	"arms":               "arms",
	"legs":               "legs",
	"trunk":              "trunk",
	"ribs":               "ribs",
	"pelvis":             "pelvis",
	"head":               "head",
	"total":              "total_body",
}

var (
	regionKeys = sortedKeys(regionNames)
	siteKeys   = sortedKeys(siteNames)
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// lookupLabel resolves label exactly, then by the longest known prefix.
func lookupLabel(label string, table map[string]string, keys []string) (string, bool) {
	l := strings.ToLower(strings.Join(strings.Fields(label), " "))
	if v, ok := table[l]; ok {
		return v, true
	}
	for _, k := range keys {
		if strings.HasPrefix(l, k+" ") || strings.HasPrefix(l, k+"(") {
			return table[k], true
		}
	}
	return "", false
}

// CanonicalRegion resolves a printed region label.
func CanonicalRegion(label string) (string, bool) {
	return lookupLabel(label, regionNames, regionKeys)
}

// CanonicalSite resolves a printed bone-density site label.
func CanonicalSite(label string) (string, bool) {
	return lookupLabel(label, siteNames, siteKeys)
}

// Region table columns.
const (
	colFatPct    = "fat_pct"
	colTotalMass = "total_mass"
	colFatMass   = "fat_mass"
	colLeanMass  = "lean_mass"
	colBMC       = "bmc"
)

var (
	tableRow     = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 .\-/()%]*?[A-Za-z0-9)%])\s*[:|]?\s+(-?\d[\d.,%\s|+\-]*)$`)
	tableNumber  = regexp.MustCompile(`-?\d+(?:,\d{3})*(?:\.\d+)?`)
	boneHeading  = regexp.MustCompile(`(?i)bone\s+(?:mineral\s+)?density|\bBMD\b|t-?score`)
	tableHeading = regexp.MustCompile(`(?i)\bregion(?:al)?\b|body\s+composition|fat\s+distribution|tissue`)
)

type section int

const (
	sectionNone section = iota
	sectionRegions
	sectionBone
)

// tables walks the document and collects region and bone-density rows.
type tables struct {
	columns  []string
	massUnit func(string) string
	regions  []domain.DexaRegionResult
	sites    []domain.DexaBoneDensityResult
}

func (t *tables) scan(text string, baseConfidence float64) {
	cur := sectionNone
	seenRegion := map[string]bool{}
	seenSite := map[string]bool{}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		m := tableRow.FindStringSubmatch(line)
		if m == nil {
			switch {
			case boneHeading.MatchString(line):
				cur = sectionBone
			case tableHeading.MatchString(line):
				cur = sectionRegions
			}
			continue
		}
		label, nums := m[1], numbers(m[2])

		if cur == sectionBone {
			if site, ok := CanonicalSite(label); ok && !seenSite[site] && len(nums) >= 1 && plausibleBMD(nums[0]) {
				seenSite[site] = true
				t.sites = append(t.sites, boneRow(site, nums, baseConfidence))
			}
			continue
		}
		if region, ok := CanonicalRegion(label); ok && !seenRegion[region] && len(nums) >= 2 {
			seenRegion[region] = true
			t.regions = append(t.regions, t.regionRow(region, label, nums, baseConfidence))
		}
	}
}

func (t *tables) regionRow(region, label string, nums []float64, base float64) domain.DexaRegionResult {
	row := domain.DexaRegionResult{Region: region}
	unit := t.massUnit(label)
	filled := 0
	for i, col := range t.columns {
		if i >= len(nums) {
			break
		}
		v := nums[i]
		filled++
		switch col {
		case colFatPct:
			row.FatPct = domain.FloatPtr(v)
		case colTotalMass:
			row.TotalMassG = toGrams(v, unit)
		case colFatMass:
			row.FatMassG = toGrams(v, unit)
		case colLeanMass:
			row.LeanMassG = toGrams(v, unit)
		case colBMC:
			row.BMCG = toGrams(v, unit)
		}
	}
	row.Confidence = rowConfidence(base, filled, len(t.columns))
	return row
}

func boneRow(site string, nums []float64, base float64) domain.DexaBoneDensityResult {
	row := domain.DexaBoneDensityResult{Site: site, BMD: domain.FloatPtr(nums[0])}
	if len(nums) > 1 {
		row.TScore = domain.FloatPtr(nums[1])
	}
	if len(nums) > 2 {
		row.ZScore = domain.FloatPtr(nums[2])
	}
	row.Confidence = rowConfidence(base, min(len(nums), 3), 3)
	return row
}

// plausibleBMD rejects values that cannot be an areal density in g/cm².
func plausibleBMD(v float64) bool {
	return v > 0.1 && v < 3.0
}

// rowConfidence scales base by how many expected columns were present.
func rowConfidence(base float64, filled, expected int) float64 {
	if expected == 0 {
		return base
	}
	return round(base*(0.8+0.2*float64(filled)/float64(expected)), 4)
}

func numbers(s string) []float64 {
	var out []float64
	for _, tok := range tableNumber.FindAllString(s, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", ""), 64)
		if err == nil {
			out = append(out, v)
		}
	}
	return out
}
