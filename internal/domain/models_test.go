package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labparse/internal/domain"
)

func TestConfidenceFromScore_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  domain.ConfidenceLevel
	}{
		{1.0, domain.ConfidenceHigh},
		{0.90, domain.ConfidenceHigh},
		{0.8999, domain.ConfidenceMedium},
		{0.70, domain.ConfidenceMedium},
		{0.6999, domain.ConfidenceLow},
		{0.50, domain.ConfidenceLow},
		{0.4999, domain.ConfidenceUncertain},
		{0, domain.ConfidenceUncertain},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.ConfidenceFromScore(tt.score), "score %v", tt.score)
	}
}

func TestConfidenceFromScore_Monotonic(t *testing.T) {
	order := map[domain.ConfidenceLevel]int{
		domain.ConfidenceUncertain: 0,
		domain.ConfidenceLow:       1,
		domain.ConfidenceMedium:    2,
		domain.ConfidenceHigh:      3,
	}
	prev := order[domain.ConfidenceFromScore(0)]
	for i := 1; i <= 1000; i++ {
		rank := order[domain.ConfidenceFromScore(float64(i)/1000)]
		require.GreaterOrEqual(t, rank, prev, "score %v", float64(i)/1000)
		prev = rank
	}
}

func TestDate_JSON(t *testing.T) {
	d := domain.NewDate(2024, time.March, 5)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05"`, string(data))

	var back domain.Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(back.Time))

	assert.Error(t, json.Unmarshal([]byte(`"03/05/2024"`), &back))
}

func TestParseResult_JSONOmitsRawText(t *testing.T) {
	d := domain.NewDate(2024, time.January, 2)
	res := domain.ParseResult{
		Success:        true,
		ParserUsed:     "quest",
		Confidence:     domain.ConfidenceHigh,
		RawText:        "Glucose 95 70-99 mg/dL",
		CollectionDate: &d,
	}

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, m, "raw_text")
	assert.NotContains(t, m, "RawText")
	assert.Equal(t, "high", m["confidence"])
	assert.Equal(t, "2024-01-02", m["collection_date"])
}

func TestFileTypeFromName(t *testing.T) {
	ft, ok := domain.FileTypeFromName("Report.PDF")
	assert.True(t, ok)
	assert.Equal(t, domain.FileTypePDF, ft)

	ft, ok = domain.FileTypeFromName("notes.txt")
	assert.True(t, ok)
	assert.Equal(t, domain.FileTypeText, ft)

	_, ok = domain.FileTypeFromName("scan.png")
	assert.False(t, ok)
}

func TestDexaParseResult_ToMarkers(t *testing.T) {
	res := &domain.DexaParseResult{
		Success:         true,
		RawConfidence:   0.95,
		TotalBodyFatPct: domain.FloatPtr(22.5),
		TotalFatMassG:   domain.FloatPtr(17871.5),
		Regions: []domain.DexaRegionResult{
			{Region: "left_arm", LeanMassG: domain.FloatPtr(3100), Confidence: 0.9},
		},
		BoneDensity: []domain.DexaBoneDensityResult{
			{Site: "lumbar_spine", BMD: domain.FloatPtr(1.2), TScore: domain.FloatPtr(0.4), Confidence: 0.9},
		},
	}

	markers := res.ToMarkers()
	names := make([]string, 0, len(markers))
	for _, m := range markers {
		names = append(names, m.CanonicalName)
	}
	assert.Equal(t, []string{
		"total_body_fat_pct", "total_fat_mass_g",
		"left_arm_lean_mass_g",
		"lumbar_spine_bmd", "lumbar_spine_t_score",
	}, names)

	pr := res.ToParseResult()
	assert.False(t, pr.NeedsReview)
	m, ok := pr.Marker("total_body_fat_pct")
	require.True(t, ok)
	assert.InDelta(t, 22.5, m.Value, 1e-9)
	assert.Equal(t, "%", m.Unit)
}

func TestEpigeneticParseResult_ToMarkers_NoDuplicatePace(t *testing.T) {
	res := &domain.EpigeneticParseResult{
		Success:          true,
		RawConfidence:    0.9,
		ChronologicalAge: domain.FloatPtr(45),
		BiologicalAge:    domain.FloatPtr(41.2),
		Clocks: []domain.EpigeneticClockResult{
			{Name: "horvath", Value: 42.1, Unit: "years", Confidence: 0.9},
			{Name: "dunedinpace", Value: 0.82, Confidence: 0.9},
		},
		PaceOfAging: domain.FloatPtr(0.82),
		OrganAges: []domain.OrganAgeResult{
			{System: "heart", BiologicalAge: 40, Confidence: 0.9},
		},
	}

	markers := res.ToMarkers()
	names := make([]string, 0, len(markers))
	for _, m := range markers {
		names = append(names, m.CanonicalName)
	}
	assert.Equal(t, []string{"chronological_age", "biological_age", "horvath", "pace_of_aging", "heart_age"}, names)
}

func TestDexaParseResult_ToParseResult_LowConfidenceNeedsReview(t *testing.T) {
	res := &domain.DexaParseResult{
		Success:         true,
		RawConfidence:   0.55,
		TotalBodyFatPct: domain.FloatPtr(30),
	}
	assert.True(t, res.ToParseResult().NeedsReview)
}
