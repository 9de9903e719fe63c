package dexa_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labparse/internal/domain"
	"labparse/internal/parser"
	"labparse/internal/parser/dexa"
	"labparse/internal/port"
)

const dexafitReport = `DexaFit Body Composition Report
Name: Jane Doe
Scan Date: 03/15/2024
Total Body Fat % 22.5%
Fat Mass 39.4 lbs
Lean Mass 128.6 lbs
Bone Mineral Content 6.2 lbs
Total Mass 175.2 lbs
Visceral Fat Mass 1.1 lbs
Visceral Fat Volume 540 cm3
Android 30.2%
Gynoid 28.1%
Regional Breakdown
Region Fat % Total (lbs) Fat (lbs) Lean (lbs) BMC (lbs)
Left Arm 20.1 10.2 2.0 7.8 0.4
Right Arm 19.8 10.6 2.1 8.1 0.4
Left Leg 24.0 30.1 7.2 21.8 1.1
Right Leg 23.5 30.5 7.2 22.2 1.1
Trunk 22.0 80.0 17.6 60.4 2.0
Bone Density
Region BMD (g/cm²) T-Score Z-Score
Lumbar Spine 1.102 0.4 0.6
Femoral Neck 0.950 -0.3 0.1
Total 1.201 1.1 0.9
`

func TestDexaFit_CanParse(t *testing.T) {
	a := dexa.New(dexa.DexaFit, parser.Options{})
	assert.True(t, a.CanParse(dexafitReport, ""))
	assert.True(t, a.CanParse("", "my_dexafit_scan.pdf"))
	assert.False(t, a.CanParse("BodySpec results", "scan.pdf"))
	assert.Equal(t, dexa.PriorityNamed, a.Priority())
}

func TestDexaFit_ParseStructured(t *testing.T) {
	res := dexa.New(dexa.DexaFit, parser.Options{}).ParseStructured(context.Background(), dexafitReport)

	require.True(t, res.Success)
	assert.Equal(t, "dexafit", res.ParserUsed)
	assert.Equal(t, "DexaFit", res.Facility)
	assert.Equal(t, "Jane Doe", res.PatientName)
	require.NotNil(t, res.ScanDate)
	assert.Equal(t, "2024-03-15", res.ScanDate.String())

	require.NotNil(t, res.TotalBodyFatPct)
	assert.InDelta(t, 22.5, *res.TotalBodyFatPct, 1e-9)
	require.NotNil(t, res.TotalFatMassG)
	assert.InDelta(t, 39.4*dexa.GramsPerPound, *res.TotalFatMassG, 0.01)
	assert.InDelta(t, 17871.54, *res.TotalFatMassG, 1e-6)
	require.NotNil(t, res.TotalLeanMassG)
	assert.InDelta(t, 58331.98, *res.TotalLeanMassG, 1e-6)
	require.NotNil(t, res.TotalBMCG)
	assert.InDelta(t, 2812.27, *res.TotalBMCG, 1e-6)
	require.NotNil(t, res.TotalMassG)
	assert.InDelta(t, 79469.38, *res.TotalMassG, 1e-6)

	require.NotNil(t, res.VisceralFatMassG)
	assert.InDelta(t, 498.95, *res.VisceralFatMassG, 1e-6)
	require.NotNil(t, res.VisceralFatVolumeCM3)
	assert.Equal(t, 540.0, *res.VisceralFatVolumeCM3)

	require.NotNil(t, res.AndroidGynoidRatio)
	assert.InDelta(t, 1.075, *res.AndroidGynoidRatio, 1e-9)

	require.Len(t, res.Regions, 5)
	leftArm, ok := res.Region("left_arm")
	require.True(t, ok)
	require.NotNil(t, leftArm.FatPct)
	assert.Equal(t, 20.1, *leftArm.FatPct)
	require.NotNil(t, leftArm.LeanMassG)
	assert.InDelta(t, 3538.02, *leftArm.LeanMassG, 1e-6)

	require.NotNil(t, res.AppendicularLeanMassG)
	assert.InDelta(t, 27170.18, *res.AppendicularLeanMassG, 1e-6)

	require.Len(t, res.BoneDensity, 3)
	assert.Equal(t, "lumbar_spine", res.BoneDensity[0].Site)
	assert.Equal(t, "femoral_neck", res.BoneDensity[1].Site)
	require.NotNil(t, res.BoneDensity[1].TScore)
	assert.Equal(t, -0.3, *res.BoneDensity[1].TScore)
	assert.Equal(t, "total_body", res.BoneDensity[2].Site)

	assert.Equal(t, 1.0, res.RawConfidence)
	assert.Equal(t, domain.ConfidenceHigh, res.Confidence)
	assert.False(t, res.NeedsReview)
}

func TestDexaFit_Parse_Flattens(t *testing.T) {
	res, err := dexa.New(dexa.DexaFit, parser.Options{}).Parse(context.Background(), port.ParseInput{Text: dexafitReport})
	require.NoError(t, err)
	require.True(t, res.Success)

	fat, ok := res.Marker("total_body_fat_pct")
	require.True(t, ok)
	assert.Equal(t, 22.5, fat.Value)
	_, ok = res.Marker("left_arm_lean_mass_g")
	assert.True(t, ok)
	_, ok = res.Marker("lumbar_spine_bmd")
	assert.True(t, ok)
	require.NotNil(t, res.CollectionDate)
	assert.Equal(t, "DexaFit", res.LabName)
}

func TestGenericDexa_InfersUnitsPerField(t *testing.T) {
	text := "Body Composition Report (DXA)\nFacility: Downtown Imaging Center\nDate: 2024-02-01\n" +
		"Body Fat: 30.5%\nFat Mass: 21.3 kg\nLean Mass: 45.0 kg\n"
	a := dexa.New(dexa.Generic, parser.Options{})
	require.True(t, a.CanParse(text, ""))

	res := a.ParseStructured(context.Background(), text)

	require.True(t, res.Success)
	assert.Equal(t, "Downtown Imaging Center", res.Facility)
	require.NotNil(t, res.ScanDate)
	assert.Equal(t, "2024-02-01", res.ScanDate.String())
	require.NotNil(t, res.TotalBodyFatPct)
	assert.Equal(t, 30.5, *res.TotalBodyFatPct)
	require.NotNil(t, res.TotalFatMassG)
	assert.InDelta(t, 21300.0, *res.TotalFatMassG, 1e-6)
	require.NotNil(t, res.TotalLeanMassG)
	assert.InDelta(t, 45000.0, *res.TotalLeanMassG, 1e-6)

	assert.InDelta(t, 0.52, res.RawConfidence, 1e-9)
	assert.Equal(t, domain.ConfidenceLow, res.Confidence)
	assert.True(t, res.NeedsReview)
	assert.Nil(t, res.AppendicularLeanMassG)
}

func TestGenericDexa_FullReport(t *testing.T) {
	text := "DXA scan\n" + dexafitReport[len("DexaFit Body Composition Report\n"):]
	res := dexa.New(dexa.Generic, parser.Options{}).ParseStructured(context.Background(), text)

	require.True(t, res.Success)
	assert.Empty(t, res.Facility)
	require.NotNil(t, res.TotalFatMassG)
	assert.InDelta(t, 17871.54, *res.TotalFatMassG, 1e-6)
	assert.Len(t, res.Regions, 5)
	assert.Len(t, res.BoneDensity, 3)
	assert.InDelta(t, 0.80, res.RawConfidence, 1e-9)
	assert.Equal(t, domain.ConfidenceMedium, res.Confidence)
	assert.False(t, res.NeedsReview)
}

func TestDexa_EmptyText(t *testing.T) {
	res := dexa.New(dexa.BodySpec, parser.Options{}).ParseStructured(context.Background(), "")
	assert.False(t, res.Success)
	assert.True(t, res.NeedsReview)
	assert.Equal(t, domain.ConfidenceUncertain, res.Confidence)
	assert.NotEmpty(t, res.Error)
}

func TestDexa_NoFields(t *testing.T) {
	res := dexa.New(dexa.Hologic, parser.Options{}).ParseStructured(context.Background(), "Hologic Horizon\nThank you\n")
	assert.False(t, res.Success)
	assert.True(t, res.NeedsReview)
}

func TestAndroidGynoidRatio(t *testing.T) {
	r := dexa.AndroidGynoidRatio(30.2, 28.1)
	require.NotNil(t, r)
	assert.Equal(t, 1.075, *r)
	assert.Nil(t, dexa.AndroidGynoidRatio(30, 0))
}

func TestAppendicularLeanMass(t *testing.T) {
	assert.Nil(t, dexa.AppendicularLeanMass(nil))

	v := dexa.AppendicularLeanMass([]domain.DexaRegionResult{
		{Region: "arms", LeanMassG: domain.FloatPtr(7000)},
		{Region: "legs", LeanMassG: domain.FloatPtr(19000)},
		{Region: "trunk", LeanMassG: domain.FloatPtr(30000)},
	})
	require.NotNil(t, v)
	assert.Equal(t, 26000.0, *v)
}

func TestCanonicalRegionAndSite(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Left Arm", "left_arm"},
		{"R Leg", "right_leg"},
		{"Trunk (lbs)", "trunk"},
		{"Android Region", "android"},
	}
	for _, tt := range tests {
		got, ok := dexa.CanonicalRegion(tt.label)
		require.True(t, ok, tt.label)
		assert.Equal(t, tt.want, got)
	}

	site, ok := dexa.CanonicalSite("L1-L4")
	require.True(t, ok)
	assert.Equal(t, "lumbar_spine", site)
	site, ok = dexa.CanonicalSite("Femoral Neck Left")
	require.True(t, ok)
	assert.Equal(t, "femoral_neck", site)

	_, ok = dexa.CanonicalRegion("Elbow")
	assert.False(t, ok)
}
