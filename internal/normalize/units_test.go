package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labparse/internal/normalize"
)

func TestNormalizeUnit(t *testing.T) {
	tests := map[string]string{
		"mg/dL":    "mg/dL",
		"MG/DL":    "mg/dL",
		"umol/L":   "µmol/L",
		"μmol/L":   "µmol/L",
		"uIU/mL":   "µIU/mL",
		"x10E3/uL": "10³/µL",
		"K/uL":     "10³/µL",
		"mcg/dL":   "µg/dL",
		"lbs":      "lb",
		" % ":      "%",
	}
	for raw, want := range tests {
		assert.Equal(t, want, normalize.NormalizeUnit(raw), raw)
	}
}

func TestNormalizeUnit_UnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "furlongs/fortnight", normalize.NormalizeUnit("furlongs/fortnight"))
	assert.Equal(t, "", normalize.NormalizeUnit("  "))
}

func TestIsKnownUnit(t *testing.T) {
	assert.True(t, normalize.IsKnownUnit("mg/dL"))
	assert.True(t, normalize.IsKnownUnit("mL/min/1.73 m2"))
	assert.False(t, normalize.IsKnownUnit("widgets"))
	assert.False(t, normalize.IsKnownUnit(""))
}

func TestConvertValue_GlucoseInverse(t *testing.T) {
	for _, x := range []float64{0, 3.9, 5.5, 7.2, 25} {
		mgdl, ok := normalize.ConvertValue(x, "mmol/L", "mg/dL")
		require.True(t, ok)
		back, ok := normalize.ConvertValue(mgdl, "mg/dL", "mmol/L")
		require.True(t, ok)
		assert.InDelta(t, x, back, 1e-9)
	}
}

func TestConvertValue(t *testing.T) {
	v, ok := normalize.ConvertValue(88.4, "umol/L", "mg/dL")
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-9)

	v, ok = normalize.ConvertValue(2, "lbs", "g")
	require.True(t, ok)
	assert.InDelta(t, 907.18474, v, 1e-9)

	v, ok = normalize.ConvertValue(12, "mg/dL", "mg/dL")
	require.True(t, ok)
	assert.Equal(t, 12.0, v)

	_, ok = normalize.ConvertValue(1, "ng/mL", "pg/mL")
	assert.False(t, ok)
}

func TestConvertMarkerValue(t *testing.T) {
	v, ok := normalize.ConvertMarkerValue("total_cholesterol", 5, "mmol/L", "mg/dL")
	require.True(t, ok)
	assert.InDelta(t, 193.35, v, 1e-9)

	v, ok = normalize.ConvertMarkerValue("vitamin_d", 100, "nmol/L", "ng/mL")
	require.True(t, ok)
	assert.InDelta(t, 40.06, v, 1e-9)

	v, ok = normalize.ConvertMarkerValue("ferritin", 1, "kg", "g")
	require.True(t, ok)
	assert.Equal(t, 1000.0, v)

	_, ok = normalize.ConvertMarkerValue("ferritin", 1, "mmol/L", "mg/dL")
	assert.False(t, ok)
}
