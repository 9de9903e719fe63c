package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labparse/internal/parser"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in       string
		want     float64
		wantFlag string
		wantOK   bool
	}{
		{"95", 95, "", true},
		{"5.4", 5.4, "", true},
		{">60", 60, "", true},
		{"<0.5", 0.5, "", true},
		{"≥ 90", 90, "", true},
		{"~12", 12, "", true},
		{"1,234.5", 1234.5, "", true},
		{"130H", 130, "H", true},
		{"3.1L", 3.1, "L", true},
		{"-2.5", -2.5, "", true},
		{"Negative", 0, "", false},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, flag, ok := parser.ParseValue(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantFlag, flag)
			if tt.wantOK {
				assert.InDelta(t, tt.want, v, 1e-9)
			}
		})
	}
}

func TestParseReference(t *testing.T) {
	low, high := parser.ParseReference("70-99")
	require.NotNil(t, low)
	require.NotNil(t, high)
	assert.Equal(t, 70.0, *low)
	assert.Equal(t, 99.0, *high)

	low, high = parser.ParseReference("3.4 – 10.8")
	require.NotNil(t, low)
	require.NotNil(t, high)
	assert.Equal(t, 3.4, *low)
	assert.Equal(t, 10.8, *high)

	low, high = parser.ParseReference(">59")
	require.NotNil(t, low)
	assert.Equal(t, 59.0, *low)
	assert.Nil(t, high)

	low, high = parser.ParseReference("<100")
	assert.Nil(t, low)
	require.NotNil(t, high)
	assert.Equal(t, 100.0, *high)

	low, high = parser.ParseReference("Negative")
	assert.Nil(t, low)
	assert.Nil(t, high)
}

func TestNormalizeFlag(t *testing.T) {
	assert.Equal(t, "H", parser.NormalizeFlag("high"))
	assert.Equal(t, "H", parser.NormalizeFlag("HH"))
	assert.Equal(t, "L", parser.NormalizeFlag("Low"))
	assert.Equal(t, "A", parser.NormalizeFlag("Abnormal"))
	assert.Equal(t, "C", parser.NormalizeFlag("*CRIT*"))
	assert.Equal(t, "", parser.NormalizeFlag("mg/dL"))
	assert.Equal(t, "", parser.NormalizeFlag(""))
}

func TestSplitPages(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parser.SplitPages("a\fb\f"))
	assert.Equal(t, []string{"only"}, parser.SplitPages("only"))
}

func TestHead_RuneSafe(t *testing.T) {
	assert.Equal(t, "µµ", parser.Head("µµµ", 2))
	assert.Equal(t, "abc", parser.Head("abc", 10))
}

func TestCountDistinct(t *testing.T) {
	assert.Equal(t, 2, parser.CountDistinct("Quest Diagnostics CLIA", "quest", "clia", "labcorp"))
	assert.True(t, parser.ContainsAny("LabCorp", "labcorp"))
}
