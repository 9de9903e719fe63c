package parser_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labparse/internal/domain"
	"labparse/internal/parser"
)

const header = `Patient Name: Jane Doe DOB: 03/04/1980
Ordering Physician: Dr. Alan Grant
Date Collected: 01/15/2024
Date Reported: 2024-01-17
`

func TestExtractMetadata(t *testing.T) {
	md := parser.ExtractMetadata(header, 3000)

	assert.Equal(t, "Jane Doe", md.PatientName)
	assert.Equal(t, "Dr. Alan Grant", md.OrderingProvider)
	require.NotNil(t, md.CollectionDate)
	assert.Equal(t, "2024-01-15", md.CollectionDate.String())
	require.NotNil(t, md.ReportDate)
	assert.Equal(t, "2024-01-17", md.ReportDate.String())
}

func TestExtractMetadata_HeaderWindowOnly(t *testing.T) {
	text := strings.Repeat("filler line\n", 400) + header
	md := parser.ExtractMetadata(text, 3000)
	assert.Empty(t, md.PatientName)
	assert.Nil(t, md.CollectionDate)
}

func TestParseDate(t *testing.T) {
	tests := map[string]domain.Date{
		"1/5/2024":        domain.NewDate(2024, time.January, 5),
		"01/05/24":        domain.NewDate(2024, time.January, 5),
		"2024-01-05":      domain.NewDate(2024, time.January, 5),
		"January 5, 2024": domain.NewDate(2024, time.January, 5),
		"Jan 5, 2024":     domain.NewDate(2024, time.January, 5),
		"5-Jan-2024":      domain.NewDate(2024, time.January, 5),
	}
	for in, want := range tests {
		got, ok := parser.ParseDate(in)
		require.True(t, ok, in)
		assert.Equal(t, want.String(), got.String(), in)
	}

	_, ok := parser.ParseDate("13/45/2024")
	assert.False(t, ok)
}

func TestMetadata_Apply(t *testing.T) {
	res := &domain.ParseResult{}
	parser.ExtractMetadata(header, 3000).Apply(res)
	assert.Equal(t, "Jane Doe", res.PatientName)
	assert.NotNil(t, res.CollectionDate)
}
