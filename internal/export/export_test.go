package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"labparse/internal/domain"
	"labparse/internal/export"
)

func sampleDocs() []export.Document {
	date := domain.NewDate(2024, time.March, 2)
	return []export.Document{
		{
			Name: "quest.pdf",
			Result: &domain.ParseResult{
				Success:        true,
				ParserUsed:     "quest",
				FormatDetected: "Quest Diagnostics",
				Confidence:     domain.ConfidenceHigh,
				CollectionDate: &date,
				PageCount:      1,
				Markers: []domain.MarkerResult{
					{
						CanonicalName: "glucose",
						DisplayName:   "Glucose",
						Value:         95,
						ValueText:     "95",
						Unit:          "mg/dL",
						CanonicalUnit: "mg/dL",
						ReferenceLow:  domain.FloatPtr(70),
						ReferenceHigh: domain.FloatPtr(99),
						ReferenceText: "70-99",
						Confidence:    1.0,
						Page:          1,
						Status:        "valid",
					},
					{
						CanonicalName: "ldl_cholesterol",
						DisplayName:   "LDL Cholesterol",
						Value:         105,
						ValueText:     "105",
						Unit:          "mg/dL",
						ReferenceHigh: domain.FloatPtr(100),
						Flag:          "H",
						Confidence:    0.55,
						Page:          1,
					},
				},
				Warnings: []string{},
			},
		},
		{
			Name: "blank.pdf",
			Result: &domain.ParseResult{
				Confidence:  domain.ConfidenceUncertain,
				NeedsReview: true,
				Error:       "no text could be extracted from document",
				Markers:     []domain.MarkerResult{},
				Warnings:    []string{"page 1 has no text layer (scanned image?)"},
			},
		},
	}
}

func TestWriter_CSV(t *testing.T) {
	var buf bytes.Buffer
	w := export.NewWriter(&buf, 0.70)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteDocuments(sampleDocs()))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, export.Columns(), rows[0])
	glucose := rows[1]
	assert.Equal(t, "quest.pdf", glucose[0])
	assert.Equal(t, "2024-03-02", glucose[2])
	assert.Equal(t, "glucose", glucose[4])
	assert.Equal(t, "95", glucose[5])
	assert.Equal(t, "70", glucose[9])
	assert.Equal(t, "99", glucose[10])
	assert.Equal(t, "high", glucose[14])
	assert.Equal(t, "No", glucose[15])
	assert.Equal(t, "valid", glucose[17])

	ldl := rows[2]
	assert.Equal(t, "", ldl[9])
	assert.Equal(t, "H", ldl[12])
	assert.Equal(t, "0.55", ldl[13])
	assert.Equal(t, "Yes", ldl[15])
	assert.Equal(t, "", ldl[17])
}

func TestXLSX(t *testing.T) {
	data, err := export.XLSX(sampleDocs(), 0.70)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	markers, err := f.GetRows(export.SheetMarkers)
	require.NoError(t, err)
	require.Len(t, markers, 3)
	assert.Equal(t, "Document", markers[0][0])
	assert.Equal(t, "LDL Cholesterol", markers[2][3])
	assert.Equal(t, "Status", markers[0][17])
	assert.Equal(t, "valid", markers[1][17])

	summary, err := f.GetRows(export.SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "quest", summary[1][1])
	assert.Equal(t, "2", summary[1][6])
	assert.Equal(t, "No", summary[2][3])
	assert.Contains(t, summary[2][11], "no text layer")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Jane Doe / March panel", "Jane_Doe_March_panel"},
		{"__already_clean__", "already_clean"},
		{"!!!", "markers"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, export.SanitizeFilename(tt.in))
	}
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "quest_report_pdf_2024-05-01.xlsx", export.BuildFilename("quest report.pdf", "xlsx", now))
}
