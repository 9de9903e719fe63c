package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the XLSX workbook.
const (
	SheetMarkers = "Markers"
	SheetSummary = "Summary"
)

var summaryColumns = []string{
	"Document",
	"Parser",
	"Format",
	"Success",
	"Confidence",
	"Needs Review",
	"Markers",
	"Pages",
	"Patient",
	"Collection Date",
	"Error",
	"Warnings",
}

// XLSX builds a workbook with a per-marker sheet and a per-document summary.
func XLSX(docs []Document, reviewThreshold float64) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetMarkers); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}

	var rows [][]string
	for _, doc := range docs {
		rows = append(rows, markerRows(doc, reviewThreshold)...)
	}
	if err := writeSheet(f, SheetMarkers, columns, rows); err != nil {
		return nil, err
	}
	if err := writeSheet(f, SheetSummary, summaryColumns, summaryRows(docs)); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(SheetMarkers, "A", "A", 28)
	_ = f.SetColWidth(SheetMarkers, "D", "E", 26)
	_ = f.SetColWidth(SheetMarkers, "L", "L", 20)
	_ = f.SetColWidth(SheetSummary, "A", "A", 28)
	_ = f.SetColWidth(SheetSummary, "L", "L", 60)

	idx, _ := f.GetSheetIndex(SheetMarkers)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet, r+2, err)
			}
		}
	}
	return nil
}

func summaryRows(docs []Document) [][]string {
	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		res := doc.Result
		if res == nil {
			rows = append(rows, []string{doc.Name})
			continue
		}
		rows = append(rows, []string{
			doc.Name,
			res.ParserUsed,
			res.FormatDetected,
			formatBool(res.Success),
			string(res.Confidence),
			formatBool(res.NeedsReview),
			fmt.Sprint(len(res.Markers)),
			fmt.Sprint(res.PageCount),
			res.PatientName,
			formatDate(res.CollectionDate),
			res.Error,
			strings.Join(res.Warnings, "; "),
		})
	}
	return rows
}
