// Package export renders parse results as review sheets: CSV for quick
// inspection and XLSX for reviewers who work in spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"labparse/internal/domain"
)

// BOM is the UTF-8 byte order mark Excel on Windows needs to detect UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Document pairs a parse result with the name it is exported under.
type Document struct {
	Name   string
	Result *domain.ParseResult
}

// columns is the marker sheet header row.
var columns = []string{
	"Document",
	"Parser",
	"Collection Date",
	"Marker",
	"Canonical Name",
	"Value",
	"Value Text",
	"Unit",
	"Canonical Unit",
	"Reference Low",
	"Reference High",
	"Reference Text",
	"Flag",
	"Confidence",
	"Confidence Band",
	"Needs Review",
	"Page",
	"Status",
}

// Columns returns a copy of the marker sheet header.
func Columns() []string {
	return append([]string(nil), columns...)
}

// Writer writes marker rows as CSV.
type Writer struct {
	csv             *csv.Writer
	reviewThreshold float64
}

// NewWriter creates a Writer on w. Markers scoring below reviewThreshold are
// marked for review.
func NewWriter(w io.Writer, reviewThreshold float64) *Writer {
	return &Writer{csv: csv.NewWriter(w), reviewThreshold: reviewThreshold}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteDocuments writes one row per marker of every document.
func (w *Writer) WriteDocuments(docs []Document) error {
	for _, doc := range docs {
		for _, row := range markerRows(doc, w.reviewThreshold) {
			if err := w.csv.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// markerRows converts a document's markers to rows. A result without markers
// yields no rows.
func markerRows(doc Document, threshold float64) [][]string {
	res := doc.Result
	if res == nil {
		return nil
	}
	rows := make([][]string, 0, len(res.Markers))
	for _, m := range res.Markers {
		rows = append(rows, []string{
			doc.Name,
			res.ParserUsed,
			formatDate(res.CollectionDate),
			m.DisplayName,
			m.CanonicalName,
			formatFloat(m.Value),
			m.ValueText,
			m.Unit,
			m.CanonicalUnit,
			formatFloatPtr(m.ReferenceLow),
			formatFloatPtr(m.ReferenceHigh),
			m.ReferenceText,
			m.Flag,
			strconv.FormatFloat(m.Confidence, 'f', 2, 64),
			string(m.ConfidenceLevel()),
			formatBool(res.NeedsReview || m.Confidence < threshold),
			strconv.Itoa(m.Page),
			m.Status,
		})
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatDate(d *domain.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	multiUnderscore = regexp.MustCompile(`_{2,}`)
)

// SanitizeFilename cleans a name for use in Content-Disposition. Characters
// other than letters, digits, hyphen and underscore become underscores, runs
// of underscores collapse, and the result is cut to 100 characters.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "markers"
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.{ext}.
func BuildFilename(name, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), ext)
}
