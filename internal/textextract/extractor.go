// Package textextract turns uploaded documents into page-segmented text.
// PDFs are read from their text layer with ledongthuc/pdf; plain text is
// passed through. Pages are joined with domain.PageBreak.
package textextract

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"labparse/internal/domain"
	"labparse/internal/logging"
	"labparse/internal/port"
)

// Extraction methods reported in port.ExtractedText.Method.
const (
	MethodPDFText = "pdf_text"
	MethodPlain   = "plain_text"
)

// pdfMagic opens every PDF file.
var pdfMagic = []byte("%PDF-")

// Extractor is the default port.TextExtractor.
type Extractor struct {
	maxBytes int64
	log      logging.Logger
}

var _ port.TextExtractor = (*Extractor)(nil)

// New creates an Extractor. maxBytes <= 0 disables the size check.
func New(maxBytes int64, log logging.Logger) *Extractor {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Extractor{maxBytes: maxBytes, log: log.Named("textextract")}
}

// DetectFileType sniffs the content first and falls back to the extension.
func DetectFileType(fileBytes []byte, filename string) (domain.FileType, bool) {
	if bytes.HasPrefix(bytes.TrimLeft(fileBytes, "\x00\t\r\n "), pdfMagic) {
		return domain.FileTypePDF, true
	}
	if ft, ok := domain.FileTypeFromName(filename); ok {
		return ft, true
	}
	if utf8.Valid(fileBytes) {
		return domain.FileTypeText, true
	}
	return "", false
}

func (e *Extractor) Extract(ctx context.Context, fileBytes []byte, filename string) (*port.ExtractedText, error) {
	if len(fileBytes) == 0 {
		return nil, domain.ErrEmptyText
	}
	if e.maxBytes > 0 && int64(len(fileBytes)) > e.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrFileTooLarge, len(fileBytes))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ft, ok := DetectFileType(fileBytes, filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, filename)
	}
	switch ft {
	case domain.FileTypePDF:
		return e.extractPDF(ctx, fileBytes, filename)
	default:
		return extractPlain(fileBytes, filename)
	}
}

func extractPlain(fileBytes []byte, filename string) (*port.ExtractedText, error) {
	if !utf8.Valid(fileBytes) {
		return nil, fmt.Errorf("%w: %s is not UTF-8 text", domain.ErrUnsupportedFileType, filename)
	}
	text := strings.ReplaceAll(string(fileBytes), "\r\n", "\n")
	return &port.ExtractedText{
		Text:      text,
		PageCount: strings.Count(text, domain.PageBreak) + 1,
		Warnings:  []string{},
		Method:    MethodPlain,
	}, nil
}

func (e *Extractor) extractPDF(ctx context.Context, fileBytes []byte, filename string) (out *port.ExtractedText, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("textextract.pdf.panic", logging.String("filename", filename), logging.Any("panic", rec))
			out, err = nil, fmt.Errorf("%w: malformed pdf: %v", domain.ErrExtractionFailed, rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(fileBytes), int64(len(fileBytes)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", domain.ErrExtractionFailed, err)
	}

	n := r.NumPage()
	pages := make([]string, 0, n)
	var warnings []string
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			warnings = append(warnings, fmt.Sprintf("page %d could not be read", i))
			pages = append(pages, "")
			continue
		}
		text, err := pageText(page)
		if err != nil {
			e.log.Warn("textextract.pdf.page_failed", logging.Int("page", i), logging.Err(err))
			warnings = append(warnings, fmt.Sprintf("page %d could not be read: %v", i, err))
		} else if strings.TrimSpace(text) == "" {
			warnings = append(warnings, fmt.Sprintf("page %d has no text layer (scanned image?)", i))
		}
		pages = append(pages, text)
	}

	e.log.Debug("textextract.pdf.done",
		logging.String("filename", filename),
		logging.Int("pages", n),
		logging.Int("warnings", len(warnings)),
	)
	if warnings == nil {
		warnings = []string{}
	}
	return &port.ExtractedText{
		Text:      strings.Join(pages, domain.PageBreak),
		PageCount: n,
		Warnings:  warnings,
		Method:    MethodPDFText,
	}, nil
}

// pageText rebuilds the page's lines from positioned text runs, falling back
// to the plain-text stream when row grouping fails.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil || len(rows) == 0 {
		return page.GetPlainText(nil)
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if line := JoinRuns(runsOf(row.Content)); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Run is a positioned piece of text on one row.
type Run struct {
	X, W float64
	S    string
}

func runsOf(content pdf.TextHorizontal) []Run {
	runs := make([]Run, 0, len(content))
	for _, t := range content {
		runs = append(runs, Run{X: t.X, W: t.W, S: t.S})
	}
	return runs
}

// wordGap is the horizontal distance, in points, that separates two words.
const wordGap = 1.5

// JoinRuns orders runs left to right and inserts a space where the gap
// between consecutive runs is wider than a word gap.
func JoinRuns(runs []Run) string {
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].X < runs[j].X })
	var sb strings.Builder
	end := 0.0
	for i, r := range runs {
		if i > 0 && r.X-end > wordGap && !strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(r.S, " ") {
			sb.WriteByte(' ')
		}
		sb.WriteString(r.S)
		end = r.X + r.W
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
