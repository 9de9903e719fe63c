package port

import "context"

// ExtractedText is document text with pages separated by domain.PageBreak.
type ExtractedText struct {
	Text      string
	PageCount int
	Warnings  []string
	Method    string
}

// TextExtractor converts raw document bytes into page-segmented text.
type TextExtractor interface {
	Extract(ctx context.Context, fileBytes []byte, filename string) (*ExtractedText, error)
}
