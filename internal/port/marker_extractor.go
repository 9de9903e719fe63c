package port

import "context"

// ExtractionRequest carries document text to an external extraction provider.
type ExtractionRequest struct {
	Text     string
	Filename string
}

// ExtractionResponse is the provider's raw reply. Content is expected to hold
// a JSON array of marker items, possibly wrapped in prose.
type ExtractionResponse struct {
	Content string
	Model   string
}

// MarkerExtractor abstracts LLM-based marker extraction.
type MarkerExtractor interface {
	Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResponse, error)
}
