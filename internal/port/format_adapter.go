package port

import (
	"context"

	"labparse/internal/domain"
)

// ParseInput is one document handed to a format adapter.
type ParseInput struct {
	Text      string
	FileBytes []byte
	Filename  string
}

// FormatAdapter recognizes and parses one provider's report layout.
type FormatAdapter interface {
	// Name is the stable adapter identifier, e.g. "quest".
	Name() string
	DisplayName() string
	// Priority orders detection; lower values are tried first.
	Priority() int
	// CanParse is a cheap recognizer over the leading text and filename.
	CanParse(text, filename string) bool
	Parse(ctx context.Context, input ParseInput) (*domain.ParseResult, error)
}

// DexaAdapter exposes the structured body-composition result.
type DexaAdapter interface {
	FormatAdapter
	ParseStructured(ctx context.Context, text string) *domain.DexaParseResult
}

// EpigeneticAdapter exposes the structured biological-age result.
type EpigeneticAdapter interface {
	FormatAdapter
	ParseStructured(ctx context.Context, text string) *domain.EpigeneticParseResult
}
