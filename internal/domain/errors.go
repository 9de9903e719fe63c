package domain

import "errors"

var (
	ErrEmptyText           = errors.New("no text could be extracted from document")
	ErrNoAdapter           = errors.New("no parser adapter matched document")
	ErrNoMarkers           = errors.New("no markers found in document")
	ErrProviderUnavailable = errors.New("extraction provider unavailable")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrExtractionFailed    = errors.New("text extraction failed")
	ErrAdapterNotFound     = errors.New("adapter not found")
)
