package domain

import (
	"path/filepath"
	"strings"
)

// FileType represents the document types the parser accepts.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeText FileType = "txt"
)

// AllowedContentTypes maps sniffed MIME types (without parameters) to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"text/plain":      FileTypeText,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"txt":  FileTypeText,
	"text": FileTypeText,
}

// FileTypeFromName resolves a FileType from a filename extension.
func FileTypeFromName(filename string) (FileType, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	ft, ok := AllowedExtensions[ext]
	return ft, ok
}

// ConfidenceLevel is the ordinal band derived from a continuous score.
type ConfidenceLevel string

const (
	ConfidenceHigh      ConfidenceLevel = "high"
	ConfidenceMedium    ConfidenceLevel = "medium"
	ConfidenceLow       ConfidenceLevel = "low"
	ConfidenceUncertain ConfidenceLevel = "uncertain"
)

// Band thresholds. Each is an inclusive lower bound.
const (
	HighThreshold   = 0.90
	MediumThreshold = 0.70
	LowThreshold    = 0.50
)

// ConfidenceFromScore maps a score to its band.
func ConfidenceFromScore(score float64) ConfidenceLevel {
	switch {
	case score >= HighThreshold:
		return ConfidenceHigh
	case score >= MediumThreshold:
		return ConfidenceMedium
	case score >= LowThreshold:
		return ConfidenceLow
	default:
		return ConfidenceUncertain
	}
}

// Flag values a marker may carry.
const (
	FlagHigh     = "H"
	FlagLow      = "L"
	FlagAbnormal = "A"
	FlagCritical = "C"
)

// PageBreak separates pages in extracted text.
const PageBreak = "\f"
