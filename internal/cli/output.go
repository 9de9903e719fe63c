package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"labparse/internal/export"
)

// Output formats for parse and batch.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

func validateFormat(format, output string) error {
	switch format {
	case FormatJSON, FormatCSV:
		return nil
	case FormatXLSX:
		if output == "" || output == "-" {
			return fmt.Errorf("--format xlsx requires --output")
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (json, csv, xlsx)", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeSheet renders docs as CSV or XLSX. The BOM is only written to files.
func writeSheet(w io.Writer, format string, docs []export.Document, threshold float64, toFile bool) error {
	if format == FormatXLSX {
		data, err := export.XLSX(docs, threshold)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	if toFile {
		if _, err := w.Write(export.BOM); err != nil {
			return err
		}
	}
	cw := export.NewWriter(w, threshold)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteDocuments(docs); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
