// Package source turns uploaded files into the loosely typed rows the
// import pipeline normalizes.
package source

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrEmptyFile         = errors.New("empty file: no header row")
	ErrInvalidCSV        = errors.New("invalid csv")
	ErrInvalidWorkbook   = errors.New("invalid workbook")
)

// Format is a supported upload format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from the file extension, falling back to
// the content type for extensionless uploads.
func DetectFormat(filename, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case "":
	default:
		return "", ErrUnsupportedFormat
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "text/csv"), strings.HasPrefix(ct, "text/plain"):
		return FormatCSV, nil
	case strings.Contains(ct, "spreadsheetml"):
		return FormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}

// Read parses r according to the detected format. sheet selects the
// worksheet for workbooks and is ignored for CSV.
func Read(filename, contentType string, r io.Reader, sheet string) ([]map[string]any, error) {
	format, err := DetectFormat(filename, contentType)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return ReadXLSX(r, sheet)
	}
	return ReadCSV(r)
}
