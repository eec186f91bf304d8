package dataset

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format identifies an upload encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat maps a file name to its upload format.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Parse reads an upload, choosing the parser from the file extension.
func Parse(name string, r io.Reader, opts ParseOptions) (*RawDataset, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	source := filepath.Base(name)
	if format == FormatCSV {
		return ParseCSV(source, r, opts)
	}
	return ParseWorkbook(source, r, opts)
}
