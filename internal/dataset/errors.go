package dataset

import "errors"

var (
	// ErrUnsupportedFormat is returned for uploads that are neither a workbook nor CSV.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyWorkbook is returned when no header row can be found.
	ErrEmptyWorkbook = errors.New("spreadsheet contains no data")
	// ErrNoPriceColumns is returned when the header has fewer than three columns.
	ErrNoPriceColumns = errors.New("spreadsheet has no price columns")
	// ErrSheetNotFound is returned when ParseOptions.Sheet names a missing sheet.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrMalformed is returned when the file cannot be decoded at all.
	ErrMalformed = errors.New("malformed spreadsheet")
)
