package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseWorkbook reads an Excel workbook. The first sheet is used unless
// opts.Sheet is set.
func ParseWorkbook(source string, r io.Reader, opts ParseOptions) (*RawDataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", ErrMalformed, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyWorkbook
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read raw values of sheet %q: %w", sheet, err)
	}

	return build(source, sheet, rows, raw)
}
