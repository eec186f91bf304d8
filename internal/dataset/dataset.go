package dataset

import (
	"fmt"
	"strings"
	"time"
)

// Row is one uploaded observation day. Prices are aligned with
// RawDataset.Columns; cells that are empty or not numeric hold NaN.
type Row struct {
	Position int
	Month    string
	Date     string
	Time     time.Time
	Prices   []float64
}

// RawDataset is the parsed upload. It is never modified after parsing.
type RawDataset struct {
	Source      string
	Sheet       string
	MonthHeader string
	DateHeader  string
	Columns     []string
	Rows        []Row
}

// ParseOptions controls how an upload is read.
type ParseOptions struct {
	// Sheet selects a worksheet by name. Empty means the first sheet.
	Sheet string
}

// Len returns the number of data rows.
func (d *RawDataset) Len() int {
	return len(d.Rows)
}

// PriceColumns returns a copy of the price column headers in upload order.
func (d *RawDataset) PriceColumns() []string {
	out := make([]string, len(d.Columns))
	copy(out, d.Columns)
	return out
}

// ColumnIndex returns the position of the named price column.
func (d *RawDataset) ColumnIndex(name string) (int, bool) {
	for i, c := range d.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// build turns header + data records into a RawDataset. raw, when non-nil,
// holds unformatted cell values parallel to records and is preferred for
// prices and date serials.
func build(source, sheet string, records, raw [][]string) (*RawDataset, error) {
	headerIdx := -1
	for i, rec := range records {
		if !blank(rec) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptyWorkbook
	}

	header := records[headerIdx]
	if len(header) < 3 {
		return nil, fmt.Errorf("%w: found %d header columns", ErrNoPriceColumns, len(header))
	}

	ds := &RawDataset{
		Source:      source,
		Sheet:       sheet,
		MonthHeader: strings.TrimSpace(header[0]),
		DateHeader:  strings.TrimSpace(header[1]),
		Columns:     columnNames(header[2:]),
	}

	last := len(records) - 1
	for last > headerIdx && blank(records[last]) {
		last--
	}

	for i := headerIdx + 1; i <= last; i++ {
		rec := records[i]
		var rawRec []string
		if raw != nil && i < len(raw) {
			rawRec = raw[i]
		}

		row := Row{
			Position: len(ds.Rows) + 1,
			Month:    strings.TrimSpace(cell(rec, 0)),
			Date:     strings.TrimSpace(cell(rec, 1)),
			Prices:   make([]float64, len(ds.Columns)),
		}
		row.Time = parseDate(row.Date, cell(rawRec, 1))

		for c := range ds.Columns {
			v := cell(rawRec, c+2)
			if strings.TrimSpace(v) == "" {
				v = cell(rec, c+2)
			}
			row.Prices[c] = parsePrice(v)
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

// columnNames names blank headers "Unnamed: N" and suffixes duplicates with
// ".1", ".2" so every price column is addressable by name.
func columnNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i+2)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
