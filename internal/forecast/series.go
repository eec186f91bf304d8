package forecast

import (
	"fmt"
	"strconv"
	"strings"

	"ricecast/internal/dataset"
)

// Observation is one day of the selected price column. DayIndex is the
// 1-based row position in the upload and is kept through filtering.
type Observation struct {
	DayIndex int     `json:"day_index"`
	Month    string  `json:"month"`
	Date     string  `json:"date"`
	Price    float64 `json:"price"`
}

// Series is an ordered run of observations for one price column.
type Series struct {
	Column       string        `json:"column"`
	Observations []Observation `json:"observations"`
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.Observations)
}

// Prices returns the prices in order.
func (s Series) Prices() []float64 {
	out := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Price
	}
	return out
}

// DayIndices returns the day indices in order.
func (s Series) DayIndices() []int {
	out := make([]int, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.DayIndex
	}
	return out
}

// LastDayIndex returns the day index of the final observation, or 0 when empty.
func (s Series) LastDayIndex() int {
	if len(s.Observations) == 0 {
		return 0
	}
	return s.Observations[len(s.Observations)-1].DayIndex
}

// ResolveColumn finds a price column by header name or, failing that, by its
// 1-based number in the column list.
func ResolveColumn(ds *dataset.RawDataset, column string) (int, error) {
	column = strings.TrimSpace(column)
	if idx, ok := ds.ColumnIndex(column); ok {
		return idx, nil
	}
	if n, err := strconv.Atoi(column); err == nil && n >= 1 && n <= len(ds.Columns) {
		return n - 1, nil
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
}

// Select extracts one price column as a Series. Every upload row becomes an
// observation, including rows whose price cell was empty (NaN).
func Select(ds *dataset.RawDataset, column string) (Series, error) {
	idx, err := ResolveColumn(ds, column)
	if err != nil {
		return Series{}, err
	}

	s := Series{
		Column:       ds.Columns[idx],
		Observations: make([]Observation, 0, len(ds.Rows)),
	}
	for _, row := range ds.Rows {
		s.Observations = append(s.Observations, Observation{
			DayIndex: row.Position,
			Month:    row.Month,
			Date:     row.Date,
			Price:    row.Prices[idx],
		})
	}
	return s, nil
}

// Clean keeps observations whose price is at least floor. NaN prices never
// pass. Order and day indices are preserved, so Clean is idempotent.
func Clean(s Series, floor float64) Series {
	out := Series{
		Column:       s.Column,
		Observations: make([]Observation, 0, len(s.Observations)),
	}
	for _, o := range s.Observations {
		if o.Price >= floor {
			out.Observations = append(out.Observations, o)
		}
	}
	return out
}
