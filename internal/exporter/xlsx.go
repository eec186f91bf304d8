package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ricecast/internal/forecast"
)

const (
	sheetSummary    = "Summary"
	sheetComparison = "Comparison"
	sheetSeries     = "Series"
)

// WriteWorkbook writes a workbook with Summary, Comparison and Series sheets.
func WriteWorkbook(w io.Writer, report *forecast.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{sheetComparison, sheetSeries} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	if err := writeSummarySheet(f, report); err != nil {
		return err
	}

	comparison := [][]interface{}{{"Step", "Actual", "SMA forecast", "SES forecast"}}
	for _, row := range report.Comparison {
		comparison = append(comparison, []interface{}{row.Step, cellValue(row.Actual), cellValue(row.MovingAverage), cellValue(row.Smoothed)})
	}
	if err := writeRows(f, sheetComparison, comparison); err != nil {
		return err
	}

	series := [][]interface{}{{"Day", "Month", "Date", "Price", "SMA fitted", "SES fitted"}}
	for i, o := range report.Series.Observations {
		var sma, ses forecast.NullFloat
		if r := report.Result; r != nil {
			if i < len(r.MovingAverageFitted) {
				sma = r.MovingAverageFitted[i]
			}
			if i < len(r.SmoothedFitted) {
				ses = r.SmoothedFitted[i]
			}
		}
		series = append(series, []interface{}{o.DayIndex, o.Month, o.Date, o.Price, cellValue(sma), cellValue(ses)})
	}
	if err := writeRows(f, sheetSeries, series); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, report *forecast.Report) error {
	rows := [][]interface{}{
		{"Source", report.Source},
		{"Column", report.Params.Column},
		{"Horizon", report.Params.Horizon},
		{"Alpha", report.Params.Alpha},
		{"Price floor", report.PriceFloor},
		{"Rows dropped", report.Dropped},
		{},
		{"Metric", "Value"},
	}
	if s := report.Summary; s != nil {
		rows = append(rows,
			[]interface{}{"Mean", s.Mean},
			[]interface{}{"Min", s.Min},
			[]interface{}{"Max", s.Max},
			[]interface{}{"Count", s.Count},
		)
	} else {
		rows = append(rows, []interface{}{"Count", 0})
	}
	if len(report.Notices) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"Notices"})
		for _, n := range report.Notices {
			rows = append(rows, []interface{}{string(n.Kind), n.Message})
		}
	}
	return writeRows(f, sheetSummary, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// cellValue leaves missing values as empty cells.
func cellValue(n forecast.NullFloat) interface{} {
	if !n.Valid {
		return nil
	}
	return n.Value
}
