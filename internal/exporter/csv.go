package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"ricecast/internal/forecast"
)

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to w.
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteComparisonCSV writes the comparison table of a report.
func WriteComparisonCSV(w io.Writer, report *forecast.Report) error {
	headers, records := ComparisonRecords(report)
	return WriteCSV(w, WriteOptions{Headers: headers, Records: records, BOMPrefix: true})
}

// WriteSummaryCSV writes the descriptive statistics of a report.
func WriteSummaryCSV(w io.Writer, report *forecast.Report) error {
	headers, records := SummaryRecords(report)
	return WriteCSV(w, WriteOptions{Headers: headers, Records: records, BOMPrefix: true})
}

// ComparisonRecords returns the comparison table as CSV rows.
func ComparisonRecords(report *forecast.Report) ([]string, [][]string) {
	headers := []string{"step", "actual", "sma_forecast", "ses_forecast"}
	records := make([][]string, 0, len(report.Comparison))
	for _, row := range report.Comparison {
		records = append(records, []string{
			formatInt(row.Step),
			formatNull(row.Actual),
			formatNull(row.MovingAverage),
			formatNull(row.Smoothed),
		})
	}
	return headers, records
}

// SummaryRecords returns the statistics as metric/value rows.
func SummaryRecords(report *forecast.Report) ([]string, [][]string) {
	headers := []string{"metric", "value"}
	if report.Summary == nil {
		return headers, [][]string{{"count", "0"}}
	}
	s := report.Summary
	return headers, [][]string{
		{"mean", formatFloat(s.Mean)},
		{"min", formatFloat(s.Min)},
		{"max", formatFloat(s.Max)},
		{"count", formatInt(s.Count)},
	}
}

// SeriesRecords returns the cleaned series with both fitted columns.
func SeriesRecords(report *forecast.Report) ([]string, [][]string) {
	headers := []string{"day", "month", "date", "price", "sma_fitted", "ses_fitted"}
	records := make([][]string, 0, report.Series.Len())
	for i, o := range report.Series.Observations {
		var sma, ses forecast.NullFloat
		if report.Result != nil {
			if i < len(report.Result.MovingAverageFitted) {
				sma = report.Result.MovingAverageFitted[i]
			}
			if i < len(report.Result.SmoothedFitted) {
				ses = report.Result.SmoothedFitted[i]
			}
		}
		records = append(records, []string{
			formatInt(o.DayIndex),
			o.Month,
			o.Date,
			formatFloat(o.Price),
			formatNull(sma),
			formatNull(ses),
		})
	}
	return headers, records
}

// Write encodes the report in the requested format.
func Write(w io.Writer, report *forecast.Report, f Format) error {
	switch f {
	case FormatCSV:
		return WriteComparisonCSV(w, report)
	case FormatXLSX:
		return WriteWorkbook(w, report)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}
