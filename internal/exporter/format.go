package exporter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ricecast/internal/forecast"
)

// Format is an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for unknown export formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat maps a query value to a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName suggests a download name for a report.
func FileName(report *forecast.Report, f Format) string {
	column := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, report.Params.Column)
	return fmt.Sprintf("forecast_%s_h%d_a%s.%s", column, report.Params.Horizon, formatAlpha(report.Params.Alpha), f)
}

// formatFloat formats a value with exactly 2 decimal places.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatNull(n forecast.NullFloat) string {
	return n.Format(2)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

func formatAlpha(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}
