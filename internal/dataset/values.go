package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Dates are read day-first, as written in the source sheets. ISO dates are
// tried before anything else.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02-01-06",
	"2/1/06",
	"2 January 2006",
	"02 Jan 2006",
}

var (
	// 13.500 or 1.234.567,50: dot groups thousands, comma marks decimals.
	dotGrouped  = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3})+(,\d+)?$`)
	// Rp 13500,5 or Rp 13500,50.
	commaCents  = regexp.MustCompile(`^[+-]?\d+,\d{1,2}$`)
	plainNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
)

// parsePrice converts a price cell to float64. Spaces and a leading "Rp" are
// ignored. Dot-grouped thousands ("13.500", "Rp14.000,50") and comma-grouped
// thousands ("13,100") are both accepted. Anything else, including infinities
// and NaN spellings, yields NaN.
func parsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	rupiah := len(s) >= 2 && strings.EqualFold(s[:2], "rp")
	if rupiah {
		s = strings.TrimPrefix(s[2:], ".")
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "").Replace(s)

	switch {
	case dotGrouped.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case rupiah && commaCents.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	if !plainNumber.MatchString(s) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return math.NaN()
	}
	return v
}

// parseDate tries the displayed text first, then an Excel serial number.
func parseDate(display, raw string) time.Time {
	display = strings.TrimSpace(display)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, display); err == nil {
			return t
		}
	}
	for _, candidate := range []string{raw, display} {
		serial, err := strconv.ParseFloat(strings.TrimSpace(candidate), 64)
		if err != nil || serial <= 0 {
			continue
		}
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t
		}
	}
	return time.Time{}
}
