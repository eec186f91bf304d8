package forecast

// ComparisonRow lines up one forecast step with both model outputs.
//
// Actual is taken from the tail of the observed series: for horizon h and n
// observations, step k shows price[n-h+k-1]. It is a look-back at data the
// models were fitted on, not a held-out value.
type ComparisonRow struct {
	Step          int       `json:"step"`
	Actual        NullFloat `json:"actual"`
	MovingAverage NullFloat `json:"sma_forecast"`
	Smoothed      NullFloat `json:"ses_forecast"`
}

// Compare builds one row per forecast step. When the series is shorter than
// the horizon every Actual is missing.
func Compare(s Series, r *Result) []ComparisonRow {
	if r == nil || r.Horizon <= 0 {
		return nil
	}

	prices := s.Prices()
	n, h := len(prices), r.Horizon
	rows := make([]ComparisonRow, h)
	for k := 0; k < h; k++ {
		row := ComparisonRow{
			Step:          k + 1,
			MovingAverage: at(r.MovingAverageForecast, k),
			Smoothed:      at(r.SmoothedForecast, k),
		}
		if n >= h {
			row.Actual = Float(prices[n-h+k])
		}
		rows[k] = row
	}
	return rows
}

func at(values []NullFloat, i int) NullFloat {
	if i < len(values) {
		return values[i]
	}
	return Missing()
}
