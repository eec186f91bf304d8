// Package forecast turns one price column of an uploaded dataset into
// descriptive statistics and two naive forecasts: a trailing simple moving
// average (SMA) and single exponential smoothing (SES).
//
// The whole computation is the pure function Run. It selects the series,
// drops prices below the floor, summarizes what remains, fits both models,
// projects them over the horizon and lines the projections up against the
// most recent observed prices:
//
//	report := forecast.Run(ds, forecast.Params{Column: "Medium", Horizon: 7, Alpha: 0.5}, forecast.DefaultOptions())
//	for _, n := range report.Notices {
//	    fmt.Println(n.Message)
//	}
//
// Conditions that stop part of the computation (an empty series after
// filtering, too few rows to smooth) are reported as Notices on the Report
// rather than as errors.
package forecast
