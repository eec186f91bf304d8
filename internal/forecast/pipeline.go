package forecast

import (
	"errors"
	"fmt"
	"slices"

	"ricecast/internal/dataset"
)

// DefaultPriceFloor is the lowest price kept by Clean.
const DefaultPriceFloor = 12000

var (
	// DefaultHorizons are the forecast lengths a caller may request.
	DefaultHorizons = []int{7, 14, 30}
	// DefaultAlphas are the smoothing factors a caller may request.
	DefaultAlphas = []float64{0.2, 0.5, 0.8}
)

// Options holds the fixed model settings shared by every run.
type Options struct {
	PriceFloor float64
	Window     int
	Horizons   []int
	Alphas     []float64
}

// DefaultOptions returns floor 12000, window 30, horizons 7/14/30 and
// alphas 0.2/0.5/0.8.
func DefaultOptions() Options {
	return Options{
		PriceFloor: DefaultPriceFloor,
		Window:     DefaultWindow,
		Horizons:   slices.Clone(DefaultHorizons),
		Alphas:     slices.Clone(DefaultAlphas),
	}
}

// Params are the choices made by the user for one run.
type Params struct {
	Column  string  `json:"column"`
	Horizon int     `json:"horizon"`
	Alpha   float64 `json:"alpha"`
}

// Validate checks horizon and alpha against the allowed sets.
func (p Params) Validate(opts Options) error {
	if !slices.Contains(opts.Horizons, p.Horizon) {
		return fmt.Errorf("%w: %d (allowed %v)", ErrInvalidHorizon, p.Horizon, opts.Horizons)
	}
	if !slices.Contains(opts.Alphas, p.Alpha) {
		return fmt.Errorf("%w: %v (allowed %v)", ErrInvalidAlpha, p.Alpha, opts.Alphas)
	}
	return nil
}

// NoticeKind classifies a recoverable condition met during a run.
type NoticeKind string

const (
	NoticeEmptyAfterFilter                 NoticeKind = "empty_after_filter"
	NoticeInsufficientDataForSmoothing     NoticeKind = "insufficient_data_for_smoothing"
	NoticeInsufficientDataForMovingAverage NoticeKind = "insufficient_data_for_moving_average"
)

// Notice is shown to the user next to the results.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Err returns the sentinel error matching the notice kind.
func (n Notice) Err() error {
	switch n.Kind {
	case NoticeEmptyAfterFilter:
		return ErrEmptyAfterFilter
	case NoticeInsufficientDataForSmoothing:
		return ErrInsufficientDataForSmoothing
	case NoticeInsufficientDataForMovingAverage:
		return ErrInsufficientDataForMovingAverage
	}
	return errors.New(n.Message)
}

// Result holds fitted values aligned with the cleaned series and the
// projections over the horizon.
type Result struct {
	Window                int         `json:"window"`
	Horizon               int         `json:"horizon"`
	Alpha                 float64     `json:"alpha"`
	MovingAverageFitted   []NullFloat `json:"sma_fitted"`
	MovingAverageForecast []NullFloat `json:"sma_forecast"`
	SmoothedFitted        []NullFloat `json:"ses_fitted"`
	SmoothedForecast      []NullFloat `json:"ses_forecast"`
	// ForecastDays are the day indices of the forecast steps, starting right
	// after the last observed day.
	ForecastDays []int `json:"forecast_days"`
}

// Report is the outcome of one interaction.
type Report struct {
	Source     string          `json:"source,omitempty"`
	Params     Params          `json:"params"`
	PriceFloor float64         `json:"price_floor"`
	Series     Series          `json:"series"`
	Dropped    int             `json:"dropped"`
	Summary    *Summary        `json:"summary"`
	Result     *Result         `json:"result"`
	Comparison []ComparisonRow `json:"comparison"`
	Notices    []Notice        `json:"notices"`
}

// HasNotice reports whether a notice of the given kind was raised.
func (r *Report) HasNotice(kind NoticeKind) bool {
	for _, n := range r.Notices {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

// Halted reports whether forecasting was skipped entirely.
func (r *Report) Halted() bool {
	return r.HasNotice(NoticeEmptyAfterFilter)
}

func (r *Report) notice(kind NoticeKind, format string, args ...any) {
	r.Notices = append(r.Notices, Notice{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Run executes the full pipeline for one column. Errors are returned only
// for invalid params or an unknown column; data conditions become notices.
func Run(ds *dataset.RawDataset, params Params, opts Options) (*Report, error) {
	if err := params.Validate(opts); err != nil {
		return nil, err
	}

	selected, err := Select(ds, params.Column)
	if err != nil {
		return nil, err
	}
	params.Column = selected.Column

	cleaned := Clean(selected, opts.PriceFloor)
	report := &Report{
		Source:     ds.Source,
		Params:     params,
		PriceFloor: opts.PriceFloor,
		Series:     cleaned,
		Dropped:    selected.Len() - cleaned.Len(),
		Notices:    []Notice{},
	}

	summary, err := Summarize(cleaned)
	if err != nil {
		report.notice(NoticeEmptyAfterFilter,
			"No prices at or above %.0f remain in column %q; forecasting skipped.", opts.PriceFloor, selected.Column)
		return report, nil
	}
	report.Summary = &summary

	prices := cleaned.Prices()
	result := &Result{
		Window:              opts.Window,
		Horizon:             params.Horizon,
		Alpha:               params.Alpha,
		MovingAverageFitted: MovingAverage(prices, opts.Window),
		ForecastDays:        make([]int, params.Horizon),
	}
	for i := range result.ForecastDays {
		result.ForecastDays[i] = cleaned.LastDayIndex() + i + 1
	}

	result.MovingAverageForecast, err = ForecastMovingAverage(result.MovingAverageFitted, opts.Window, params.Horizon)
	if errors.Is(err, ErrInsufficientDataForMovingAverage) {
		report.notice(NoticeInsufficientDataForMovingAverage,
			"Moving average needs at least %d observations; found %d.", opts.Window, len(prices))
	} else if err != nil {
		return nil, err
	}

	smoothed, err := Smooth(prices, params.Alpha)
	switch {
	case errors.Is(err, ErrInsufficientDataForSmoothing):
		report.notice(NoticeInsufficientDataForSmoothing,
			"Exponential smoothing needs at least %d observations; found %d.", MinSmoothingObservations, len(prices))
		result.SmoothedFitted = missingN(len(prices))
		result.SmoothedForecast = missingN(params.Horizon)
	case err != nil:
		return nil, err
	default:
		result.SmoothedFitted = make([]NullFloat, len(smoothed))
		for i, v := range smoothed {
			result.SmoothedFitted[i] = Float(v)
		}
		result.SmoothedForecast = ForecastSmoothing(smoothed, params.Horizon)
	}

	report.Result = result
	report.Comparison = Compare(cleaned, result)
	return report, nil
}
