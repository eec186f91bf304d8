// Package chart draws the forecast chart for a report with gonum/plot.
// Every Render call builds its own plot; nothing is reused between calls.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"ricecast/internal/forecast"
)

// Format is an image encoding supported by Render.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

var (
	// ErrUnsupportedFormat is returned for formats other than png and svg.
	ErrUnsupportedFormat = errors.New("unsupported chart format")
	// ErrNothingToPlot is returned for reports halted before forecasting.
	ErrNothingToPlot = errors.New("report has no data to plot")
)

var (
	colorActual   = color.RGBA{A: 255}
	colorSmoothed = color.RGBA{R: 255, G: 140, A: 255}
	colorSMA      = color.RGBA{B: 255, A: 255}
	colorSESFcst  = color.RGBA{R: 220, A: 255}
)

// Options sets the image size and encoding.
type Options struct {
	Width  vg.Length
	Height vg.Length
	Format Format
}

// DefaultOptions returns a 14x6 inch PNG.
func DefaultOptions() Options {
	return Options{Width: 14 * vg.Inch, Height: 6 * vg.Inch, Format: FormatPNG}
}

// ParseFormat maps a query value to a Format. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Render draws the observed prices, the smoothed fit and both forecasts to w.
// Forecast lines start right after the last observed day.
func Render(w io.Writer, report *forecast.Report, opts Options) error {
	if report == nil || report.Result == nil || report.Series.Len() == 0 {
		return ErrNothingToPlot
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return err
	}

	p, err := build(report)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(opts.Width, opts.Height, string(format))
	if err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

func build(report *forecast.Report) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Rice price forecast - " + report.Series.Column
	p.X.Label.Text = "Day"
	p.Y.Label.Text = "Price"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	days := report.Series.DayIndices()
	result := report.Result

	actual := make([]forecast.NullFloat, len(days))
	for i, price := range report.Series.Prices() {
		actual[i] = forecast.Float(price)
	}

	layers := []struct {
		name   string
		days   []int
		values []forecast.NullFloat
		color  color.Color
		dashed bool
	}{
		{"Actual price", days, actual, colorActual, false},
		{fmt.Sprintf("SES fitted (alpha=%.1f)", result.Alpha), days, result.SmoothedFitted, colorSmoothed, false},
		{fmt.Sprintf("SMA forecast (window=%d)", result.Window), result.ForecastDays, result.MovingAverageForecast, colorSMA, true},
		{fmt.Sprintf("SES forecast (alpha=%.1f)", result.Alpha), result.ForecastDays, result.SmoothedForecast, colorSESFcst, true},
	}

	for _, layer := range layers {
		segments := segments(layer.days, layer.values)
		for i, xys := range segments {
			line, err := plotter.NewLine(xys)
			if err != nil {
				return nil, fmt.Errorf("failed to build %s line: %w", layer.name, err)
			}
			line.Color = layer.color
			line.Width = vg.Points(1.5)
			if layer.dashed {
				line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
			}
			p.Add(line)
			if i == 0 {
				p.Legend.Add(layer.name, line)
			}
		}
	}
	return p, nil
}

// segments splits a series at missing values so gaps are not bridged.
func segments(days []int, values []forecast.NullFloat) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i, v := range values {
		if i >= len(days) || !v.Valid {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(days[i]), Y: v.Value})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
