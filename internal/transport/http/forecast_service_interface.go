package http

import (
	"context"
	"io"

	"ricecast/internal/chart"
	"ricecast/internal/exporter"
	"ricecast/internal/forecast"
	"ricecast/internal/services"
)

// ForecastServiceInterface defines the operations the handlers need
type ForecastServiceInterface interface {
	Options() forecast.Options
	Defaults() (int, float64)
	Upload(ctx context.Context, name string, r io.Reader) (*services.DatasetInfo, error)
	Dataset(ctx context.Context, id string) (*services.DatasetInfo, error)
	Discard(ctx context.Context, id string) error
	Forecast(ctx context.Context, id string, params forecast.Params) (*forecast.Report, error)
	ForecastFile(ctx context.Context, name string, r io.Reader, params forecast.Params) (*forecast.Report, error)
	Chart(ctx context.Context, id string, params forecast.Params, format chart.Format, w io.Writer) error
	RenderChart(ctx context.Context, report *forecast.Report, format chart.Format, w io.Writer) error
	Export(ctx context.Context, id string, params forecast.Params, format exporter.Format, w io.Writer) error
}
