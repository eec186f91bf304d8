package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"ricecast/internal/chart"
	"ricecast/internal/config"
	"ricecast/internal/dataset"
	"ricecast/internal/exporter"
	"ricecast/internal/forecast"
	"ricecast/internal/infrastructure"
	"ricecast/internal/session"
)

// DatasetInfo is a cached upload as seen by callers.
type DatasetInfo struct {
	ID        string
	Dataset   *dataset.RawDataset
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ForecastService parses uploads and runs the forecasting pipeline on them.
type ForecastService struct {
	store          *session.Store
	opts           forecast.Options
	defaultHorizon int
	defaultAlpha   float64
	chartOpts      chart.Options
	tracer         trace.Tracer
	metrics        *infrastructure.ForecastMetrics
	logger         *slog.Logger
}

// ForecastOptionsFromConfig maps the forecast section of the config onto
// pipeline options.
func ForecastOptionsFromConfig(cfg config.ForecastConfig) forecast.Options {
	return forecast.Options{
		PriceFloor: cfg.PriceFloor,
		Window:     cfg.WindowSize,
		Horizons:   cfg.Horizons,
		Alphas:     cfg.Alphas,
	}
}

// NewForecastService creates the service and registers the session gauge
// on the provider's meter.
func NewForecastService(store *session.Store, cfg config.ForecastConfig, providers *infrastructure.OTelProviders, metrics *infrastructure.ForecastMetrics, logger *slog.Logger) (*ForecastService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gauge, err := providers.Meter.Int64ObservableGauge("dataset_sessions",
		metric.WithDescription("Number of cached uploads"))
	if err != nil {
		return nil, fmt.Errorf("create session gauge: %w", err)
	}
	if _, err := providers.Meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, int64(store.Len()))
		return nil
	}, gauge); err != nil {
		return nil, fmt.Errorf("register session gauge: %w", err)
	}

	s := &ForecastService{
		store:          store,
		opts:           ForecastOptionsFromConfig(cfg),
		defaultHorizon: cfg.DefaultHorizon,
		defaultAlpha:   cfg.DefaultAlpha,
		chartOpts:      chart.DefaultOptions(),
		tracer:         providers.Tracer,
		metrics:        metrics,
		logger:         logger.With(slog.String("service", "forecast")),
	}

	s.logger.Info("ForecastService initialized",
		slog.Float64("price_floor", s.opts.PriceFloor),
		slog.Int("window", s.opts.Window),
		slog.Any("horizons", s.opts.Horizons),
		slog.Any("alphas", s.opts.Alphas))

	return s, nil
}

// Options returns the pipeline options used for every run.
func (s *ForecastService) Options() forecast.Options {
	return s.opts
}

// Defaults returns the horizon and alpha used when a request omits them.
func (s *ForecastService) Defaults() (int, float64) {
	return s.defaultHorizon, s.defaultAlpha
}

// Upload parses a spreadsheet and caches it under a new id.
func (s *ForecastService) Upload(ctx context.Context, name string, r io.Reader) (*DatasetInfo, error) {
	ctx, span := s.tracer.Start(ctx, "ForecastService.Upload",
		trace.WithAttributes(attribute.String("upload.name", name)))
	defer span.End()

	ds, err := s.parse(ctx, name, r)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	entry, err := s.store.Put(ds)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("cache upload: %w", err)
	}
	span.SetAttributes(attribute.String("dataset.id", entry.ID))

	s.logger.InfoContext(ctx, "dataset uploaded",
		slog.String("dataset_id", entry.ID),
		slog.String("source", ds.Source),
		slog.Int("rows", ds.Len()),
		slog.Int("price_columns", len(ds.Columns)))

	return s.info(entry), nil
}

// Dataset returns a cached upload.
func (s *ForecastService) Dataset(ctx context.Context, id string) (*DatasetInfo, error) {
	entry, err := s.store.Get(id)
	if err != nil {
		s.logger.DebugContext(ctx, "dataset lookup failed",
			slog.String("dataset_id", id),
			slog.String("error", err.Error()))
		return nil, err
	}
	return s.info(entry), nil
}

// Discard drops a cached upload.
func (s *ForecastService) Discard(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "dataset discarded", slog.String("dataset_id", id))
	return nil
}

// Forecast runs the pipeline on a cached upload.
func (s *ForecastService) Forecast(ctx context.Context, id string, params forecast.Params) (*forecast.Report, error) {
	ctx, span := s.tracer.Start(ctx, "ForecastService.Forecast",
		trace.WithAttributes(attribute.String("dataset.id", id)))
	defer span.End()

	entry, err := s.store.Get(id)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	return s.run(ctx, entry.Dataset, params)
}

// ForecastFile parses an upload and runs the pipeline without caching it.
func (s *ForecastService) ForecastFile(ctx context.Context, name string, r io.Reader, params forecast.Params) (*forecast.Report, error) {
	ctx, span := s.tracer.Start(ctx, "ForecastService.ForecastFile",
		trace.WithAttributes(attribute.String("upload.name", name)))
	defer span.End()

	ds, err := s.parse(ctx, name, r)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	return s.run(ctx, ds, params)
}

// Chart renders the forecast chart of a cached upload.
func (s *ForecastService) Chart(ctx context.Context, id string, params forecast.Params, format chart.Format, w io.Writer) error {
	report, err := s.Forecast(ctx, id, params)
	if err != nil {
		return err
	}
	return s.RenderChart(ctx, report, format, w)
}

// RenderChart draws an existing report.
func (s *ForecastService) RenderChart(ctx context.Context, report *forecast.Report, format chart.Format, w io.Writer) error {
	ctx, span := s.tracer.Start(ctx, "ForecastService.RenderChart",
		trace.WithAttributes(attribute.String("chart.format", string(format))))
	defer span.End()

	opts := s.chartOpts
	opts.Format = format
	if err := chart.Render(w, report, opts); err != nil {
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("render chart: %w", err)
	}

	s.metrics.ChartRenders.Add(ctx, 1, metric.WithAttributes(attribute.String("format", string(format))))
	return nil
}

// Export writes the report of a cached upload as CSV or XLSX.
func (s *ForecastService) Export(ctx context.Context, id string, params forecast.Params, format exporter.Format, w io.Writer) error {
	report, err := s.Forecast(ctx, id, params)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "ForecastService.Export",
		trace.WithAttributes(attribute.String("export.format", string(format))))
	defer span.End()

	if err := exporter.Write(w, report, format); err != nil {
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("export report: %w", err)
	}

	s.metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", string(format))))
	return nil
}

func (s *ForecastService) parse(ctx context.Context, name string, r io.Reader) (*dataset.RawDataset, error) {
	if name == "" {
		return nil, ErrMissingFileName
	}
	if _, err := dataset.DetectFormat(name); err != nil {
		s.metrics.UploadsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "rejected")))
		return nil, err
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(body) == 0 {
		s.metrics.UploadsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "rejected")))
		return nil, ErrEmptyUpload
	}

	ds, err := dataset.Parse(name, bytes.NewReader(body), dataset.ParseOptions{})
	if err != nil {
		s.metrics.UploadsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "rejected")))
		s.logger.WarnContext(ctx, "upload rejected",
			slog.String("name", name),
			slog.Int("bytes", len(body)),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.metrics.UploadsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "accepted")))
	s.metrics.DatasetRows.Record(ctx, int64(ds.Len()))
	infrastructure.AddSpanEvent(ctx, "dataset.parsed",
		attribute.Int("rows", ds.Len()),
		attribute.Int("price_columns", len(ds.Columns)))
	return ds, nil
}

func (s *ForecastService) run(ctx context.Context, ds *dataset.RawDataset, params forecast.Params) (*forecast.Report, error) {
	if params.Horizon == 0 {
		params.Horizon = s.defaultHorizon
	}
	if params.Alpha == 0 {
		params.Alpha = s.defaultAlpha
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("forecast.column", params.Column),
		attribute.Int("forecast.horizon", params.Horizon),
		attribute.Float64("forecast.alpha", params.Alpha),
	)

	start := time.Now()
	report, err := forecast.Run(ds, params, s.opts)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "invalid"
	}
	attrs := metric.WithAttributes(
		attribute.Int("horizon", params.Horizon),
		attribute.String("status", status),
	)
	s.metrics.ForecastRuns.Add(ctx, 1, attrs)
	s.metrics.ForecastDuration.Record(ctx, elapsed.Seconds(), attrs)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "forecast rejected",
			slog.String("column", params.Column),
			slog.Int("horizon", params.Horizon),
			slog.Float64("alpha", params.Alpha),
			slog.String("error", err.Error()))
		return nil, err
	}

	for _, n := range report.Notices {
		s.metrics.NoticesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(n.Kind))))
		infrastructure.AddSpanEvent(ctx, "forecast.notice", attribute.String("kind", string(n.Kind)))
	}

	s.logger.InfoContext(ctx, "forecast completed",
		slog.String("source", ds.Source),
		slog.String("column", report.Series.Column),
		slog.Int("observations", report.Series.Len()),
		slog.Int("dropped", report.Dropped),
		slog.Int("horizon", params.Horizon),
		slog.Float64("alpha", params.Alpha),
		slog.Int("notices", len(report.Notices)),
		slog.Duration("duration", elapsed))

	return report, nil
}

func (s *ForecastService) info(e session.Entry) *DatasetInfo {
	return &DatasetInfo{
		ID:        e.ID,
		Dataset:   e.Dataset,
		CreatedAt: e.CreatedAt,
		ExpiresAt: s.store.ExpiresAt(e),
	}
}
