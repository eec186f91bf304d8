package infrastructure

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func TestInitializeOTelPrometheus(t *testing.T) {
	logger := NewLogger(io.Discard, "error")
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "ricecast-test",
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	require.NotNil(t, providers.PrometheusHTTP)
	require.NotNil(t, providers.MeterProvider)

	m, err := CreateForecastMetrics(providers.Meter)
	require.NoError(t, err)
	m.ForecastRuns.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", "success")))

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "forecast_runs_total")
}

func TestInitializeOTelTwice(t *testing.T) {
	logger := NewLogger(io.Discard, "error")
	cfg := &OTelConfig{ServiceName: "a", TraceExporter: "none", MetricExporter: "prometheus", SampleRatio: 1}

	first, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	second, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)

	assert.NoError(t, first.Shutdown(context.Background()))
	assert.NoError(t, second.Shutdown(context.Background()))
}

func TestInitializeOTelStdoutTracing(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: "a", TraceExporter: "stdout", MetricExporter: "none", SampleRatio: 0}, NewLogger(io.Discard, "error"))
	require.NoError(t, err)
	assert.NotNil(t, providers.TracerProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTelRejectsUnknownExporters(t *testing.T) {
	logger := NewLogger(io.Discard, "error")
	_, err := InitializeOTel(&OTelConfig{TraceExporter: "jaeger"}, logger)
	assert.Error(t, err)

	_, err = InitializeOTel(&OTelConfig{MetricExporter: "statsd"}, logger)
	assert.Error(t, err)
}

func TestNoopProviders(t *testing.T) {
	p := NoopProviders(nil)
	m, err := CreateForecastMetrics(p.Meter)
	require.NoError(t, err)

	ctx, span := p.Tracer.Start(context.Background(), "noop")
	m.UploadsTotal.Add(ctx, 1)
	AddSpanEvent(ctx, "event", attribute.Int("rows", 3))
	RecordError(ctx, assert.AnError)
	span.End()

	assert.NoError(t, p.Shutdown(context.Background()))
}
