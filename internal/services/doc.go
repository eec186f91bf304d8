// Package services implements the business logic layer of ricecast.
// It sits between the HTTP handlers and the domain packages so that the
// same operations serve the web form, the JSON API and tests.
//
// # Services
//
//	ForecastService  parses uploads, caches them per session and runs the
//	                 forecasting pipeline, chart rendering and exports
//	HealthService    health, readiness, liveness and version reports
//
// Every ForecastService call opens a span on the configured tracer, logs
// through the injected slog logger and records the forecast metrics.
//
// # Errors
//
// Domain errors are returned wrapped with %w so handlers can map them with
// errors.Is: dataset.ErrUnsupportedFormat, dataset.ErrNoPriceColumns,
// session.ErrNotFound, forecast.ErrInvalidHorizon and so on. Conditions that
// only limit the output (empty series, too few observations) are reported
// as notices on the forecast.Report instead.
package services
