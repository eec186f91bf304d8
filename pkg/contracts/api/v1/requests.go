// Package api contains the request and response contracts of the ricecast
// HTTP API. Version v1 represents the current stable API version.
package api

import (
	"ricecast/internal/forecast"
)

// ForecastRequest selects the column, horizon and smoothing factor of a run.
// A zero horizon or alpha means the configured default.
type ForecastRequest struct {
	Column  string  `json:"column" query:"column" validate:"required"`
	Horizon int     `json:"horizon,omitempty" query:"horizon" validate:"omitempty,gt=0"`
	Alpha   float64 `json:"alpha,omitempty" query:"alpha" validate:"omitempty,gt=0,lt=1"`
}

// Params converts the request into pipeline params, filling defaults.
func (r ForecastRequest) Params(defaultHorizon int, defaultAlpha float64) forecast.Params {
	p := forecast.Params{Column: r.Column, Horizon: r.Horizon, Alpha: r.Alpha}
	if p.Horizon == 0 {
		p.Horizon = defaultHorizon
	}
	if p.Alpha == 0 {
		p.Alpha = defaultAlpha
	}
	return p
}

// ChartRequest is a ForecastRequest plus the image encoding.
type ChartRequest struct {
	ForecastRequest
	Format string `json:"format,omitempty" query:"format" validate:"omitempty,oneof=png svg"`
}

// ExportRequest is a ForecastRequest plus the file encoding.
type ExportRequest struct {
	ForecastRequest
	Format string `json:"format,omitempty" query:"format" validate:"omitempty,oneof=csv xlsx"`
}
