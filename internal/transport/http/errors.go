package http

import (
	"errors"
	"net/http"

	"ricecast/internal/chart"
	"ricecast/internal/dataset"
	apierrors "ricecast/internal/errors"
	"ricecast/internal/exporter"
	"ricecast/internal/forecast"
	"ricecast/internal/services"
	"ricecast/internal/session"
)

// toAPIError maps domain errors onto API errors. Unknown errors are
// returned unchanged and end up as 500 (or 413/504) in the error handler.
func toAPIError(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return apierrors.New(http.StatusNotFound, apierrors.CodeDatasetNotFound,
			"Dataset not found or expired; upload the file again")

	case errors.Is(err, dataset.ErrUnsupportedFormat):
		return apierrors.NewWithDetails(http.StatusUnsupportedMediaType, apierrors.CodeUnsupportedMedia,
			"Upload an .xlsx workbook or a .csv file", err.Error())

	case errors.Is(err, dataset.ErrEmptyWorkbook),
		errors.Is(err, dataset.ErrNoPriceColumns),
		errors.Is(err, dataset.ErrSheetNotFound),
		errors.Is(err, dataset.ErrMalformed),
		errors.Is(err, services.ErrEmptyUpload):
		return apierrors.NewWithDetails(http.StatusUnprocessableEntity, apierrors.CodeUnprocessableDataset,
			"The uploaded file cannot be used", err.Error())

	case errors.Is(err, services.ErrMissingFileName):
		return apierrors.ErrValidation("file", "file is required")
	case errors.Is(err, forecast.ErrUnknownColumn):
		return apierrors.ErrValidation("column", err.Error())
	case errors.Is(err, forecast.ErrInvalidHorizon):
		return apierrors.ErrValidation("horizon", err.Error())
	case errors.Is(err, forecast.ErrInvalidAlpha):
		return apierrors.ErrValidation("alpha", err.Error())
	case errors.Is(err, chart.ErrUnsupportedFormat), errors.Is(err, exporter.ErrUnsupportedFormat):
		return apierrors.ErrValidation("format", err.Error())

	case errors.Is(err, chart.ErrNothingToPlot):
		return apierrors.New(http.StatusUnprocessableEntity, apierrors.CodeNothingToRender,
			"No prices remain after filtering; there is nothing to plot")
	}
	return err
}
