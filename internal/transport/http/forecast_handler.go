package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ricecast/internal/chart"
	apierrors "ricecast/internal/errors"
	"ricecast/internal/exporter"
	"ricecast/internal/forecast"
	"ricecast/internal/middleware"
	"ricecast/internal/services"
	api "ricecast/pkg/contracts/api/v1"
)

// ForecastHandler serves the dataset and forecast API.
type ForecastHandler struct {
	service      ForecastServiceInterface
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	maxUpload    int64
	logger       *slog.Logger
}

// NewForecastHandler creates the handler. maxUpload bounds multipart bodies.
func NewForecastHandler(service ForecastServiceInterface, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, maxUpload int64, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("handler", "forecast")),
	}
}

// DatasetRoutes returns the routes mounted under /api/datasets.
func (h *ForecastHandler) DatasetRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Upload)
	r.Route("/{datasetID}", func(r chi.Router) {
		r.Get("/", h.GetDataset)
		r.Delete("/", h.DeleteDataset)
		r.Post("/forecast", h.Forecast)
		r.Get("/chart", h.Chart)
		r.Get("/export", h.Export)
	})

	return r
}

// Upload handles POST /api/datasets
func (h *ForecastHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := h.formFile(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Close()
	defer r.MultipartForm.RemoveAll()

	info, err := h.service.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}

	w.Header().Set("Location", "/api/datasets/"+info.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, datasetResponse(info))
}

// GetDataset handles GET /api/datasets/{datasetID}
func (h *ForecastHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Dataset(r.Context(), chi.URLParam(r, "datasetID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}
	render.JSON(w, r, datasetResponse(info))
}

// DeleteDataset handles DELETE /api/datasets/{datasetID}
func (h *ForecastHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Discard(r.Context(), chi.URLParam(r, "datasetID")); err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Forecast handles POST /api/datasets/{datasetID}/forecast
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	var req api.ForecastRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	id := chi.URLParam(r, "datasetID")
	report, err := h.service.Forecast(r.Context(), id, req.Params(h.service.Defaults()))
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}
	render.JSON(w, r, api.ForecastResponse{DatasetID: id, Report: report})
}

// Chart handles GET /api/datasets/{datasetID}/chart
func (h *ForecastHandler) Chart(w http.ResponseWriter, r *http.Request) {
	base, err := forecastRequestFromValues(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	req := api.ChartRequest{ForecastRequest: base, Format: r.URL.Query().Get("format")}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := chart.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}

	var buf bytes.Buffer
	err = h.service.Chart(r.Context(), chi.URLParam(r, "datasetID"), req.Params(h.service.Defaults()), format, &buf)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write chart", slog.String("error", err.Error()))
	}
}

// Export handles GET /api/datasets/{datasetID}/export
func (h *ForecastHandler) Export(w http.ResponseWriter, r *http.Request) {
	base, err := forecastRequestFromValues(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	req := api.ExportRequest{ForecastRequest: base, Format: r.URL.Query().Get("format")}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}

	params := req.Params(h.service.Defaults())
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), chi.URLParam(r, "datasetID"), params, format, &buf); err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}

	name := exporter.FileName(&forecast.Report{Params: params}, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export", slog.String("error", err.Error()))
	}
}

// ForecastFile handles POST /api/forecast. The upload is not cached.
func (h *ForecastHandler) ForecastFile(w http.ResponseWriter, r *http.Request) {
	file, header, err := h.formFile(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Close()
	defer r.MultipartForm.RemoveAll()

	req, err := forecastRequestFromValues(r.MultipartForm.Value)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.ForecastFile(r.Context(), header.Filename, file, req.Params(h.service.Defaults()))
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}
	render.JSON(w, r, api.ForecastResponse{Report: report})
}

// formFile parses a size-limited multipart body and returns its "file" part.
func (h *ForecastHandler) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	return uploadedFile(w, r, h.maxUpload)
}

func uploadedFile(w http.ResponseWriter, r *http.Request, maxUpload int64) (multipart.File, *multipart.FileHeader, error) {
	if maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	}
	memory := maxUpload
	if memory <= 0 {
		memory = 32 << 20
	}
	if err := r.ParseMultipartForm(memory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, err
		}
		return nil, nil, apierrors.NewWithDetails(http.StatusBadRequest, apierrors.CodeInvalidRequest,
			"Expected a multipart/form-data upload", err.Error())
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, apierrors.ErrValidation("file", "file is required")
		}
		return nil, nil, apierrors.InvalidRequestWithError(err)
	}
	return file, header, nil
}

// forecastRequestFromValues reads column, horizon and alpha from a query
// string or form. Empty horizon and alpha keep their zero value.
func forecastRequestFromValues(values url.Values) (api.ForecastRequest, error) {
	get := func(key string) string {
		return strings.TrimSpace(values.Get(key))
	}

	req := api.ForecastRequest{Column: get("column")}
	var errs []apierrors.ValidationError

	if s := get("horizon"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, apierrors.ValidationError{Field: "horizon", Message: "horizon must be a whole number of days"})
		}
		req.Horizon = n
	}
	if s := get("alpha"); s != "" {
		a, err := strconv.ParseFloat(s, 64)
		if err != nil {
			errs = append(errs, apierrors.ValidationError{Field: "alpha", Message: "alpha must be a number"})
		}
		req.Alpha = a
	}

	if len(errs) > 0 {
		return req, apierrors.NewValidationErrors(errs)
	}
	return req, nil
}

func datasetResponse(info *services.DatasetInfo) api.DatasetResponse {
	return api.DatasetResponse{
		ID:        info.ID,
		Source:    info.Dataset.Source,
		Sheet:     info.Dataset.Sheet,
		Columns:   api.NumberColumns(info.Dataset.Columns),
		Rows:      info.Dataset.Len(),
		CreatedAt: info.CreatedAt,
		ExpiresAt: info.ExpiresAt,
	}
}
