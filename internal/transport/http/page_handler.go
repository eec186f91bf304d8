package http

import (
	"bytes"
	"embed"
	"encoding/base64"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"ricecast/internal/chart"
	apierrors "ricecast/internal/errors"
	"ricecast/internal/forecast"
	"ricecast/internal/middleware"
	"ricecast/internal/services"
	api "ricecast/pkg/contracts/api/v1"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"num": func(n forecast.NullFloat) string {
		if !n.Valid {
			return "-"
		}
		return n.Format(2)
	},
	"price": func(f float64) string {
		return strconv.FormatFloat(f, 'f', 2, 64)
	},
	"alpha": func(a float64) string {
		return strconv.FormatFloat(a, 'f', -1, 64)
	},
}).ParseFS(templateFS, "templates/index.html"))

// pageData feeds templates/index.html.
type pageData struct {
	Floor    float64
	Window   int
	Horizons []int
	Alphas   []float64
	Params   forecast.Params
	Dataset  *services.DatasetInfo
	Columns  []api.Column
	Report   *forecast.Report
	Chart    template.URL
	Error    string
}

// PageHandler serves the single page upload form.
type PageHandler struct {
	service   ForecastServiceInterface
	validator *middleware.Validator
	maxUpload int64
	logger    *slog.Logger
}

// NewPageHandler creates the HTML handler.
func NewPageHandler(service ForecastServiceInterface, validator *middleware.Validator, maxUpload int64, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		service:   service,
		validator: validator,
		maxUpload: maxUpload,
		logger:    logger.With(slog.String("handler", "page")),
	}
}

// Index handles GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.newPage())
}

// Submit handles POST /. The form carries either a new file or the id of a
// dataset uploaded earlier, plus column, horizon and alpha.
func (h *PageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := h.newPage()

	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(h.memory()); err != nil {
		h.fail(w, r, page, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := forecastRequestFromValues(r.MultipartForm.Value)
	if err != nil {
		h.fail(w, r, page, err)
		return
	}

	info, err := h.dataset(r)
	if err != nil {
		h.fail(w, r, page, err)
		return
	}
	page.Dataset = info
	page.Columns = api.NumberColumns(info.Dataset.Columns)

	// A fresh upload has no column choice yet.
	if req.Column == "" && len(info.Dataset.Columns) > 0 {
		req.Column = info.Dataset.Columns[0]
	}
	page.Params = req.Params(h.service.Defaults())

	if err := h.validator.ValidateStruct(req); err != nil {
		h.fail(w, r, page, err)
		return
	}

	report, err := h.service.Forecast(ctx, info.ID, page.Params)
	if err != nil {
		h.fail(w, r, page, toAPIError(err))
		return
	}
	page.Report = report
	page.Params = report.Params

	if !report.Halted() {
		var buf bytes.Buffer
		if err := h.service.RenderChart(ctx, report, chart.FormatPNG, &buf); err != nil {
			h.logger.WarnContext(ctx, "chart omitted from page", slog.String("error", err.Error()))
		} else {
			page.Chart = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
		}
	}

	h.render(w, r, http.StatusOK, page)
}

func (h *PageHandler) dataset(r *http.Request) (*services.DatasetInfo, error) {
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		info, err := h.service.Upload(r.Context(), header.Filename, file)
		if err != nil {
			return nil, toAPIError(err)
		}
		return info, nil
	case errors.Is(err, http.ErrMissingFile):
		id := r.FormValue("dataset_id")
		if id == "" {
			return nil, apierrors.ErrValidation("file", "Choose a spreadsheet to upload")
		}
		info, err := h.service.Dataset(r.Context(), id)
		if err != nil {
			return nil, toAPIError(err)
		}
		return info, nil
	default:
		return nil, apierrors.InvalidRequestWithError(err)
	}
}

func (h *PageHandler) newPage() *pageData {
	opts := h.service.Options()
	horizon, alpha := h.service.Defaults()
	return &pageData{
		Floor:    opts.PriceFloor,
		Window:   opts.Window,
		Horizons: opts.Horizons,
		Alphas:   opts.Alphas,
		Params:   forecast.Params{Horizon: horizon, Alpha: alpha},
	}
}

func (h *PageHandler) memory() int64 {
	if h.maxUpload > 0 {
		return h.maxUpload
	}
	return 32 << 20
}

// fail re-renders the form with a readable message.
func (h *PageHandler) fail(w http.ResponseWriter, r *http.Request, page *pageData, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong while processing the file"

	var apiErr *apierrors.APIError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.StatusCode
		message = apiErr.Message
		if details, ok := apiErr.Details.(apierrors.ValidationErrors); ok && len(details.Errors) > 0 {
			message = details.Errors[0].Message
		}
	case errors.As(err, &maxErr):
		status = http.StatusRequestEntityTooLarge
		message = "The file is too large"
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "form submission failed",
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())))

	page.Error = message
	h.render(w, r, status, page)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, page *pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
