package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(includeStack bool) *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)), includeStack)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "validation",
			err:        ErrValidation("horizon", "must be one of 7 14 30"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   CodeValidationFailed,
		},
		{
			name:       "dataset not found",
			err:        fmt.Errorf("lookup: %w", New(http.StatusNotFound, CodeDatasetNotFound, "dataset not found")),
			wantStatus: http.StatusNotFound,
			wantType:   TypeDatasetNotFound,
			wantCode:   CodeDatasetNotFound,
		},
		{
			name:       "unprocessable dataset",
			err:        New(http.StatusUnprocessableEntity, CodeUnprocessableDataset, "no price columns"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDatasetUnprocessable,
			wantCode:   CodeUnprocessableDataset,
		},
		{
			name:       "upload too large",
			err:        fmt.Errorf("read upload: %w", &http.MaxBytesError{Limit: 1024}),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
		},
		{
			name:       "timeout",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "unknown",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/datasets/abc", nil)

			newHandler(false).HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/datasets/abc", body["instance"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestHandleErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(false).HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestHandleErrorIncludesStackForServerErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(true).HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), assert.AnError)
	assert.Contains(t, decode(t, rec), "stack")
}

func TestValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(false).HandleError(rec, httptest.NewRequest(http.MethodPost, "/api/forecast", nil),
		NewValidationErrors([]ValidationError{{Field: "alpha", Message: "must be one of 0.2 0.5 0.8"}}))

	body := decode(t, rec)
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	errs := details["errors"].([]interface{})
	require.Len(t, errs, 1)
	assert.Equal(t, "alpha", errs[0].(map[string]interface{})["field"])
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newHandler(false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPut, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decode(t, rec)["detail"], "PUT")
}

func TestHandlePanic(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(true).HandlePanic(rec, httptest.NewRequest(http.MethodGet, "/", nil), "boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", decode(t, rec)["panic"])
}

func TestProblemDetailsMarshal(t *testing.T) {
	p := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "", "/x").
		WithExtension("type", "overridden").
		WithExtension("retry_after", 5)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"/errors/validation","title":"Bad Request","status":400,"instance":"/x","retry_after":5}`, string(data))
}
