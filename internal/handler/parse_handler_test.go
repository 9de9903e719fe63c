package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"labparse/internal/domain"
	"labparse/internal/export"
	"labparse/internal/handler"
	"labparse/internal/service"
	"labparse/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sampleResult() *domain.ParseResult {
	return &domain.ParseResult{
		Success:        true,
		ParserUsed:     "quest",
		FormatDetected: "Quest Diagnostics",
		Confidence:     domain.ConfidenceHigh,
		Markers: []domain.MarkerResult{{
			CanonicalName: "glucose",
			DisplayName:   "Glucose",
			Value:         95,
			ValueText:     "95",
			Unit:          "mg/dL",
			CanonicalUnit: "mg/dL",
			ReferenceLow:  domain.FloatPtr(70),
			ReferenceHigh: domain.FloatPtr(99),
			ReferenceText: "70-99",
			Confidence:    1.0,
			Page:          1,
		}},
		Warnings: []string{},
	}
}

func multipartRequest(t *testing.T, target, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(h *handler.ParseHandler, req *http.Request) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/api/v1/formats", h.Formats)
	r.POST("/api/v1/parse", h.Parse)
	r.POST("/api/v1/parse/export", h.ParseExport)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) (handler.APIResponse, map[string]interface{}) {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, _ := resp.Data.(map[string]interface{})
	return resp, data
}

func TestParseHandler_Parse_Success(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewParseHandler(svc, 1<<20, 0.7, nil)

	content := []byte("Quest Diagnostics\nGlucose 95 70-99 mg/dL\n")
	svc.On("Parse", mock.Anything, service.ParseInput{Filename: "report.txt", Data: content, Adapter: "quest"}).
		Return(sampleResult(), nil)

	w := serve(h, multipartRequest(t, "/api/v1/parse", "report.txt", content, map[string]string{"adapter": "quest"}))

	assert.Equal(t, http.StatusOK, w.Code)
	resp, data := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "quest", data["parser_used"])
	assert.Len(t, data["markers"], 1)
	svc.AssertExpectations(t)
}

func TestParseHandler_Parse_MissingFile(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewParseHandler(svc, 1<<20, 0.7, nil)

	w := serve(h, multipartRequest(t, "/api/v1/parse", "", nil, map[string]string{"adapter": "quest"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp, _ := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "MISSING_FILE", resp.Error.Code)
	svc.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestParseHandler_Parse_TooLarge(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewParseHandler(svc, 10, 0.7, nil)

	w := serve(h, multipartRequest(t, "/api/v1/parse", "big.txt", []byte(strings.Repeat("x", 64)), nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	resp, _ := decode(t, w)
	assert.Equal(t, "FILE_TOO_LARGE", resp.Error.Code)
}

func TestParseHandler_Parse_EmptyFile(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewParseHandler(svc, 1<<20, 0.7, nil)

	w := serve(h, multipartRequest(t, "/api/v1/parse", "empty.txt", nil, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp, _ := decode(t, w)
	assert.Equal(t, "EMPTY_FILE", resp.Error.Code)
}

func TestParseHandler_Parse_UnsupportedContent(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewParseHandler(svc, 1<<20, 0.7, nil)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	w := serve(h, multipartRequest(t, "/api/v1/parse", "scan.pdf", png, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp, _ := decode(t, w)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", resp.Error.Code)
	svc.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestParseHandler_Parse_UnknownAdapter(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewParseHandler(svc, 1<<20, 0.7, nil)
	svc.On("Parse", mock.Anything, mock.AnythingOfType("service.ParseInput")).
		Return(nil, errors.Join(service.ErrUnknownAdapter, errors.New("nope")))

	w := serve(h, multipartRequest(t, "/api/v1/parse", "r.txt", []byte("Glucose 95"), map[string]string{"adapter": "nope"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp, _ := decode(t, w)
	assert.Equal(t, "UNKNOWN_ADAPTER", resp.Error.Code)
}

func TestParseHandler_Parse_FailedParseIsStillOK(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewParseHandler(svc, 1<<20, 0.7, nil)
	failed := &domain.ParseResult{
		ParserUsed:  "universal",
		Confidence:  domain.ConfidenceUncertain,
		NeedsReview: true,
		Markers:     []domain.MarkerResult{},
		Warnings:    []string{"extraction provider unavailable"},
		Error:       "no markers found in document",
	}
	svc.On("Parse", mock.Anything, mock.AnythingOfType("service.ParseInput")).Return(failed, nil)

	w := serve(h, multipartRequest(t, "/api/v1/parse", "r.txt", []byte("lorem ipsum"), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	_, data := decode(t, w)
	assert.Equal(t, false, data["success"])
	assert.Equal(t, "no markers found in document", data["error"])
}

func TestParseHandler_ExportCSV(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewParseHandler(svc, 1<<20, 0.7, nil)
	svc.On("Parse", mock.Anything, mock.AnythingOfType("service.ParseInput")).Return(sampleResult(), nil)

	w := serve(h, multipartRequest(t, "/api/v1/parse/export", "jan report.pdf", []byte("%PDF-1.4"), nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="jan_report_`)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `.csv"`)

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, export.BOM))
	lines := strings.Split(strings.TrimSpace(string(body[len(export.BOM):])), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Document,Parser,"))
	assert.Contains(t, lines[1], "glucose")
}

func TestParseHandler_ExportXLSX(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewParseHandler(svc, 1<<20, 0.7, nil)
	svc.On("Parse", mock.Anything, mock.AnythingOfType("service.ParseInput")).Return(sampleResult(), nil)

	w := serve(h, multipartRequest(t, "/api/v1/parse/export?format=xlsx", "r.pdf", []byte("%PDF-1.4"), nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `.xlsx"`)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(export.SheetMarkers)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "glucose", rows[1][4])
}

func TestParseHandler_ExportInvalidFormat(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewParseHandler(svc, 1<<20, 0.7, nil)

	w := serve(h, multipartRequest(t, "/api/v1/parse/export?format=pdf", "r.pdf", []byte("%PDF-1.4"), nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp, _ := decode(t, w)
	assert.Equal(t, "INVALID_FORMAT", resp.Error.Code)
	svc.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestParseHandler_Formats(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewParseHandler(svc, 1<<20, 0.7, nil)
	svc.On("Formats").Return([]service.FormatInfo{
		{Name: "quest", DisplayName: "Quest Diagnostics", Priority: 10},
		{Name: "universal", DisplayName: "Universal Fallback", Priority: 1000},
	})

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/formats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                 `json:"success"`
		Data    []service.FormatInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "universal", resp.Data[1].Name)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrEmptyText, http.StatusBadRequest, "EMPTY_FILE"},
		{service.ErrUnknownAdapter, http.StatusBadRequest, "UNKNOWN_ADAPTER"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
