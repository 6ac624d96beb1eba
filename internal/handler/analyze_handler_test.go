package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanno/internal/domain"
	"scanno/internal/handler"
	"scanno/internal/service"
)

type stubService struct {
	result *service.AnalysisResult
	err    error
	inputs []service.AnalyzeInput
}

func (s *stubService) Analyze(_ context.Context, input service.AnalyzeInput) (*service.AnalysisResult, error) {
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubService) GetAnalysis(_ context.Context, _ uuid.UUID) (*domain.Analysis, error) {
	return nil, domain.ErrNotFound
}

func (s *stubService) ListAnalyses(_ context.Context, _, _ int) ([]domain.Analysis, int, error) {
	return []domain.Analysis{}, 0, nil
}

func newTestRouter(svc service.AnalysisService, maxFileSizeMB int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewAnalyzeHandler(svc, maxFileSizeMB)
	r.POST("/api/v1/analyses", h.Analyze)
	return r
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAnalyzeHandler_Success(t *testing.T) {
	report := json.RawMessage(`{"summary":"ok","risk_level":"Low","issues":[],"maintenance":[],"recommendation":"buy"}`)
	svc := &stubService{result: &service.AnalysisResult{File: "report.pdf", Report: report}}
	r := newTestRouter(svc, 25)

	body, contentType := multipartUpload(t, "Report.PDF", []byte("%PDF-1.4 content"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.JSONEq(t, `"report.pdf"`, string(resp["file"]))
	assert.JSONEq(t, string(report), string(resp["report"]))

	// The handler passes the filename through untouched; lowercasing is the
	// service's job.
	require.Len(t, svc.inputs, 1)
	assert.Equal(t, "Report.PDF", svc.inputs[0].Filename)
}

func TestAnalyzeHandler_MissingFile(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc, 25)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_FILE")
	assert.Empty(t, svc.inputs)
}

func TestAnalyzeHandler_UnsupportedDocument(t *testing.T) {
	svc := &stubService{err: domain.ErrUnsupportedDocument}
	r := newTestRouter(svc, 25)

	body, contentType := multipartUpload(t, "report.docx", []byte("word doc"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNSUPPORTED_DOCUMENT")
}

func TestAnalyzeHandler_EmptyUpload(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc, 25)

	body, contentType := multipartUpload(t, "empty.pdf", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMPTY_UPLOAD")
	assert.Empty(t, svc.inputs)
}

func TestAnalyzeHandler_FileTooLarge(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc, 0) // zero MB budget: everything is too large

	body, contentType := multipartUpload(t, "big.pdf", []byte("%PDF-1.4 payload"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "FILE_TOO_LARGE")
	assert.Empty(t, svc.inputs)
}

func TestAnalyzeHandler_InternalError(t *testing.T) {
	svc := &stubService{err: context.DeadlineExceeded}
	r := newTestRouter(svc, 25)

	body, contentType := multipartUpload(t, "report.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "ANALYSIS_FAILED")
}
