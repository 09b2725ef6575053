package cmd

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docanalyzer/internal/config"
	"docanalyzer/internal/convert"
	"docanalyzer/internal/document"
	"docanalyzer/internal/logger"
	"docanalyzer/internal/pdf"
	"docanalyzer/internal/vision"
)

type stubConverter struct {
	text string
	err  error
}

func (s *stubConverter) Convert(ctx context.Context, path string) (*convert.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &convert.Result{Text: s.text}, nil
}

func newTestServer(t *testing.T, conv convert.Converter) *server {
	t.Helper()

	templates, err := parseTemplates()
	require.NoError(t, err)

	processor := document.NewProcessorWithDeps(
		conv,
		func(path string) (pdf.Reader, error) { t.Fatal("unexpected PDF open"); return nil, nil },
		func(cfg vision.Config) (vision.Describer, error) { t.Fatal("unexpected describer"); return nil, nil },
	)

	return &server{
		cfg: &config.Config{
			LocalLLMURL: "http://127.0.0.1:1234/v1/chat/completions",
			UILanguage:  "en",
		},
		processor: processor,
		capture:   logger.NewCapture(),
		templates: templates,
		timeout:   5 * time.Second,
		log:       logger.WithComponent("serve"),
	}
}

func multipartUpload(t *testing.T, fileName, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("document", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestServeIndex(t *testing.T) {
	srv := newTestServer(t, &stubConverter{})

	rec := httptest.NewRecorder()
	srv.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "Document Analyzer")
	assert.Contains(t, page, `name="document"`)
	assert.Contains(t, page, "Deutsch", "locale selector lists native names")
	assert.Contains(t, page, srv.cfg.LocalLLMURL)
}

func TestServeHealth(t *testing.T) {
	srv := newTestServer(t, &stubConverter{})

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestServeAnalyzeUpload(t *testing.T) {
	srv := newTestServer(t, &stubConverter{text: "extracted body text"})

	body, contentType := multipartUpload(t, "notes.txt", "hello", map[string]string{
		"language": "en",
	})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.handleAnalyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "extracted body text")
	assert.Contains(t, page, "notes.txt_extracted.md", "download carries the artifact name")
}

func TestServeAnalyzeMissingFile(t *testing.T) {
	srv := newTestServer(t, &stubConverter{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("language", "en"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	srv.handleAnalyze(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "No document uploaded")
}

func TestServeAnalyzeConversionError(t *testing.T) {
	srv := newTestServer(t, &stubConverter{err: convert.ErrUnsupportedFormat})

	body, contentType := multipartUpload(t, "slides.pptx", "x", nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.handleAnalyze(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "slides.pptx")
}

func TestParseProvider(t *testing.T) {
	p, err := parseProvider("local")
	require.NoError(t, err)
	assert.Equal(t, vision.ProviderLocal, p)

	p, err = parseProvider("OpenAI")
	require.NoError(t, err)
	assert.Equal(t, vision.ProviderOpenAI, p)

	_, err = parseProvider("hosted")
	require.Error(t, err)
}
