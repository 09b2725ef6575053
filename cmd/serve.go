package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docanalyzer/internal/config"
	"docanalyzer/internal/document"
	"docanalyzer/internal/i18n"
	"docanalyzer/internal/logger"
	"docanalyzer/internal/vision"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the single-page web interface",
	Long: `Start an HTTP server with a single-page upload form. One document is
processed per request: the extracted text is shown inline together with a
download link for the Markdown artifact and the run's debug log.`,
	Example: `  # Listen on the configured address (LISTEN_ADDR, default :8080)
  docanalyzer serve

  # Listen on an explicit address
  docanalyzer serve --addr 127.0.0.1:9000`,
	RunE: runServe,
}

// maxUploadBytes bounds the multipart form held in memory per request.
const maxUploadBytes = 64 << 20

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: LISTEN_ADDR)")
	serveCmd.Flags().Int("timeout", 300, "Per-document processing timeout in seconds")
}

// server carries the handlers' shared collaborators. The processor works on
// one document per request; the capture sink collects the debug log shown on
// the results page.
type server struct {
	cfg       *config.Config
	processor *document.Processor
	capture   *logger.Capture
	templates *template.Template
	timeout   time.Duration
	log       zerolog.Logger
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	addr, _ := cmd.Flags().GetString("addr")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.ListenAddr
	}

	capture := logger.NewCapture()
	if err := logger.Setup(cfg.GetLoggerConfig(), capture); err != nil {
		return fmt.Errorf("failed to attach debug log capture: %w", err)
	}
	log = logger.WithComponent("serve")

	templates, err := parseTemplates()
	if err != nil {
		return fmt.Errorf("failed to parse page templates: %w", err)
	}

	srv := &server{
		cfg:       cfg,
		processor: document.NewProcessor(cmd.Context()),
		capture:   capture,
		templates: templates,
		timeout:   time.Duration(timeoutSecs) * time.Second,
		log:       log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", srv.handleIndex)
	r.Post("/analyze", srv.handleAnalyze)
	r.Post("/cache/clear", srv.handleCacheClear)
	r.Get("/healthz", srv.handleHealth)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on interrupt
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown failed: %w", err)
		}
		return nil
	}
}

func parseTemplates() (*template.Template, error) {
	templates, err := template.New("pages").Parse(indexTemplate)
	if err != nil {
		return nil, err
	}
	if _, err := templates.New("result").Parse(resultTemplate); err != nil {
		return nil, err
	}
	return templates, nil
}

// localeOption is one entry of the interface-language selector.
type localeOption struct {
	Code string
	Name string
}

// indexData fills the upload form template.
type indexData struct {
	Locales      []localeOption
	Language     string
	LocalURL     string
	HasAPIKey    bool
	Notice       string
	ErrorMessage string
}

// resultData fills the results page template.
type resultData struct {
	FileName     string
	OutputName   string
	Text         string
	DownloadHref template.URL
	Described    bool
	Provider     string
	Duration     string
	DebugLog     []string
}

func (s *server) indexData() indexData {
	opts := make([]localeOption, 0, len(i18n.Locales))
	for _, code := range i18n.Locales {
		opts = append(opts, localeOption{Code: code, Name: i18n.NativeName(code)})
	}
	return indexData{
		Locales:   opts,
		Language:  i18n.Normalize(s.cfg.UILanguage),
		LocalURL:  s.cfg.LocalLLMURL,
		HasAPIKey: s.cfg.OpenAIAPIKey != "",
	}
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, s.indexData())
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// handleCacheClear removes the analyzer's leftover transient files from the
// system temp directory. Normal runs clean up after themselves; this sweeps
// what a crashed run left behind.
func (s *server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "docanalyzer-*"))
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to scan temp directory")
	}

	removed := 0
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			s.log.Warn().Err(err).Str("file", path).Msg("Failed to remove transient file")
			continue
		}
		removed++
	}
	s.log.Info().Int("removed", removed).Msg("Cleared transient files")

	data := s.indexData()
	data.Notice = fmt.Sprintf("Cache cleared: %d transient file(s) removed.", removed)
	s.renderIndex(w, data)
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderError(w, fmt.Sprintf("Upload failed: %v", err))
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		s.renderError(w, "No document uploaded. Choose a file and try again.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.renderError(w, fmt.Sprintf("Reading the upload failed: %v", err))
		return
	}

	describe := r.FormValue("describe") == "on"
	provider, err := parseProvider(valueOr(r.FormValue("provider"), "local"))
	if err != nil {
		s.renderError(w, err.Error())
		return
	}
	apiKey := valueOr(r.FormValue("api_key"), s.cfg.OpenAIAPIKey)
	localURL := valueOr(r.FormValue("local_url"), s.cfg.LocalLLMURL)
	language := i18n.Normalize(valueOr(r.FormValue("language"), s.cfg.UILanguage))
	docLanguage := valueOr(r.FormValue("doc_language"), i18n.Auto)

	model := s.cfg.LocalLLMModel
	if provider == vision.ProviderOpenAI {
		model = s.cfg.OpenAIModel
	}

	s.capture.Reset()
	s.log.Info().
		Str("file", header.Filename).
		Int("size", len(data)).
		Bool("describe", describe).
		Str("provider", string(provider)).
		Msg("Processing uploaded document")

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	startTime := time.Now()
	text, err := s.processor.Process(ctx, data, header.Filename, document.Options{
		UseDescription:   describe,
		Provider:         provider,
		APIKey:           apiKey,
		LocalURL:         localURL,
		Model:            model,
		UILanguage:       language,
		DocumentLanguage: docLanguage,
	})
	if err != nil {
		s.log.Error().Err(err).Str("file", header.Filename).Msg("Document processing failed")
		s.renderError(w, fmt.Sprintf("Processing %s failed: %v", header.Filename, err))
		return
	}

	outputName := document.OutputFileName(header.Filename)
	href := "data:text/markdown;charset=utf-8;base64," +
		base64.StdEncoding.EncodeToString([]byte(text))

	s.render(w, "result", resultData{
		FileName:     header.Filename,
		OutputName:   outputName,
		Text:         text,
		DownloadHref: template.URL(href),
		Described:    describe,
		Provider:     string(provider),
		Duration:     time.Since(startTime).Round(time.Millisecond).String(),
		DebugLog:     s.capture.Lines(),
	})
}

func (s *server) renderIndex(w http.ResponseWriter, data indexData) {
	s.render(w, "pages", data)
}

func (s *server) renderError(w http.ResponseWriter, message string) {
	data := s.indexData()
	data.ErrorMessage = message
	w.WriteHeader(http.StatusUnprocessableEntity)
	s.renderIndex(w, data)
}

func (s *server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("Failed to render template")
	}
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Document Analyzer</title>
<style>
body { font-family: sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; }
fieldset { margin-bottom: 1rem; }
label { display: block; margin: 0.4rem 0; }
.notice { background: #e6f4ea; padding: 0.6rem; border-radius: 4px; }
.error { background: #fdecea; padding: 0.6rem; border-radius: 4px; }
</style>
</head>
<body>
<h1>Document Analyzer</h1>
{{if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}
{{if .ErrorMessage}}<p class="error">{{.ErrorMessage}}</p>{{end}}
<form method="post" action="/analyze" enctype="multipart/form-data">
<fieldset>
<legend>Document</legend>
<label>File <input type="file" name="document" required></label>
<label>Document language
<select name="doc_language">
<option value="auto" selected>Auto-detect</option>
{{range .Locales}}<option value="{{.Code}}">{{.Name}}</option>
{{end}}</select>
</label>
<label>Interface language
<select name="language">
{{$lang := .Language}}{{range .Locales}}<option value="{{.Code}}"{{if eq .Code $lang}} selected{{end}}>{{.Name}}</option>
{{end}}</select>
</label>
</fieldset>
<fieldset>
<legend>Image description (PDF only)</legend>
<label><input type="checkbox" name="describe"> Describe embedded images with a vision LLM</label>
<label><input type="radio" name="provider" value="local" checked> Local server</label>
<label>Local URL <input type="text" name="local_url" size="50" value="{{.LocalURL}}"></label>
<label><input type="radio" name="provider" value="openai"> OpenAI</label>
<label>API key <input type="password" name="api_key" placeholder="{{if .HasAPIKey}}configured via environment{{else}}sk-...{{end}}"></label>
</fieldset>
<button type="submit">Analyze</button>
</form>
<form method="post" action="/cache/clear">
<button type="submit">Clear cache</button>
</form>
</body>
</html>
`

const resultTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Document Analyzer - {{.FileName}}</title>
<style>
body { font-family: sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; }
details { margin-top: 1rem; }
pre { background: #f5f5f5; padding: 0.6rem; overflow-x: auto; }
</style>
</head>
<body>
<h1>{{.FileName}}</h1>
<p>Processed in {{.Duration}}{{if .Described}} with image description ({{.Provider}}){{end}}.</p>
<p><a href="{{.DownloadHref}}" download="{{.OutputName}}">Download {{.OutputName}}</a></p>
<textarea rows="24" readonly>{{.Text}}</textarea>
{{if .DebugLog}}
<details>
<summary>Debug log ({{len .DebugLog}} lines)</summary>
<pre>{{range .DebugLog}}{{.}}
{{end}}</pre>
</details>
{{end}}
<p><a href="/">Analyze another document</a></p>
</body>
</html>
`
