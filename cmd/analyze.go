package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docanalyzer/internal/config"
	"docanalyzer/internal/convert"
	"docanalyzer/internal/document"
	"docanalyzer/internal/i18n"
	"docanalyzer/internal/logger"
	"docanalyzer/internal/vision"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [document-file]",
	Short: "Extract a document's text, optionally describing embedded PDF images",
	Long: `Process one document and write its extracted text as Markdown.

PDF, HTML, plain-text and image files are supported. For PDFs, --describe
sends each embedded image to a vision-capable LLM and merges the returned
descriptions into the text at the image's position on the page, numbered
as figures across the whole document.

The hosted provider reads its API key from --api-key or OPENAI_API_KEY.
The local provider posts to an OpenAI-compatible server (LM Studio,
llama.cpp and similar) at --local-url or LOCAL_LLM_URL.`,
	Example: `  # Extract text to report.pdf_extracted.md
  docanalyzer analyze report.pdf

  # Describe embedded images with a local vision model
  docanalyzer analyze report.pdf --describe

  # Use the hosted provider and German figure labels
  docanalyzer analyze bericht.pdf --describe --provider openai --language de

  # Write to stdout as JSON, including the debug log
  docanalyzer analyze report.pdf --json --debug-log -o -`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

// AnalyzeOutput represents the JSON output structure when --json flag is used
type AnalyzeOutput struct {
	Text               string    `json:"text"`
	FileName           string    `json:"file_name"`
	FileSize           int64     `json:"file_size"`
	DescriptionUsed    bool      `json:"description_used"`
	Provider           string    `json:"provider,omitempty"`
	Language           string    `json:"language,omitempty"`
	ProcessedAt        time.Time `json:"processed_at"`
	ProcessingDuration string    `json:"processing_duration"`
	DebugLog           []string  `json:"debug_log,omitempty"`
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("output", "o", "", "Output file path (default: <file>_extracted.md, use - for stdout)")
	analyzeCmd.Flags().BoolP("describe", "d", false, "Describe embedded PDF images with a vision LLM")
	analyzeCmd.Flags().String("provider", "local", "Description provider: local or openai")
	analyzeCmd.Flags().String("api-key", "", "API key for the hosted provider (default: OPENAI_API_KEY)")
	analyzeCmd.Flags().String("local-url", "", "Endpoint URL of the local provider (default: LOCAL_LLM_URL)")
	analyzeCmd.Flags().String("model", "", "Model identifier (default: provider-specific)")
	analyzeCmd.Flags().StringP("language", "l", "", "Interface locale for figure labels (default: UI_LANGUAGE)")
	analyzeCmd.Flags().String("doc-language", i18n.Auto, "Document language code, or auto")
	analyzeCmd.Flags().Bool("json", false, "Output as JSON")
	analyzeCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
	analyzeCmd.Flags().Bool("debug-log", false, "Print the collected debug log to stderr (always included in JSON output)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("analyze")

	outputPath, _ := cmd.Flags().GetString("output")
	describe, _ := cmd.Flags().GetBool("describe")
	providerName, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	localURL, _ := cmd.Flags().GetString("local-url")
	model, _ := cmd.Flags().GetString("model")
	language, _ := cmd.Flags().GetString("language")
	docLanguage, _ := cmd.Flags().GetString("doc-language")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	debugLog, _ := cmd.Flags().GetBool("debug-log")

	filePath := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags take precedence over environment configuration.
	provider, err := parseProvider(providerName)
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = cfg.OpenAIAPIKey
	}
	if localURL == "" {
		localURL = cfg.LocalLLMURL
	}
	if model == "" {
		if provider == vision.ProviderOpenAI {
			model = cfg.OpenAIModel
		} else {
			model = cfg.LocalLLMModel
		}
	}
	if language == "" {
		language = cfg.UILanguage
	}
	language = i18n.Normalize(language)

	// The capture sink is attached by re-initializing the logger with an
	// extra writer; the console output stays untouched.
	var capture *logger.Capture
	if debugLog || jsonOutput {
		capture = logger.NewCapture()
		if err := logger.Setup(cfg.GetLoggerConfig(), capture); err != nil {
			return fmt.Errorf("failed to attach debug log capture: %w", err)
		}
		log = logger.WithComponent("analyze")
	}

	log.Info().
		Str("file", filePath).
		Bool("describe", describe).
		Str("provider", string(provider)).
		Str("language", language).
		Int("timeout", timeoutSecs).
		Msg("Starting document analysis")

	fileInfo, err := validateDocumentFile(filePath, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", filePath).
			Msg("Failed to read document file")
		return fmt.Errorf("failed to read document file: %w", err)
	}

	processor := document.NewProcessor(ctx)

	startTime := time.Now()
	text, err := processor.Process(ctx, data, filepath.Base(filePath), document.Options{
		UseDescription:   describe,
		Provider:         provider,
		APIKey:           apiKey,
		LocalURL:         localURL,
		Model:            model,
		UILanguage:       language,
		DocumentLanguage: docLanguage,
	})
	if err != nil {
		return handleAnalyzeError(err, log)
	}

	processingDuration := time.Since(startTime)
	log.Info().
		Int("text_length", len(text)).
		Dur("duration", processingDuration).
		Msg("Document analysis completed successfully")

	var outputData []byte
	if jsonOutput {
		analyzeOut := AnalyzeOutput{
			Text:               text,
			FileName:           filepath.Base(filePath),
			FileSize:           fileInfo.Size(),
			DescriptionUsed:    describe,
			Provider:           string(provider),
			Language:           language,
			ProcessedAt:        time.Now(),
			ProcessingDuration: processingDuration.String(),
		}
		if capture != nil {
			analyzeOut.DebugLog = capture.Lines()
		}
		outputData, err = json.MarshalIndent(analyzeOut, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal JSON output")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	} else {
		outputData = []byte(text)
	}

	if err := writeAnalyzeOutput(outputData, outputPath, filePath, jsonOutput, log); err != nil {
		return err
	}

	// In text mode the captured log goes to stderr so it never mixes with a
	// result written to stdout.
	if debugLog && !jsonOutput && capture != nil {
		for _, line := range capture.Lines() {
			fmt.Fprintln(os.Stderr, line)
		}
	}
	return nil
}

// parseProvider maps the user-facing flag value onto a provider constant.
func parseProvider(name string) (vision.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "local":
		return vision.ProviderLocal, nil
	case "openai":
		return vision.ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unknown provider %q: use local or openai", name)
	}
}

// validateDocumentFile checks that the path names a readable, non-empty
// regular file.
func validateDocumentFile(filePath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", filePath).
				Msg("Document file not found")
			return nil, fmt.Errorf("document file not found: %s", filePath)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", filePath).
				Msg("Permission denied accessing document file")
			return nil, fmt.Errorf("permission denied accessing document file: %s", filePath)
		}
		return nil, fmt.Errorf("error accessing document file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", filePath).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", filePath).
			Msg("Document file is empty")
		return nil, fmt.Errorf("document file is empty: %s", filePath)
	}

	return fileInfo, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling document processing")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// handleAnalyzeError provides user-friendly error messages for processing failures
func handleAnalyzeError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Document analysis failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("document processing timed out. Try increasing --timeout or processing a smaller file")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("document processing was canceled")
	case errors.Is(err, convert.ErrUnsupportedFormat):
		return fmt.Errorf("unsupported document format. Supported: PDF, HTML, plain text (txt, md, csv, json, xml) and images (png, jpg, tiff)")
	case errors.Is(err, convert.ErrMissingCredentials):
		return fmt.Errorf("Google Cloud credentials not configured. Set GOOGLE_APPLICATION_CREDENTIALS to a service "+
			"account JSON file path or GOOGLE_CREDENTIALS to inline JSON\n\nOriginal error: %w", err)
	case errors.Is(err, vision.ErrMissingAPIKey):
		return fmt.Errorf("the hosted provider needs an API key. Pass --api-key or set OPENAI_API_KEY, " +
			"or switch to --provider local")
	case errors.Is(err, vision.ErrRequestFailed):
		return fmt.Errorf("the description request failed. Check that the provider endpoint is reachable "+
			"and the model is loaded\n\nOriginal error: %w", err)
	default:
		return fmt.Errorf("document processing failed: %w", err)
	}
}

// writeAnalyzeOutput resolves the output destination and writes the result.
// An empty path derives the artifact name from the input file; "-" selects
// stdout.
func writeAnalyzeOutput(outputData []byte, outputPath, filePath string, jsonOutput bool, log zerolog.Logger) error {
	if outputPath == "" {
		outputPath = document.OutputFileName(filePath)
	}

	if outputPath == "-" {
		if _, err := os.Stdout.Write(outputData); err != nil {
			log.Error().Err(err).Msg("Failed to write to stdout")
			return fmt.Errorf("failed to write output: %w", err)
		}
		if !jsonOutput {
			fmt.Println()
		}
		return nil
	}

	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		log.Error().
			Err(err).
			Str("output_file", outputPath).
			Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Info().
		Str("output_file", outputPath).
		Int("bytes", len(outputData)).
		Msg("Extracted text written to file")
	return nil
}
