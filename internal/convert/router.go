package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"docanalyzer/internal/logger"
)

// Router dispatches a conversion to the backend claiming the file's
// extension.
type Router struct {
	pdf   Converter
	html  Converter
	image Converter
	log   zerolog.Logger
}

// NewRouter wires the default backends: Document AI for PDFs when a
// processor is configured in the environment, local MuPDF text extraction
// otherwise; the image backend is created lazily on first use because it
// needs cloud credentials.
func NewRouter(ctx context.Context) *Router {
	log := logger.WithComponent("convert")

	var pdfConverter Converter = NewPDFTextConverter()
	if DocumentAIConfigured() {
		docai, err := NewDocumentAIConverter(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Document AI configured but unavailable, using local PDF extraction")
		} else {
			log.Info().Msg("Using Document AI for PDF conversion")
			pdfConverter = docai
		}
	}

	return &Router{
		pdf:  pdfConverter,
		html: NewHTMLConverter(),
		log:  log,
	}
}

// NewRouterWithBackends wires explicit backends (for testing).
func NewRouterWithBackends(pdf, html, image Converter) *Router {
	return &Router{
		pdf:   pdf,
		html:  html,
		image: image,
		log:   logger.WithComponent("convert"),
	}
}

// Convert extracts text from the file at path, choosing a backend by
// extension.
func (r *Router) Convert(ctx context.Context, path string) (*Result, error) {
	const op = "Convert"

	ext := strings.ToLower(filepath.Ext(path))
	r.log.Debug().Str("file", path).Str("ext", ext).Msg("Converting document")

	switch ext {
	case ".pdf":
		return r.pdf.Convert(ctx, path)
	case ".html", ".htm":
		return r.html.Convert(ctx, path)
	case ".txt", ".md", ".csv", ".json", ".xml":
		return r.convertPlain(ctx, path)
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		image, err := r.imageConverter(ctx)
		if err != nil {
			return nil, err
		}
		return image.Convert(ctx, path)
	default:
		return nil, NewConvertError(op, ErrUnsupportedFormat, ext)
	}
}

// convertPlain reads text-native formats as-is.
func (r *Router) convertPlain(_ context.Context, path string) (*Result, error) {
	const op = "convertPlain"

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConvertError(op, err, "failed to read file")
	}
	return &Result{
		Text:   strings.TrimSpace(string(content)),
		Format: "text",
	}, nil
}

// imageConverter returns the OCR backend, creating it on first use.
func (r *Router) imageConverter(ctx context.Context) (Converter, error) {
	if r.image == nil {
		ocr, err := NewOCRConverter(ctx)
		if err != nil {
			return nil, err
		}
		r.image = ocr
	}
	return r.image, nil
}
