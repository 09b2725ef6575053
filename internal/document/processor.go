// Package document orchestrates per-document processing: it materializes
// uploaded bytes to a transient file, routes between plain conversion and
// the image-aware PDF path, merges per-page output, and guarantees the
// transient file is removed on every exit path.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"docanalyzer/internal/convert"
	"docanalyzer/internal/i18n"
	"docanalyzer/internal/logger"
	"docanalyzer/internal/pdf"
	"docanalyzer/internal/vision"
)

// Options controls one processing run.
type Options struct {
	// UseDescription enables the image-aware PDF path.
	UseDescription bool

	// Provider selects the description backend when UseDescription is set.
	Provider vision.Provider

	// APIKey authenticates the hosted provider.
	APIKey string

	// LocalURL overrides the local provider's endpoint.
	LocalURL string

	// Model overrides the provider's default model identifier.
	Model string

	// UILanguage is the interface locale; it drives the figure caption
	// label and the localized prompt hint.
	UILanguage string

	// DocumentLanguage is the selected document language code, or "auto".
	DocumentLanguage string
}

// Processor converts one document at a time, synchronously.
type Processor struct {
	converter    convert.Converter
	openPDF      func(path string) (pdf.Reader, error)
	newDescriber func(cfg vision.Config) (vision.Describer, error)
	log          zerolog.Logger
}

// NewProcessor wires the default collaborators: the extension-routing
// converter and the MuPDF-backed page reader.
func NewProcessor(ctx context.Context) *Processor {
	return NewProcessorWithDeps(convert.NewRouter(ctx), pdf.Open, vision.NewDescriber)
}

// NewProcessorWithDeps wires explicit collaborators (for testing).
func NewProcessorWithDeps(
	converter convert.Converter,
	openPDF func(path string) (pdf.Reader, error),
	newDescriber func(cfg vision.Config) (vision.Describer, error),
) *Processor {
	return &Processor{
		converter:    converter,
		openPDF:      openPDF,
		newDescriber: newDescriber,
		log:          logger.WithComponent("document"),
	}
}

// Process extracts the text of one uploaded document. The bytes are written
// to a transient file that is removed before Process returns, on success and
// on every failure path. With description disabled, or for anything that is
// not a page-oriented binary, the whole file goes through the conversion
// collaborator; otherwise pages are walked individually and described
// figures are merged into each page's text.
func (p *Processor) Process(ctx context.Context, data []byte, fileName string, opts Options) (string, error) {
	const op = "Process"

	ext := strings.ToLower(filepath.Ext(fileName))
	tmp, err := os.CreateTemp("", "docanalyzer-*"+ext)
	if err != nil {
		return "", fmt.Errorf("%s: failed to create transient file: %w", op, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			p.log.Warn().Err(err).Str("file", tmpPath).Msg("Failed to remove transient file")
		} else {
			p.log.Debug().Str("file", tmpPath).Msg("Transient file removed")
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%s: failed to write transient file: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%s: failed to close transient file: %w", op, err)
	}

	p.log.Info().
		Str("file", fileName).
		Int("size", len(data)).
		Bool("describe", opts.UseDescription).
		Msg("Processing document")

	if opts.UseDescription && ext == ".pdf" {
		return p.processPDFWithImages(ctx, tmpPath, opts)
	}

	result, err := p.converter.Convert(ctx, tmpPath)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return strings.TrimSpace(result.Text), nil
}

// processPDFWithImages walks the document page by page, describing each
// embedded image region and merging the captions into the page text.
// Obtaining a describer fails the whole document; recoverable per-image
// conditions already degrade to placeholder text inside the describer.
func (p *Processor) processPDFWithImages(ctx context.Context, path string, opts Options) (string, error) {
	const op = "processPDFWithImages"

	describer, err := p.newDescriber(vision.Config{
		Provider: opts.Provider,
		APIKey:   opts.APIKey,
		Model:    opts.Model,
		BaseURL:  opts.LocalURL,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	reader, err := p.openPDF(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			p.log.Warn().Err(err).Msg("Failed to close document reader")
		}
	}()

	figureLabel := i18n.FigureLabel(opts.UILanguage)
	describeOpts := vision.DescribeOptions{
		DocumentLanguage: opts.DocumentLanguage,
		UILanguage:       opts.UILanguage,
	}

	// The figure counter is global to the document, never reset per page.
	figureNumber := 1
	pages := make([]string, 0, reader.NumPages())

	for n := 0; n < reader.NumPages(); n++ {
		page, err := reader.Page(n)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}

		// Regions are numbered and described in midpoint order, so output
		// is deterministic regardless of extraction order.
		regions := make([]pdf.Rect, len(page.Images))
		copy(regions, page.Images)
		sort.SliceStable(regions, func(i, j int) bool {
			return regions[i].Mid() < regions[j].Mid()
		})

		figures := make([]Figure, 0, len(regions))
		for _, region := range regions {
			crop := page.Crop(region)
			if crop == nil {
				p.log.Debug().
					Int("page", page.Number).
					Msg("Skipping degenerate image region")
				continue
			}

			description, err := describer.Describe(ctx, crop, describeOpts)
			if err != nil {
				return "", fmt.Errorf("%s: page %d figure %d: %w", op, page.Number, figureNumber, err)
			}

			figures = append(figures, Figure{
				Mid:     region.Mid(),
				Caption: fmt.Sprintf("%s %d: %s", figureLabel, figureNumber, description),
			})
			figureNumber++
		}

		p.log.Debug().
			Int("page", page.Number).
			Int("lines", len(page.Lines)).
			Int("figures", len(figures)).
			Msg("Merging page")

		merged := Interleave(page.Lines, figures)
		pages = append(pages, fmt.Sprintf("--- Page %d ---\n%s", page.Number, strings.Join(merged, "\n")))
	}

	return strings.Join(pages, "\n\n"), nil
}
