package pdf

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"

	"docanalyzer/internal/logger"
)

// RenderDPI is the resolution at which page rasters are produced for
// cropping embedded image regions.
const RenderDPI = 150

// FitzReader implements Reader using MuPDF via go-fitz.
type FitzReader struct {
	doc *fitz.Document
	dpi float64
	log zerolog.Logger
}

// Open opens a page-oriented document at path.
func Open(path string) (Reader, error) {
	const op = "Open"

	doc, err := fitz.New(path)
	if err != nil {
		return nil, NewPDFError(op, ErrOpenFailed, err.Error())
	}

	return &FitzReader{
		doc: doc,
		dpi: RenderDPI,
		log: logger.WithComponent("pdf"),
	}, nil
}

// NumPages returns the number of pages in the document.
func (r *FitzReader) NumPages() int {
	return r.doc.NumPage()
}

// Page extracts the zero-indexed page. Text lines and image boxes come from
// the structured HTML rendition; when that yields no text blocks the plain
// text extraction is used instead, producing unpositioned lines.
func (r *FitzReader) Page(n int) (*Page, error) {
	const op = "Page"

	if n < 0 || n >= r.doc.NumPage() {
		return nil, NewPDFError(op, ErrPageOutOfRange, fmt.Sprintf("page %d of %d", n, r.doc.NumPage()))
	}

	src, err := r.doc.HTML(n, false)
	if err != nil {
		return nil, NewPDFError(op, err, fmt.Sprintf("structured extraction of page %d", n+1))
	}
	lines, images := parseLayout(src)

	if len(lines) == 0 {
		text, err := r.doc.Text(n)
		if err != nil {
			return nil, NewPDFError(op, err, fmt.Sprintf("text extraction of page %d", n+1))
		}
		for _, ln := range strings.Split(text, "\n") {
			if strings.TrimSpace(ln) == "" {
				continue
			}
			lines = append(lines, Line{Text: ln})
		}
	}

	page := &Page{
		Number: n + 1,
		Lines:  lines,
		Images: images,
		Scale:  r.dpi / 72,
	}

	// The raster is only needed when there are regions to crop.
	if len(images) > 0 {
		raster, err := r.doc.ImageDPI(n, r.dpi)
		if err != nil {
			return nil, NewPDFError(op, ErrRenderFailed, fmt.Sprintf("page %d: %v", n+1, err))
		}
		page.Raster = raster
	}

	r.log.Debug().
		Int("page", page.Number).
		Int("lines", len(lines)).
		Int("images", len(images)).
		Msg("Extracted page")

	return page, nil
}

// Close releases the underlying document.
func (r *FitzReader) Close() error {
	if r.doc != nil {
		err := r.doc.Close()
		r.doc = nil
		return err
	}
	return nil
}
