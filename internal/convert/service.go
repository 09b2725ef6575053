// Package convert turns documents on disk into plain text.
//
// The entry point is the Router, which dispatches on file extension:
// page-oriented binaries go through MuPDF text extraction (or the managed
// Google Document AI backend when one is configured), HTML is flattened with
// an x/net/html tree walk, plain-text formats are read as-is, and raster
// images are OCRed with Google Cloud Vision. Formats no backend claims fail
// with ErrUnsupportedFormat — behavior for them is delegated, not
// reimplemented.
package convert

import (
	"context"
)

// Result holds a conversion outcome. Text is whitespace-trimmed.
type Result struct {
	// Text is the extracted plain text.
	Text string `json:"text"`

	// Format names the backend that produced the text (e.g. "pdf", "ocr").
	Format string `json:"format"`

	// PageCount is the number of pages processed, where the backend knows.
	PageCount int `json:"page_count,omitempty"`
}

// Converter extracts the plain-text content of the file at path.
type Converter interface {
	Convert(ctx context.Context, path string) (*Result, error)
}
