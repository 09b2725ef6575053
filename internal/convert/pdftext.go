package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// PDFTextConverter extracts plain text from page-oriented binary documents
// via MuPDF, without touching embedded images.
type PDFTextConverter struct{}

// NewPDFTextConverter creates the MuPDF-backed text converter.
func NewPDFTextConverter() *PDFTextConverter {
	return &PDFTextConverter{}
}

// Convert concatenates the text of all pages in order.
func (c *PDFTextConverter) Convert(ctx context.Context, path string) (*Result, error) {
	const op = "Convert"

	doc, err := fitz.New(path)
	if err != nil {
		return nil, NewConvertError(op, err, "failed to open document")
	}
	defer doc.Close()

	var sb strings.Builder
	pages := doc.NumPage()
	for n := 0; n < pages; n++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		text, err := doc.Text(n)
		if err != nil {
			return nil, NewConvertError(op, err, fmt.Sprintf("failed to extract page %d", n+1))
		}
		if n > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}

	return &Result{
		Text:      strings.TrimSpace(sb.String()),
		Format:    "pdf",
		PageCount: pages,
	}, nil
}
