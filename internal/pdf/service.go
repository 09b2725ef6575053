// Package pdf provides page-level access to page-oriented binary documents:
// per-page text lines with approximate vertical positions, embedded image
// regions with bounding boxes, and a rendered raster of the page from which
// regions can be cropped.
//
// The default implementation is backed by MuPDF via go-fitz. Line positions
// come from MuPDF's structured HTML output, where each text block carries an
// absolute position; lines are keyed by their own block rather than by
// matching word text against line substrings, so duplicate words on a page
// cannot skew positions.
package pdf

// Reader provides sequential access to the pages of an open document.
type Reader interface {
	// NumPages returns the number of physical pages in the document.
	NumPages() int

	// Page extracts the zero-indexed page: its text lines, image regions,
	// and a rendered raster for cropping.
	Page(n int) (*Page, error)

	// Close releases the underlying document resources.
	Close() error
}
