package pdf

import (
	"errors"
	"fmt"
)

// Common extraction errors
var (
	// ErrOpenFailed is returned when the document cannot be opened or parsed.
	ErrOpenFailed = errors.New("failed to open document")

	// ErrPageOutOfRange is returned for a page index outside the document.
	ErrPageOutOfRange = errors.New("page index out of range")

	// ErrRenderFailed is returned when a page cannot be rendered to a raster.
	ErrRenderFailed = errors.New("failed to render page")
)

// PDFError wraps errors with context about the extraction failure.
type PDFError struct {
	// Op is the operation that failed (e.g., "Open", "Page").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *PDFError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("pdf: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("pdf: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *PDFError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *PDFError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewPDFError creates a new PDFError with the specified operation and cause.
func NewPDFError(op string, err error, details string) *PDFError {
	return &PDFError{Op: op, Err: err, Details: details}
}
