package convert

import (
	"errors"
	"fmt"
)

// Common conversion errors
var (
	// ErrUnsupportedFormat is returned for file extensions no backend claims.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyDocument is returned when a backend produced no readable text.
	ErrEmptyDocument = errors.New("document contains no readable text")

	// ErrMissingCredentials is returned when a cloud backend is selected
	// without Google Cloud credentials in the environment.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrNotConfigured is returned when the Document AI backend is requested
	// without a processor configured.
	ErrNotConfigured = errors.New("Document AI processor is not configured")
)

// ConvertError wraps errors with context about the conversion failure.
type ConvertError struct {
	// Op is the operation that failed (e.g., "Convert").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ConvertError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("convert: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("convert: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ConvertError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *ConvertError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewConvertError creates a new ConvertError.
func NewConvertError(op string, err error, details string) *ConvertError {
	return &ConvertError{Op: op, Err: err, Details: details}
}
