package vision

import (
	"errors"
	"fmt"
)

// Common description errors
var (
	// ErrMissingAPIKey is returned when the hosted provider is selected
	// without a credential.
	ErrMissingAPIKey = errors.New("OpenAI API key is required")

	// ErrUnknownProvider is returned for a provider outside the known set.
	ErrUnknownProvider = errors.New("unknown description provider")

	// ErrNoChoices is returned when the endpoint answers with an empty
	// choice list.
	ErrNoChoices = errors.New("no completion choices in response")

	// ErrUnexpectedResponse is returned when the response body does not
	// match the chat-completion shape.
	ErrUnexpectedResponse = errors.New("unexpected response shape")

	// ErrRequestFailed is returned for non-success transport outcomes other
	// than a timeout.
	ErrRequestFailed = errors.New("description request failed")
)

// VisionError wraps errors with context about the description failure.
type VisionError struct {
	// Op is the operation that failed (e.g., "Describe").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *VisionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("vision: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("vision: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *VisionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *VisionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewVisionError creates a new VisionError.
func NewVisionError(op string, err error, details string) *VisionError {
	return &VisionError{Op: op, Err: err, Details: details}
}
