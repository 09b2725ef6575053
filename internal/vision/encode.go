package vision

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"time"

	"docanalyzer/internal/i18n"
)

const (
	// MaxEncodedImageChars is the ceiling on the base64-encoded image
	// payload. Larger images are rejected before any transport call.
	MaxEncodedImageChars = 3_000_000

	// RequestTimeout is the fixed round-trip ceiling per description call.
	RequestTimeout = 60 * time.Second

	// PlaceholderTooLarge is substituted for a description when the encoded
	// payload exceeds MaxEncodedImageChars.
	PlaceholderTooLarge = "Image too large to process."

	// PlaceholderTimeout is substituted for a description when the request
	// exceeds RequestTimeout.
	PlaceholderTimeout = "The LLM request timed out."

	// DefaultOpenAIModel is the hosted backend's model identifier.
	DefaultOpenAIModel = "gpt-4o"

	// DefaultLocalModel is the local backend's model identifier.
	DefaultLocalModel = "llama-3.1-unhinged-vision-8b"

	// DefaultLocalURL is the local backend's endpoint when none is given.
	DefaultLocalURL = "http://127.0.0.1:1234/v1/chat/completions"

	basePrompt = "Describe this image in detail:"
)

// encodeDataURI encodes the image as a PNG data URI and reports the length
// of the base64 payload. No size limit is enforced here; callers compare the
// reported length against MaxEncodedImageChars before transmitting.
func encodeDataURI(img image.Image) (string, int, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", 0, err
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return "data:image/png;base64," + encoded, len(encoded), nil
}

// buildPrompt assembles the description prompt. When a specific document
// language is selected, a localized one-line hint naming that language is
// appended; the hint is advisory text for the model, nothing parses it on
// the way back.
func buildPrompt(opts DescribeOptions) string {
	prompt := basePrompt
	if hint := i18n.MultilingualHint(opts.UILanguage, opts.DocumentLanguage); hint != "" {
		prompt += "\n" + hint
	}
	return prompt
}
