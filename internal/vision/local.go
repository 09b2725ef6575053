package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"docanalyzer/internal/logger"
)

// Wire types for the OpenAI-compatible chat-completion endpoint. The
// response is parsed into explicit structures and validated; an unexpected
// shape is an error, never silently wrapped.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

// LocalDescriber implements Describer against a locally-hosted
// OpenAI-compatible chat-completion server.
type LocalDescriber struct {
	baseURL    string
	model      string
	httpClient *http.Client
	maxPayload int
	log        zerolog.Logger
}

// NewLocalDescriber creates the local backend. Empty arguments select
// DefaultLocalURL and DefaultLocalModel.
func NewLocalDescriber(baseURL, model string) *LocalDescriber {
	if baseURL == "" {
		baseURL = DefaultLocalURL
	}
	if model == "" {
		model = DefaultLocalModel
	}

	return &LocalDescriber{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: RequestTimeout},
		maxPayload: MaxEncodedImageChars,
		log:        logger.WithComponent("vision-local"),
	}
}

// Describe posts the image with the description prompt to the local server
// and returns the trimmed first-choice content. Oversized payloads and
// timeouts degrade to placeholder text; other failures are returned as
// errors.
func (d *LocalDescriber) Describe(ctx context.Context, img image.Image, opts DescribeOptions) (string, error) {
	const op = "Describe"

	dataURI, payloadLen, err := encodeDataURI(img)
	if err != nil {
		return "", NewVisionError(op, err, "failed to encode image")
	}
	if payloadLen > d.maxPayload {
		d.log.Warn().
			Int("payload_chars", payloadLen).
			Int("limit", d.maxPayload).
			Msg("Image too large to process with LLM")
		return PlaceholderTooLarge, nil
	}

	body, err := json.Marshal(chatRequest{
		Model: d.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: buildPrompt(opts)},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURI}},
				},
			},
		},
		Temperature: 0.7,
		MaxTokens:   -1,
	})
	if err != nil {
		return "", NewVisionError(op, err, "failed to marshal request")
	}

	d.log.Debug().
		Str("url", d.baseURL).
		Str("model", d.model).
		Int("payload_chars", payloadLen).
		Msg("Sending description request to local LLM")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", NewVisionError(op, err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			d.log.Warn().Err(err).Msg("LLM request timed out")
			return PlaceholderTimeout, nil
		}
		return "", NewVisionError(op, ErrRequestFailed, err.Error())
	}
	defer resp.Body.Close()

	d.log.Debug().
		Int("status", resp.StatusCode).
		Msg("Received response from local LLM")

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", NewVisionError(op, ErrRequestFailed,
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", NewVisionError(op, ErrUnexpectedResponse, err.Error())
	}
	if len(parsed.Choices) == 0 {
		return "", NewVisionError(op, ErrNoChoices, "")
	}

	return trimContent(parsed.Choices[0].Message.Content), nil
}

// trimContent normalizes a completion choice's content for insertion into
// merged document text.
func trimContent(content string) string {
	return strings.TrimSpace(content)
}

// isTimeout reports whether err represents an exceeded request deadline at
// any layer of the transport.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
