package vision

import (
	"context"
	"image"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"docanalyzer/internal/logger"
)

// OpenAIDescriber implements Describer against the hosted OpenAI API.
type OpenAIDescriber struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	maxPayload int
	log        zerolog.Logger
}

// NewOpenAIDescriber creates the hosted backend. The API key is required;
// an empty model selects DefaultOpenAIModel.
func NewOpenAIDescriber(apiKey, model string) (*OpenAIDescriber, error) {
	const op = "NewOpenAIDescriber"

	if apiKey == "" {
		return nil, NewVisionError(op, ErrMissingAPIKey, "")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIDescriber{
		client:     openai.NewClient(apiKey),
		model:      model,
		timeout:    RequestTimeout,
		maxPayload: MaxEncodedImageChars,
		log:        logger.WithComponent("vision-openai"),
	}, nil
}

// Describe sends the image with the description prompt and returns the
// trimmed first-choice content. Oversized payloads and timeouts degrade to
// placeholder text; other failures are returned as errors.
func (d *OpenAIDescriber) Describe(ctx context.Context, img image.Image, opts DescribeOptions) (string, error) {
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

	prompt := buildPrompt(opts)
	d.log.Debug().
		Str("model", d.model).
		Int("payload_chars", payloadLen).
		Msg("Sending description request to OpenAI")

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: dataURI,
						},
					},
				},
			},
		},
	})
	if err != nil {
		if isTimeout(err) {
			d.log.Warn().Err(err).Msg("LLM request timed out")
			return PlaceholderTimeout, nil
		}
		return "", NewVisionError(op, err, "OpenAI request failed")
	}

	if len(resp.Choices) == 0 {
		return "", NewVisionError(op, ErrNoChoices, "")
	}

	return trimContent(resp.Choices[0].Message.Content), nil
}
