// Package vision obtains natural-language descriptions of raster images from
// a vision-capable chat-completion endpoint.
//
// Two backends implement the same contract: a hosted OpenAI backend (API key
// plus fixed model) and a locally-hosted HTTP backend (base URL plus fixed
// model). Both build a single user message holding the prompt text and the
// image as an inline PNG data URI, and return the first completion choice's
// message content, whitespace-trimmed.
//
// Two failure conditions degrade to fixed placeholder strings instead of
// errors so document processing can continue: an encoded payload above
// MaxEncodedImageChars (detected before any transport call) and a request
// that exceeds the round-trip timeout. Every other failure is returned as an
// error to the caller.
package vision

import (
	"context"
	"fmt"
	"image"
)

// Provider selects a description backend.
type Provider string

const (
	// ProviderOpenAI uses the hosted OpenAI chat-completion API.
	ProviderOpenAI Provider = "OpenAI"

	// ProviderLocal posts to a locally-hosted OpenAI-compatible server.
	ProviderLocal Provider = "Local"
)

// DescribeOptions carries the per-request prompt context.
type DescribeOptions struct {
	// DocumentLanguage is the selected document language code, or "auto".
	// When set, a localized advisory hint naming the language is appended
	// to the prompt.
	DocumentLanguage string

	// UILanguage is the interface locale the hint sentence is rendered in.
	UILanguage string
}

// Describer produces a textual description for one raster image.
type Describer interface {
	Describe(ctx context.Context, img image.Image, opts DescribeOptions) (string, error)
}

// Config selects and configures a backend.
type Config struct {
	Provider Provider

	// APIKey authenticates the hosted backend. Required for ProviderOpenAI.
	APIKey string

	// Model overrides the backend's default model identifier.
	Model string

	// BaseURL overrides the local backend's default endpoint URL.
	BaseURL string
}

// NewDescriber constructs the backend selected by cfg.Provider.
func NewDescriber(cfg Config) (Describer, error) {
	const op = "NewDescriber"

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIDescriber(cfg.APIKey, cfg.Model)
	case ProviderLocal:
		return NewLocalDescriber(cfg.BaseURL, cfg.Model), nil
	default:
		return nil, NewVisionError(op, ErrUnknownProvider, fmt.Sprintf("provider %q", cfg.Provider))
	}
}
