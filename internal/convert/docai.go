package convert

import (
	"context"
	"fmt"
	"os"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocumentAIConfig holds the processor coordinates for the managed PDF
// conversion backend.
type DocumentAIConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
}

// DocumentAIConverter converts page-oriented binaries through a Google
// Document AI OCR processor, as an alternative to local MuPDF extraction.
type DocumentAIConverter struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
}

// DocumentAIConfigured reports whether the environment names a processor.
func DocumentAIConfigured() bool {
	return os.Getenv("DOCUMENT_AI_PROCESSOR_ID") != ""
}

// NewDocumentAIConverter creates the managed backend from the environment:
// GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION, DOCUMENT_AI_PROCESSOR_ID,
// optional DOCUMENT_AI_PROCESSOR_VERSION, plus the usual credential
// variables.
func NewDocumentAIConverter(ctx context.Context) (*DocumentAIConverter, error) {
	const op = "NewDocumentAIConverter"

	config := DocumentAIConfig{
		ProjectID:        os.Getenv("GOOGLE_CLOUD_PROJECT"),
		Location:         os.Getenv("GOOGLE_CLOUD_LOCATION"),
		ProcessorID:      os.Getenv("DOCUMENT_AI_PROCESSOR_ID"),
		ProcessorVersion: os.Getenv("DOCUMENT_AI_PROCESSOR_VERSION"),
	}
	if config.Location == "" {
		config.Location = "us"
	}
	if config.ProjectID == "" || config.ProcessorID == "" {
		return nil, NewConvertError(op, ErrNotConfigured,
			"GOOGLE_CLOUD_PROJECT and DOCUMENT_AI_PROCESSOR_ID are required")
	}

	clientOptions := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)),
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, NewConvertError(op, err, "failed to create Document AI client")
	}

	return &DocumentAIConverter{client: client, config: config}, nil
}

// NewDocumentAIConverterWithClient creates the backend with an explicit
// client (for testing).
func NewDocumentAIConverterWithClient(config DocumentAIConfig, client *documentai.DocumentProcessorClient) *DocumentAIConverter {
	return &DocumentAIConverter{client: client, config: config}
}

// Convert sends the document through the configured processor and returns
// its full text.
func (c *DocumentAIConverter) Convert(ctx context.Context, path string) (*Result, error) {
	const op = "Convert"

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConvertError(op, err, "failed to read document")
	}

	resp, err := c.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: c.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: "application/pdf",
			},
		},
	})
	if err != nil {
		return nil, NewConvertError(op, err, "Document AI processing failed")
	}

	doc := resp.GetDocument()
	if doc == nil || strings.TrimSpace(doc.GetText()) == "" {
		return nil, NewConvertError(op, ErrEmptyDocument, "")
	}

	return &Result{
		Text:      strings.TrimSpace(doc.GetText()),
		Format:    "documentai",
		PageCount: len(doc.GetPages()),
	}, nil
}

// processorName builds the fully-qualified processor resource name,
// including the version when one is pinned.
func (c *DocumentAIConverter) processorName() string {
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		c.config.ProjectID, c.config.Location, c.config.ProcessorID)
	if c.config.ProcessorVersion != "" {
		name = fmt.Sprintf("%s/processorVersions/%s", name, c.config.ProcessorVersion)
	}
	return name
}

// Close closes the underlying Document AI client.
func (c *DocumentAIConverter) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
