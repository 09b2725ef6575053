package convert

import (
	"context"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// OCRConverter extracts text from raster image uploads using Google Cloud
// Vision document text detection.
type OCRConverter struct {
	client *vision.ImageAnnotatorClient
}

// NewOCRConverter creates the OCR backend with credentials from the
// environment: GOOGLE_CREDENTIALS (inline JSON) or
// GOOGLE_APPLICATION_CREDENTIALS (file path), falling back to application
// default credentials.
func NewOCRConverter(ctx context.Context) (*OCRConverter, error) {
	const op = "NewOCRConverter"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, NewConvertError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, NewConvertError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, NewConvertError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &OCRConverter{client: client}, nil
}

// NewOCRConverterWithClient creates the OCR backend with an explicit client
// (for testing).
func NewOCRConverterWithClient(client *vision.ImageAnnotatorClient) *OCRConverter {
	return &OCRConverter{client: client}
}

// Convert runs document text detection on the image file at path.
func (c *OCRConverter) Convert(ctx context.Context, path string) (*Result, error) {
	const op = "Convert"

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConvertError(op, err, "failed to read image file")
	}

	resp, err := c.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	})
	if err != nil {
		return nil, NewConvertError(op, err, "Vision API call failed")
	}

	if len(resp.Responses) == 0 {
		return nil, NewConvertError(op, ErrEmptyDocument, "no response from Vision API")
	}
	annotated := resp.Responses[0]
	if annotated.Error != nil {
		return nil, NewConvertError(op, ErrEmptyDocument, annotated.Error.Message)
	}

	text := ""
	if annotated.FullTextAnnotation != nil {
		text = annotated.FullTextAnnotation.Text
	}
	if strings.TrimSpace(text) == "" {
		return nil, NewConvertError(op, ErrEmptyDocument, "")
	}

	return &Result{
		Text:   strings.TrimSpace(text),
		Format: "ocr",
	}, nil
}

// Close closes the underlying Vision client.
func (c *OCRConverter) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
