package document

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docanalyzer/internal/convert"
	"docanalyzer/internal/pdf"
	"docanalyzer/internal/vision"
)

// fakeConverter records the path it was asked to convert.
type fakeConverter struct {
	result *convert.Result
	err    error
	path   string
}

func (f *fakeConverter) Convert(ctx context.Context, path string) (*convert.Result, error) {
	f.path = path
	return f.result, f.err
}

// fakeReader serves canned pages.
type fakeReader struct {
	pages  []*pdf.Page
	closed bool
}

func (f *fakeReader) NumPages() int { return len(f.pages) }

func (f *fakeReader) Page(n int) (*pdf.Page, error) { return f.pages[n], nil }

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

// fakeDescriber returns sequential descriptions, or canned responses.
type fakeDescriber struct {
	responses []string
	calls     int
	err       error
}

func (f *fakeDescriber) Describe(ctx context.Context, img image.Image, opts vision.DescribeOptions) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.calls++
	if len(f.responses) > 0 {
		return f.responses[(f.calls-1)%len(f.responses)], nil
	}
	return fmt.Sprintf("description %d", f.calls), nil
}

func pageWithImages(number int, lines []pdf.Line, images []pdf.Rect) *pdf.Page {
	raster := image.NewRGBA(image.Rect(0, 0, 1000, 1000))
	return &pdf.Page{Number: number, Lines: lines, Images: images, Raster: raster, Scale: 1}
}

func newTestProcessor(conv convert.Converter, reader pdf.Reader, desc vision.Describer) *Processor {
	return NewProcessorWithDeps(
		conv,
		func(path string) (pdf.Reader, error) { return reader, nil },
		func(cfg vision.Config) (vision.Describer, error) { return desc, nil },
	)
}

func TestProcessPlainConversion(t *testing.T) {
	conv := &fakeConverter{result: &convert.Result{Text: "  converted text  ", Format: "text"}}
	p := newTestProcessor(conv, nil, nil)

	got, err := p.Process(context.Background(), []byte("payload"), "notes.txt", Options{})
	require.NoError(t, err)
	assert.Equal(t, "converted text", got)
	assert.True(t, strings.HasSuffix(conv.path, ".txt"), "transient file keeps the extension, got %s", conv.path)
}

func TestProcessRemovesTransientFile(t *testing.T) {
	conv := &fakeConverter{result: &convert.Result{Text: "x"}}
	p := newTestProcessor(conv, nil, nil)

	_, err := p.Process(context.Background(), []byte("data"), "doc.txt", Options{})
	require.NoError(t, err)

	_, statErr := os.Stat(conv.path)
	assert.True(t, os.IsNotExist(statErr), "transient file %s must be removed", conv.path)
}

func TestProcessRemovesTransientFileOnError(t *testing.T) {
	conv := &fakeConverter{err: errors.New("conversion exploded")}
	p := newTestProcessor(conv, nil, nil)

	_, err := p.Process(context.Background(), []byte("data"), "doc.txt", Options{})
	require.Error(t, err)

	_, statErr := os.Stat(conv.path)
	assert.True(t, os.IsNotExist(statErr), "transient file %s must be removed on error", conv.path)
}

func TestProcessPDFDisabledDescriptionUsesConverter(t *testing.T) {
	conv := &fakeConverter{result: &convert.Result{Text: "plain pdf text"}}
	p := newTestProcessor(conv, nil, nil)

	got, err := p.Process(context.Background(), []byte("%PDF"), "report.pdf", Options{UseDescription: false})
	require.NoError(t, err)
	assert.Equal(t, "plain pdf text", got)
}

func TestProcessNonPDFWithDescriptionUsesConverter(t *testing.T) {
	conv := &fakeConverter{result: &convert.Result{Text: "html text"}}
	p := newTestProcessor(conv, nil, nil)

	got, err := p.Process(context.Background(), []byte("<p>x</p>"), "page.html", Options{UseDescription: true})
	require.NoError(t, err)
	assert.Equal(t, "html text", got)
}

func TestProcessPDFWithImages(t *testing.T) {
	reader := &fakeReader{pages: []*pdf.Page{
		pageWithImages(1,
			[]pdf.Line{
				{Text: "intro", Top: 10, Positioned: true},
				{Text: "body", Top: 100, Positioned: true},
			},
			[]pdf.Rect{
				{Left: 0, Top: 20, Right: 50, Bottom: 60},  // mid 40
				{Left: 0, Top: 200, Right: 50, Bottom: 240}, // mid 220
			}),
		pageWithImages(2,
			[]pdf.Line{{Text: "second page", Top: 30, Positioned: true}},
			[]pdf.Rect{
				{Left: 0, Top: 300, Right: 50, Bottom: 340},
				{Left: 0, Top: 100, Right: 50, Bottom: 140},
				{Left: 0, Top: 10, Right: 50, Bottom: 14},
			}),
	}}
	desc := &fakeDescriber{}
	p := newTestProcessor(nil, reader, desc)

	got, err := p.Process(context.Background(), []byte("%PDF"), "report.pdf", Options{
		UseDescription: true,
		Provider:       vision.ProviderLocal,
		UILanguage:     "en",
	})
	require.NoError(t, err)

	// Page banners and blank-line separation
	pages := strings.Split(got, "\n\n")
	require.Len(t, pages, 2)
	assert.True(t, strings.HasPrefix(pages[0], "--- Page 1 ---\n"))
	assert.True(t, strings.HasPrefix(pages[1], "--- Page 2 ---\n"))

	// Figure numbering is global and monotonic: 1-5, no resets or gaps
	for n := 1; n <= 5; n++ {
		assert.Contains(t, got, fmt.Sprintf("Figure %d:", n))
	}
	assert.NotContains(t, pages[1], "Figure 1:")

	// Page 1: figure@40 lands between the line@10 and line@100
	assert.Equal(t, []string{
		"--- Page 1 ---",
		"intro",
		"Figure 1: description 1",
		"body",
		"Figure 2: description 2",
	}, strings.Split(pages[0], "\n"))

	// Page 2: regions were numbered in midpoint order, not extraction order
	assert.Equal(t, []string{
		"--- Page 2 ---",
		"Figure 3: description 3",
		"second page",
		"Figure 4: description 4",
		"Figure 5: description 5",
	}, strings.Split(pages[1], "\n"))

	assert.True(t, reader.closed, "document reader must be closed")
}

func TestProcessPDFLocalizedFigureLabel(t *testing.T) {
	reader := &fakeReader{pages: []*pdf.Page{
		pageWithImages(1, nil, []pdf.Rect{{Left: 0, Top: 10, Right: 20, Bottom: 30}}),
	}}
	p := newTestProcessor(nil, reader, &fakeDescriber{responses: []string{"ein Diagramm"}})

	got, err := p.Process(context.Background(), []byte("%PDF"), "bericht.pdf", Options{
		UseDescription: true,
		Provider:       vision.ProviderLocal,
		UILanguage:     "de",
	})
	require.NoError(t, err)
	assert.Contains(t, got, "Abbildung 1: ein Diagramm")
}

func TestProcessPDFPlaceholderContinues(t *testing.T) {
	reader := &fakeReader{pages: []*pdf.Page{
		pageWithImages(1, nil, []pdf.Rect{
			{Left: 0, Top: 10, Right: 20, Bottom: 30},
			{Left: 0, Top: 50, Right: 20, Bottom: 70},
		}),
	}}
	desc := &fakeDescriber{responses: []string{vision.PlaceholderTimeout, "a photo"}}
	p := newTestProcessor(nil, reader, desc)

	got, err := p.Process(context.Background(), []byte("%PDF"), "doc.pdf", Options{
		UseDescription: true,
		Provider:       vision.ProviderLocal,
		UILanguage:     "en",
	})
	require.NoError(t, err)
	assert.Contains(t, got, "Figure 1: "+vision.PlaceholderTimeout)
	assert.Contains(t, got, "Figure 2: a photo")
}

func TestProcessPDFDescriberFactoryErrorAborts(t *testing.T) {
	p := NewProcessorWithDeps(
		nil,
		func(path string) (pdf.Reader, error) {
			t.Error("document must not be opened when the describer cannot be created")
			return nil, nil
		},
		func(cfg vision.Config) (vision.Describer, error) {
			return nil, vision.ErrMissingAPIKey
		},
	)

	_, err := p.Process(context.Background(), []byte("%PDF"), "doc.pdf", Options{
		UseDescription: true,
		Provider:       vision.ProviderOpenAI,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, vision.ErrMissingAPIKey)
}

func TestProcessPDFDescribeErrorAbortsDocument(t *testing.T) {
	reader := &fakeReader{pages: []*pdf.Page{
		pageWithImages(1, nil, []pdf.Rect{{Left: 0, Top: 10, Right: 20, Bottom: 30}}),
	}}
	transport := errors.New("connection refused")
	p := newTestProcessor(nil, reader, &fakeDescriber{err: transport})

	_, err := p.Process(context.Background(), []byte("%PDF"), "doc.pdf", Options{
		UseDescription: true,
		Provider:       vision.ProviderLocal,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, transport)
}
