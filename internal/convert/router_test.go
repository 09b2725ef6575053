package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConverter struct {
	result *Result
	err    error
	calls  int
}

func (s *stubConverter) Convert(ctx context.Context, path string) (*Result, error) {
	s.calls++
	return s.result, s.err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRouterPlainText(t *testing.T) {
	router := NewRouterWithBackends(nil, nil, nil)

	path := writeTemp(t, "notes.txt", "  hello world\n\n")
	result, err := router.Convert(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Text)
	assert.Equal(t, "text", result.Format)
}

func TestRouterDispatch(t *testing.T) {
	pdf := &stubConverter{result: &Result{Text: "pdf text", Format: "pdf"}}
	image := &stubConverter{result: &Result{Text: "ocr text", Format: "ocr"}}
	router := NewRouterWithBackends(pdf, NewHTMLConverter(), image)

	_, err := router.Convert(context.Background(), "/tmp/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, pdf.calls)

	_, err = router.Convert(context.Background(), "/tmp/scan.PNG")
	require.NoError(t, err)
	assert.Equal(t, 1, image.calls)
}

func TestRouterUnsupportedFormat(t *testing.T) {
	router := NewRouterWithBackends(nil, nil, nil)

	_, err := router.Convert(context.Background(), "/tmp/presentation.pptx")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestHTMLConverter(t *testing.T) {
	path := writeTemp(t, "page.html", `<html><head><style>p{color:red}</style><title>T</title></head>
<body><h1>Heading</h1><p>First <b>bold</b> paragraph.</p><script>var x=1;</script>
<ul><li>one</li><li>two</li></ul></body></html>`)

	result, err := NewHTMLConverter().Convert(context.Background(), path)
	require.NoError(t, err)

	assert.Contains(t, result.Text, "Heading")
	assert.Contains(t, result.Text, "First bold paragraph.")
	assert.Contains(t, result.Text, "one")
	assert.NotContains(t, result.Text, "var x=1")
	assert.NotContains(t, result.Text, "color:red")
}

func TestCollapseBlankLines(t *testing.T) {
	assert.Equal(t, "a\n\nb", collapseBlankLines("\n\na\n\n\n\nb\n\n"))
	assert.Equal(t, "", collapseBlankLines("  \n \n"))
}
