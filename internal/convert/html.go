package convert

import (
	"context"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// HTMLConverter flattens an HTML document into readable plain text.
type HTMLConverter struct{}

// NewHTMLConverter creates the HTML converter.
func NewHTMLConverter() *HTMLConverter {
	return &HTMLConverter{}
}

// blockElements start a new output line when entered.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "ul": true, "ol": true, "blockquote": true, "pre": true,
	"section": true, "article": true, "header": true, "footer": true,
}

// skippedElements contribute no text.
var skippedElements = map[string]bool{
	"script": true, "style": true, "head": true, "noscript": true,
}

// Convert parses the file and walks the tree, emitting text nodes with
// block-element boundaries as newlines.
func (c *HTMLConverter) Convert(ctx context.Context, path string) (*Result, error) {
	const op = "Convert"

	f, err := os.Open(path)
	if err != nil {
		return nil, NewConvertError(op, err, "failed to open file")
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return nil, NewConvertError(op, err, "failed to parse HTML")
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElements[n.Data] {
				return
			}
			if blockElements[n.Data] {
				sb.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return &Result{
		Text:   collapseBlankLines(sb.String()),
		Format: "html",
	}, nil
}

// collapseBlankLines trims each line and squeezes runs of blank lines down
// to one.
func collapseBlankLines(s string) string {
	var out []string
	blank := true
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
