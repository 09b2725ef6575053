package pdf

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// parseLayout extracts positioned text lines and image bounding boxes from
// MuPDF's structured HTML rendition of a page. Each text block element is
// absolutely positioned and becomes one line; img elements carry their box
// in the style attribute. Blocks without a resolvable top coordinate become
// unpositioned lines.
func parseLayout(src string) ([]Line, []Rect) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, nil
	}

	var lines []Line
	var images []Rect

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "img":
				if r, ok := rectFromStyle(attr(n, "style")); ok {
					images = append(images, r)
				}
				return
			case "p":
				text := collectText(n)
				if strings.TrimSpace(text) != "" {
					top, ok := styleValue(attr(n, "style"), "top")
					lines = append(lines, Line{Text: text, Top: top, Positioned: ok})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return lines, images
}

// collectText concatenates the text content of a node's subtree.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimRight(sb.String(), "\n")
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// rectFromStyle builds a bounding box from an inline style's left/top/width/
// height declarations. All four must be present.
func rectFromStyle(style string) (Rect, bool) {
	left, okL := styleValue(style, "left")
	top, okT := styleValue(style, "top")
	width, okW := styleValue(style, "width")
	height, okH := styleValue(style, "height")
	if !okL || !okT || !okW || !okH {
		return Rect{}, false
	}
	return Rect{Left: left, Top: top, Right: left + width, Bottom: top + height}, true
}

// styleValue extracts one numeric declaration (e.g. "top:123.4pt") from an
// inline style string. Unit suffixes pt and px are accepted.
func styleValue(style, key string) (float64, bool) {
	for _, decl := range strings.Split(style, ";") {
		k, v, found := strings.Cut(decl, ":")
		if !found || strings.TrimSpace(k) != key {
			continue
		}
		v = strings.TrimSpace(v)
		v = strings.TrimSuffix(v, "pt")
		v = strings.TrimSuffix(v, "px")
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
