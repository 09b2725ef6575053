package document

import (
	"sort"

	"docanalyzer/internal/pdf"
)

// Figure is a described image region ready for insertion into a page's text
// stream: the vertical midpoint of its bounding box and the finished caption
// ("<label> <n>: <description>").
type Figure struct {
	Mid     float64
	Caption string
}

// Interleave merges figure captions into a page's line stream in reading
// order. Figures are stably sorted by midpoint; each pending figure is
// emitted immediately before the first positioned line whose vertical
// coordinate is at or past the figure's midpoint, so the caption lands right
// after the text the figure follows. Lines without a resolvable position
// never trigger emission; figures that match no line append at the end in
// sorted order. Every line and every caption appears exactly once.
func Interleave(lines []pdf.Line, figures []Figure) []string {
	figs := make([]Figure, len(figures))
	copy(figs, figures)
	sort.SliceStable(figs, func(i, j int) bool {
		return figs[i].Mid < figs[j].Mid
	})

	out := make([]string, 0, len(lines)+len(figs))
	next := 0
	for _, line := range lines {
		if line.Positioned {
			for next < len(figs) && figs[next].Mid <= line.Top {
				out = append(out, figs[next].Caption)
				next++
			}
		}
		out = append(out, line.Text)
	}
	for ; next < len(figs); next++ {
		out = append(out, figs[next].Caption)
	}

	return out
}
