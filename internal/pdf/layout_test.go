package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `
<div id="page0" style="position:relative;width:612pt;height:792pt">
<p style="position:absolute;white-space:pre;margin:0;padding:0;top:72.5pt;left:72pt"><span style="font-size:12pt">First line</span></p>
<p style="position:absolute;white-space:pre;margin:0;padding:0;top:90pt;left:72pt"><span>Second</span> <span>line</span></p>
<img style="position:absolute;top:120pt;left:50pt;width:200pt;height:100pt" src="data:image/png;base64,AAAA"/>
<p style="margin:0">Orphan text</p>
</div>`

func TestParseLayout(t *testing.T) {
	lines, images := parseLayout(samplePage)

	require.Len(t, lines, 3)
	assert.Equal(t, "First line", lines[0].Text)
	assert.True(t, lines[0].Positioned)
	assert.InDelta(t, 72.5, lines[0].Top, 0.001)

	assert.Equal(t, "Second line", lines[1].Text)
	assert.InDelta(t, 90, lines[1].Top, 0.001)

	// Block without a top declaration stays unpositioned
	assert.Equal(t, "Orphan text", lines[2].Text)
	assert.False(t, lines[2].Positioned)

	require.Len(t, images, 1)
	assert.Equal(t, Rect{Left: 50, Top: 120, Right: 250, Bottom: 220}, images[0])
	assert.InDelta(t, 170, images[0].Mid(), 0.001)
}

func TestParseLayoutEmpty(t *testing.T) {
	lines, images := parseLayout(`<div id="page0"></div>`)
	assert.Empty(t, lines)
	assert.Empty(t, images)
}

func TestParseLayoutIncompleteImageStyle(t *testing.T) {
	// Images without a full box are dropped rather than guessed
	lines, images := parseLayout(`<div><img style="top:10pt;left:10pt" src="x"/></div>`)
	assert.Empty(t, lines)
	assert.Empty(t, images)
}

func TestStyleValue(t *testing.T) {
	tests := []struct {
		style string
		key   string
		want  float64
		ok    bool
	}{
		{"top:72pt;left:10pt", "top", 72, true},
		{"top: 72.25pt ;left:10pt", "top", 72.25, true},
		{"top:100px", "top", 100, true},
		{"left:10pt", "top", 0, false},
		{"top:abc", "top", 0, false},
	}

	for _, tt := range tests {
		got, ok := styleValue(tt.style, tt.key)
		assert.Equal(t, tt.ok, ok, "style %q", tt.style)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 0.001, "style %q", tt.style)
		}
	}
}
