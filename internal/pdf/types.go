package pdf

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Line is one line of extracted page text. Top is the line's approximate
// vertical position in page points; Positioned is false when the extraction
// layer could not resolve a position for the line.
type Line struct {
	Text       string
	Top        float64
	Positioned bool
}

// Rect is an axis-aligned bounding box in page coordinate space (points,
// origin top-left).
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Mid returns the vertical center of the box, the sort and insertion key
// used when merging figure captions into the text stream.
func (r Rect) Mid() float64 {
	return r.Top + (r.Bottom-r.Top)/2
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the vertical extent of the box.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Page holds everything extracted from one physical page. It is produced
// once per page and discarded after its merged text has been appended to
// the document result.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Lines are the page's text lines in natural reading order.
	Lines []Line

	// Images are the bounding boxes of embedded raster regions.
	Images []Rect

	// Raster is the rendered page image, or nil when rendering was skipped.
	Raster image.Image

	// Scale converts page points to raster pixels (render DPI / 72).
	Scale float64
}

// Crop returns the page raster region covered by r as a standalone image.
// The region is clamped to the raster bounds; a nil raster or a degenerate
// region yields nil.
func (p *Page) Crop(r Rect) image.Image {
	if p.Raster == nil {
		return nil
	}
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}

	bounds := p.Raster.Bounds()
	crop := image.Rect(
		int(r.Left*scale), int(r.Top*scale),
		int(r.Right*scale), int(r.Bottom*scale),
	).Add(bounds.Min).Intersect(bounds)
	if crop.Empty() {
		return nil
	}

	// Copy into a fresh buffer so the crop does not pin the page raster.
	dst := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	xdraw.Copy(dst, image.Point{}, p.Raster, crop, xdraw.Src, nil)
	return dst
}
