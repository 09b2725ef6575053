package pdf

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectMid(t *testing.T) {
	r := Rect{Left: 10, Top: 40, Right: 110, Bottom: 80}
	assert.InDelta(t, 60, r.Mid(), 0.001)
	assert.InDelta(t, 100, r.Width(), 0.001)
	assert.InDelta(t, 40, r.Height(), 0.001)
}

func TestPageCrop(t *testing.T) {
	// 100x100 raster for a 50x50pt page rendered at 2x scale
	raster := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 40; y < 60; y++ {
		for x := 20; x < 40; x++ {
			raster.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	page := &Page{Number: 1, Raster: raster, Scale: 2}

	crop := page.Crop(Rect{Left: 10, Top: 20, Right: 20, Bottom: 30})
	require.NotNil(t, crop)
	assert.Equal(t, image.Rect(0, 0, 20, 20), crop.Bounds())

	r, _, _, a := crop.At(0, 0).RGBA()
	assert.NotZero(t, r)
	assert.NotZero(t, a)
}

func TestPageCropClamped(t *testing.T) {
	raster := image.NewRGBA(image.Rect(0, 0, 10, 10))
	page := &Page{Raster: raster, Scale: 1}

	crop := page.Crop(Rect{Left: 5, Top: 5, Right: 50, Bottom: 50})
	require.NotNil(t, crop)
	assert.Equal(t, image.Rect(0, 0, 5, 5), crop.Bounds())
}

func TestPageCropDegenerate(t *testing.T) {
	page := &Page{Raster: image.NewRGBA(image.Rect(0, 0, 10, 10)), Scale: 1}
	assert.Nil(t, page.Crop(Rect{Left: 20, Top: 20, Right: 30, Bottom: 30}))

	empty := &Page{}
	assert.Nil(t, empty.Crop(Rect{Left: 0, Top: 0, Right: 5, Bottom: 5}))
}
