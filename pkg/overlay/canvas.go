// Package overlay renders ROI selection affordances - dimming mask,
// border, corner handles and the live drag box - onto a raster surface
// positioned over the preview image. The pipeline is a pure function of
// the committed rectangle, the canvas size and the interaction session,
// so both the preview canvas and the settings thumbnail share it.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
)

// Canvas is the 2D raster surface the pipeline draws on. Coordinates
// are device pixels with the origin at the top-left.
type Canvas interface {
	// Size returns the drawable width and height in pixels.
	Size() (w, h int)
	// Clear resets the surface to fully transparent.
	Clear()
	// FillRect fills a rectangle, alpha-blending c over the surface.
	FillRect(r image.Rectangle, c color.RGBA)
	// StrokeRect outlines a rectangle with the given line width.
	StrokeRect(r image.Rectangle, c color.RGBA, width int)
}

// ImageCanvas is a Canvas backed by a standard image.RGBA. It is used
// for the PNG overlay endpoint and throughout the tests.
type ImageCanvas struct {
	img      *image.RGBA
	preserve bool
}

// NewImageCanvas creates a transparent canvas of the given size.
func NewImageCanvas(w, h int) *ImageCanvas {
	return &ImageCanvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// WrapImage makes a canvas that draws over existing pixels, for
// burning the overlay into a preview frame. Clear keeps the frame
// intact instead of erasing it.
func WrapImage(img *image.RGBA) *ImageCanvas {
	return &ImageCanvas{img: img, preserve: true}
}

// Image returns the backing image.
func (c *ImageCanvas) Image() *image.RGBA {
	return c.img
}

// Size returns the canvas dimensions.
func (c *ImageCanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear resets every pixel to transparent. Wrapped frame canvases keep
// their pixels; the next frame replaces them anyway.
func (c *ImageCanvas) Clear() {
	if c.preserve {
		return
	}
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// FillRect alpha-blends a uniform color over the rectangle.
func (c *ImageCanvas) FillRect(r image.Rectangle, col color.RGBA) {
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

// StrokeRect draws the four edge strips of a rectangle outline.
func (c *ImageCanvas) StrokeRect(r image.Rectangle, col color.RGBA, width int) {
	if width < 1 {
		width = 1
	}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		c.FillRect(e, col)
	}
}
