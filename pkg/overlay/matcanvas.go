//go:build gocv

package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// MatCanvas draws directly onto a BGR gocv.Mat, burning the selection
// overlay into a preview frame before it is JPEG-encoded for streaming.
// Each streamed frame is a fresh Mat, so Clear is a no-op.
type MatCanvas struct {
	mat *gocv.Mat
}

// NewMatCanvas wraps a frame Mat for one repaint.
func NewMatCanvas(mat *gocv.Mat) *MatCanvas {
	return &MatCanvas{mat: mat}
}

// Size returns the frame dimensions.
func (c *MatCanvas) Size() (int, int) {
	return c.mat.Cols(), c.mat.Rows()
}

// Clear does nothing; the wrapped Mat is already the fresh frame.
func (c *MatCanvas) Clear() {}

// FillRect fills a rectangle. Translucent colors are blended into the
// frame with AddWeighted so the dimming mask keeps the image visible.
func (c *MatCanvas) FillRect(r image.Rectangle, col color.RGBA) {
	r = r.Intersect(image.Rect(0, 0, c.mat.Cols(), c.mat.Rows()))
	if r.Empty() {
		return
	}
	if col.A == 255 {
		gocv.Rectangle(c.mat, r, col, -1)
		return
	}

	region := c.mat.Region(r)
	defer region.Close()

	solid := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(col.B), float64(col.G), float64(col.R), 0),
		region.Rows(), region.Cols(), region.Type())
	defer solid.Close()

	alpha := float64(col.A) / 255
	gocv.AddWeighted(region, 1-alpha, solid, alpha, 0, &region)
}

// StrokeRect outlines a rectangle.
func (c *MatCanvas) StrokeRect(r image.Rectangle, col color.RGBA, width int) {
	if width < 1 {
		width = 1
	}
	gocv.Rectangle(c.mat, r, col, width)
}
