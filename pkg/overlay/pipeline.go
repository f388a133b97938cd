package overlay

import (
	"image"
	"image/color"
	"math"

	"github.com/linusw/asipanel/pkg/roi"
)

// Style holds the drawing parameters for one overlay surface. The
// preview and the thumbnail use the same pipeline with different
// styles (the thumbnail draws smaller handles).
type Style struct {
	Dim        color.RGBA // mask over the area outside the ROI
	Border     color.RGBA // committed rectangle outline
	Handle     color.RGBA // corner handle fill
	DragFill   color.RGBA // live drag box fill
	DragBorder color.RGBA // live drag box outline
	HandleSize int        // handle edge length in pixels, not scaled by rect size
	LineWidth  int
}

// DefaultStyle returns the preview overlay style.
func DefaultStyle() Style {
	return Style{
		Dim:        color.RGBA{A: 153},
		Border:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Handle:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		DragFill:   color.RGBA{B: 255, G: 120, A: 60},
		DragBorder: color.RGBA{B: 255, G: 120, A: 255},
		HandleSize: 8,
		LineWidth:  2,
	}
}

// ThumbnailStyle returns a reduced style for the settings thumbnail.
func ThumbnailStyle() Style {
	s := DefaultStyle()
	s.HandleSize = 5
	s.LineWidth = 1
	return s
}

// Pipeline draws selection state onto a canvas.
type Pipeline struct {
	canvas Canvas
	style  Style
}

// New creates a pipeline bound to a canvas.
func New(canvas Canvas, style Style) *Pipeline {
	return &Pipeline{canvas: canvas, style: style}
}

// Repaint redraws the overlay for the committed rectangle and the
// current interaction session (nil when idle). A translate-drag shows
// the rectangle at its live position without touching the committed
// value; a create-drag shows the spanned box on top of the mask.
func (p *Pipeline) Repaint(committed roi.Rect, session *roi.Session) {
	w, h := p.canvas.Size()
	p.canvas.Clear()
	if w <= 0 || h <= 0 {
		return
	}

	displayed := committed
	var dragBox *roi.Rect
	if session != nil {
		switch session.Mode {
		case roi.ModeMoving:
			r := session.TranslatedRect()
			displayed = r
		case roi.ModeCreating:
			r := session.DragRect()
			dragBox = &r
		}
	}

	if !displayed.IsFullFrame() {
		px := ToPixels(displayed, w, h)
		for _, strip := range Strips(px, w, h) {
			if !strip.Empty() {
				p.canvas.FillRect(strip, p.style.Dim)
			}
		}
		p.canvas.StrokeRect(px, p.style.Border, p.style.LineWidth)
		p.drawHandles(px)
	}

	if dragBox != nil && dragBox.Width > 0 && dragBox.Height > 0 {
		px := ToPixels(*dragBox, w, h)
		p.canvas.FillRect(px, p.style.DragFill)
		p.canvas.StrokeRect(px, p.style.DragBorder, p.style.LineWidth)
	}
}

// drawHandles paints a fixed-size square centered on each corner.
func (p *Pipeline) drawHandles(r image.Rectangle) {
	half := p.style.HandleSize / 2
	corners := []image.Point{
		r.Min,
		{r.Max.X, r.Min.Y},
		{r.Min.X, r.Max.Y},
		r.Max,
	}
	for _, c := range corners {
		h := image.Rect(c.X-half, c.Y-half, c.X-half+p.style.HandleSize, c.Y-half+p.style.HandleSize)
		p.canvas.FillRect(h, p.style.Handle)
	}
}

// ToPixels scales a normalized rectangle to pixel space. Both corners
// are rounded independently so that adjacent strips tile without gaps.
func ToPixels(r roi.Rect, w, h int) image.Rectangle {
	x0 := int(math.Round(r.X * float64(w)))
	y0 := int(math.Round(r.Y * float64(h)))
	x1 := int(math.Round((r.X + r.Width) * float64(w)))
	y1 := int(math.Round((r.Y + r.Height) * float64(h)))
	return image.Rect(x0, y0, x1, y1)
}

// Strips returns the four dimming rectangles covering the canvas area
// outside px: full-width top and bottom strips plus left and right
// strips between them. They never overlap and their union is exactly
// the canvas minus px.
func Strips(px image.Rectangle, w, h int) [4]image.Rectangle {
	return [4]image.Rectangle{
		image.Rect(0, 0, w, px.Min.Y),               // top
		image.Rect(0, px.Max.Y, w, h),               // bottom
		image.Rect(0, px.Min.Y, px.Min.X, px.Max.Y), // left
		image.Rect(px.Max.X, px.Min.Y, w, px.Max.Y), // right
	}
}
