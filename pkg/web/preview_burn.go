//go:build !gocv

package web

import (
	"image"
	"image/draw"

	"github.com/linusw/asipanel/pkg/camera"
	"github.com/linusw/asipanel/pkg/overlay"
	"github.com/linusw/asipanel/pkg/roi"
)

// burnAndEncode draws the live drag session directly onto the frame
// and encodes it for the preview feed. Pure-Go path for builds without
// OpenCV.
func burnAndEncode(f camera.Frame, session *roi.Session, style overlay.Style) ([]byte, error) {
	src := f.Image()
	b := src.Bounds()

	rgba, ok := src.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(b)
		draw.Draw(rgba, b, src, b.Min, draw.Src)
	}

	overlay.New(overlay.WrapImage(rgba), style).Repaint(roi.FullFrame(), session)
	return camera.EncodeImageJPEG(rgba, previewQuality)
}
