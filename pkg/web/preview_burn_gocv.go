//go:build gocv

package web

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/linusw/asipanel/pkg/camera"
	"github.com/linusw/asipanel/pkg/overlay"
	"github.com/linusw/asipanel/pkg/roi"
)

// burnAndEncode draws the live drag session directly onto the frame
// Mat and encodes it for the preview feed.
func burnAndEncode(f camera.Frame, session *roi.Session, style overlay.Style) ([]byte, error) {
	matType := gocv.MatTypeCV8UC1
	if f.Channels == 3 {
		matType = gocv.MatTypeCV8UC3
	}
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, matType, f.Pix)
	if err != nil {
		return nil, fmt.Errorf("wrap frame: %w", err)
	}
	defer mat.Close()

	if f.Channels == 1 {
		// Drawing colored affordances needs a BGR target.
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(mat, &bgr, gocv.ColorGrayToBGR)
		return burnMat(&bgr, session, style)
	}
	return burnMat(&mat, session, style)
}

func burnMat(mat *gocv.Mat, session *roi.Session, style overlay.Style) ([]byte, error) {
	overlay.New(overlay.NewMatCanvas(mat), style).Repaint(roi.FullFrame(), session)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *mat)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}
