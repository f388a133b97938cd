package camera

import "github.com/linusw/asipanel/pkg/roi"

// Sensor geometry constraints imposed by the capture hardware.
const (
	widthAlign  = 8
	heightAlign = 2
	minWidth    = 64
	minHeight   = 32
)

// Info describes the connected sensor. Served verbatim on the info
// endpoint so clients can translate normalized ROI coordinates to
// sensor pixels.
type Info struct {
	Name         string  `json:"name"`
	SensorWidth  int     `json:"width"`
	SensorHeight int     `json:"height"`
	PixelSizeUM  float64 `json:"pixel_size"`
	IsColor      bool    `json:"is_color"`
	BitDepth     int     `json:"bit_depth"`
}

// Geometry is the capture window actually programmed into the device,
// in binned pixels.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FrameGeometry translates a normalized ROI into device coordinates.
// The sensor dimensions are divided by the binning factor, the width is
// rounded down to a multiple of 8 and the height to a multiple of 2.
// A region that would fall below the hardware minimum of 64x32 falls
// back to the full binned frame.
func FrameGeometry(info Info, s Settings) Geometry {
	maxW := info.SensorWidth / s.Binning
	maxH := info.SensorHeight / s.Binning

	r := s.ROI()
	g := Geometry{
		X:      int(r.X * float64(maxW)),
		Y:      int(r.Y * float64(maxH)),
		Width:  int(r.Width * float64(maxW)),
		Height: int(r.Height * float64(maxH)),
	}

	g.Width = g.Width / widthAlign * widthAlign
	g.Height = g.Height / heightAlign * heightAlign

	if g.Width < minWidth || g.Height < minHeight {
		return Geometry{X: 0, Y: 0, Width: maxW / widthAlign * widthAlign, Height: maxH / heightAlign * heightAlign}
	}

	if g.X+g.Width > maxW {
		g.X = maxW - g.Width
	}
	if g.Y+g.Height > maxH {
		g.Y = maxH - g.Height
	}
	if g.X < 0 {
		g.X = 0
	}
	if g.Y < 0 {
		g.Y = 0
	}
	return g
}

// PositionFor computes only the origin for a ROI whose size is already
// programmed. Used on the fast path: moving the ROI does not stop the
// capture stream.
func PositionFor(info Info, s Settings, r roi.Rect) (x, y int) {
	maxW := info.SensorWidth / s.Binning
	maxH := info.SensorHeight / s.Binning
	x = int(r.X * float64(maxW))
	y = int(r.Y * float64(maxH))

	g := FrameGeometry(info, s)
	if x+g.Width > maxW {
		x = maxW - g.Width
	}
	if y+g.Height > maxH {
		y = maxH - g.Height
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
