//go:build gocv

package camera

import (
	"fmt"
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// gocvDevice captures through OpenCV. The capture window is applied in
// software: the device delivers full sensor frames and the configured
// geometry is cropped out before conversion. SetPosition therefore
// only moves the crop origin, which is why the ROI fast path never has
// to restart the stream.
type gocvDevice struct {
	mu   sync.Mutex
	vc   *gocv.VideoCapture
	geom Geometry
	set  Settings
	info Info
}

// OpenDevice opens capture device id through OpenCV.
func OpenDevice(id int) (Device, error) {
	d := &gocvDevice{}
	if err := d.Open(id); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *gocvDevice) Open(id int) error {
	vc, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return fmt.Errorf("open capture device %d: %w", id, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return ErrNoDevice
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.vc = vc
	d.info = Info{
		Name:         fmt.Sprintf("OpenCV capture %d", id),
		SensorWidth:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		SensorHeight: int(vc.Get(gocv.VideoCaptureFrameHeight)),
		PixelSizeUM:  0,
		IsColor:      true,
		BitDepth:     8,
	}
	d.set = DefaultSettings()
	d.geom = FrameGeometry(d.info, d.set)
	return nil
}

func (d *gocvDevice) Info() (Info, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.vc == nil {
		return Info{}, ErrNotOpen
	}
	return d.info, nil
}

func (d *gocvDevice) Configure(g Geometry, s Settings) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.vc == nil {
		return ErrNotOpen
	}

	// Exposure is in microseconds; OpenCV wants milliseconds here.
	d.vc.Set(gocv.VideoCaptureExposure, float64(s.Exposure)/1000)
	d.vc.Set(gocv.VideoCaptureGain, float64(s.Gain))

	d.geom = g
	d.set = s
	return nil
}

func (d *gocvDevice) SetPosition(x, y int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.vc == nil {
		return ErrNotOpen
	}
	d.geom.X = x
	d.geom.Y = y
	return nil
}

func (d *gocvDevice) Grab() (Frame, error) {
	d.mu.Lock()
	vc, geom, set, info := d.vc, d.geom, d.set, d.info
	d.mu.Unlock()
	if vc == nil {
		return Frame{}, ErrNotOpen
	}

	raw := gocv.NewMat()
	defer raw.Close()
	if ok := vc.Read(&raw); !ok || raw.Empty() {
		return Frame{}, fmt.Errorf("grab: read failed")
	}

	// Binning is emulated by resizing the full frame down.
	src := raw
	binned := gocv.NewMat()
	defer binned.Close()
	if set.Binning > 1 {
		gocv.Resize(raw, &binned, image.Pt(info.SensorWidth/set.Binning, info.SensorHeight/set.Binning), 0, 0, gocv.InterpolationArea)
		src = binned
	}

	crop := src.Region(image.Rect(geom.X, geom.Y, geom.X+geom.Width, geom.Y+geom.Height))
	defer crop.Close()

	switch set.Format {
	case FormatRGB24:
		out := gocv.NewMat()
		defer out.Close()
		crop.CopyTo(&out)
		return Frame{
			Width:    geom.Width,
			Height:   geom.Height,
			Channels: 3,
			Pix:      out.ToBytes(),
			Captured: time.Now(),
		}, nil
	default:
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(crop, &gray, gocv.ColorBGRToGray)
		return Frame{
			Width:    geom.Width,
			Height:   geom.Height,
			Channels: 1,
			Pix:      gray.ToBytes(),
			Captured: time.Now(),
		}, nil
	}
}

func (d *gocvDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.vc == nil {
		return nil
	}
	err := d.vc.Close()
	d.vc = nil
	return err
}
