// Package camera manages the capture device: runtime settings, the
// continuous capture loop, frame recording and histogram data. It is
// the backend the ROI notifier and the web handlers talk to.
package camera

import (
	"fmt"

	"github.com/linusw/asipanel/pkg/roi"
)

// Supported image formats.
const (
	FormatRAW8  = "raw8"
	FormatRAW16 = "raw16"
	FormatRGB24 = "rgb24"
)

// Settings holds all runtime camera parameters. These round-trip
// through the settings API as one object; partial patches are not
// supported.
type Settings struct {
	Exposure  int    `json:"exposure"` // microseconds
	Gain      int    `json:"gain"`
	Binning   int    `json:"binning"`
	Format    string `json:"format"`    // raw8, raw16, rgb24
	Bandwidth string `json:"bandwidth"` // min, max

	// ROI as fractions of the full sensor, independent of binning.
	ROIX      float64 `json:"roi_x"`
	ROIY      float64 `json:"roi_y"`
	ROIWidth  float64 `json:"roi_width"`
	ROIHeight float64 `json:"roi_height"`

	// MaxRecordingFPS limits frames written to disk. 0 = unlimited.
	MaxRecordingFPS float64 `json:"max_recording_fps"`
}

// DefaultSettings returns the power-on configuration: full frame,
// 10 ms exposure, no binning.
func DefaultSettings() Settings {
	return Settings{
		Exposure:        10000,
		Gain:            100,
		Binning:         1,
		Format:          FormatRAW8,
		Bandwidth:       "max",
		ROIX:            0,
		ROIY:            0,
		ROIWidth:        1,
		ROIHeight:       1,
		MaxRecordingFPS: 30,
	}
}

// Validate checks value ranges. Returns a list of violations, or nil.
func (s Settings) Validate() []string {
	var errors []string

	if s.Exposure < 1 || s.Exposure > 60_000_000 {
		errors = append(errors, "exposure must be between 1 and 60000000 microseconds")
	}
	if s.Gain < 0 || s.Gain > 600 {
		errors = append(errors, "gain must be between 0 and 600")
	}
	validBinning := map[int]bool{1: true, 2: true, 3: true, 4: true}
	if !validBinning[s.Binning] {
		errors = append(errors, "binning must be 1, 2, 3 or 4")
	}
	validFormats := map[string]bool{FormatRAW8: true, FormatRAW16: true, FormatRGB24: true}
	if !validFormats[s.Format] {
		errors = append(errors, "format must be raw8, raw16 or rgb24")
	}
	if s.Bandwidth != "min" && s.Bandwidth != "max" {
		errors = append(errors, "bandwidth must be min or max")
	}
	if !s.ROI().Valid() {
		errors = append(errors, "roi must be a normalized rectangle inside the frame")
	}
	if s.MaxRecordingFPS < 0 {
		errors = append(errors, "max_recording_fps must be 0 (unlimited) or positive")
	}

	return errors
}

// ROI returns the settings' region of interest as a normalized rect.
func (s Settings) ROI() roi.Rect {
	return roi.Rect{X: s.ROIX, Y: s.ROIY, Width: s.ROIWidth, Height: s.ROIHeight}
}

// SetROI stores a normalized rect into the settings fields.
func (s *Settings) SetROI(r roi.Rect) {
	s.ROIX, s.ROIY, s.ROIWidth, s.ROIHeight = r.X, r.Y, r.Width, r.Height
}

// OnlyROIPositionChanged reports whether next differs from s purely in
// ROI position. That case has a fast path: the device ROI origin moves
// without stopping and reconfiguring the capture stream.
func (s *Settings) OnlyROIPositionChanged(next Settings) bool {
	return s.Exposure == next.Exposure &&
		s.Gain == next.Gain &&
		s.Binning == next.Binning &&
		s.Format == next.Format &&
		s.Bandwidth == next.Bandwidth &&
		s.ROIWidth == next.ROIWidth &&
		s.ROIHeight == next.ROIHeight &&
		(s.ROIX != next.ROIX || s.ROIY != next.ROIY)
}

// NeedsRecordingRestart reports whether switching from s to next
// changes the captured image stream enough that an active recording
// should be restarted. Moving the ROI does not; everything else does.
func (s *Settings) NeedsRecordingRestart(next Settings) bool {
	return s.Exposure != next.Exposure ||
		s.Gain != next.Gain ||
		s.Binning != next.Binning ||
		s.Format != next.Format ||
		s.Bandwidth != next.Bandwidth ||
		s.ROIWidth != next.ROIWidth ||
		s.ROIHeight != next.ROIHeight
}

// FormatExposure renders an exposure in microseconds as a human
// readable string: 250µs, 12.5ms, 2.000s.
func FormatExposure(us int) string {
	switch {
	case us >= 1_000_000:
		return fmt.Sprintf("%.3fs", float64(us)/1_000_000)
	case us >= 1000:
		return fmt.Sprintf("%.1fms", float64(us)/1000)
	default:
		return fmt.Sprintf("%dµs", us)
	}
}
