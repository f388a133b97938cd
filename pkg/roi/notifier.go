package roi

import (
	"fmt"
	"math"
	"sync"

	"github.com/linusw/asipanel/internal/httpc"
)

// PixelROI is the committed rectangle expressed in sensor pixels, for
// display next to the thumbnail. Purely presentational.
type PixelROI struct {
	X       int `json:"x"`
	Y       int `json:"y"`
	Width   int `json:"width"`
	Height  int `json:"height"`
	Binning int `json:"binning"`
}

// sensorInfo mirrors the camera info endpoint response.
type sensorInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Notifier propagates committed rectangles to the camera settings API
// and resolves sensor geometry for pixel-coordinate display. Calls are
// fire-and-forget: a failure is logged and the last successfully
// resolved state stays in place. Responses are sequenced by the commit
// counter, so a slow response to an earlier commit never overwrites the
// display for a later one.
type Notifier struct {
	base string

	mu       sync.Mutex
	seq      uint64 // next sequence number to hand out
	applied  uint64 // highest sequence whose response was accepted
	pixels   PixelROI
	resolved bool
}

// NewNotifier creates a notifier against the camera API base URL,
// e.g. "http://127.0.0.1:8000".
func NewNotifier(baseURL string) *Notifier {
	return &Notifier{base: baseURL}
}

// ROIChanged implements the manager subscription. It applies the
// rectangle asynchronously and returns immediately.
func (n *Notifier) ROIChanged(r Rect) {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.mu.Unlock()

	go n.apply(seq, r)
}

// PixelROI returns the last successfully resolved pixel rectangle.
// ok is false until the first geometry fetch succeeds; the UI shows
// "N/A" in that case.
func (n *Notifier) PixelROI() (p PixelROI, ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pixels, n.resolved
}

// apply merges the rectangle into the full settings object, posts it
// back, and refreshes the pixel-coordinate display.
func (n *Notifier) apply(seq uint64, r Rect) {
	// The settings object is always sent whole, never as a partial
	// patch, so unrelated fields survive the round trip untouched.
	settings := map[string]any{}
	if err := httpc.GetJSON(n.base+"/camera/settings", &settings); err != nil {
		logc.Warn("settings fetch failed, rect not applied", "err", err)
		return
	}
	settings["roi_x"] = r.X
	settings["roi_y"] = r.Y
	settings["roi_width"] = r.Width
	settings["roi_height"] = r.Height

	if err := httpc.PostJSON(n.base+"/camera/settings", settings); err != nil {
		logc.Warn("settings update failed", "err", err)
		return
	}

	var info sensorInfo
	if err := httpc.GetJSON(n.base+"/camera/info", &info); err != nil {
		logc.Warn("sensor geometry fetch failed", "err", err)
		return
	}

	binning := 1
	if b, ok := settings["binning"].(float64); ok && b >= 1 {
		binning = int(b)
	}
	pixels := PixelROI{
		X:       int(math.Round(r.X * float64(info.Width))),
		Y:       int(math.Round(r.Y * float64(info.Height))),
		Width:   int(math.Round(r.Width * float64(info.Width))),
		Height:  int(math.Round(r.Height * float64(info.Height))),
		Binning: binning,
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if seq < n.applied {
		// A later commit already resolved; this response is stale.
		logc.Debug("dropping stale geometry response", "seq", seq, "applied", n.applied)
		return
	}
	n.applied = seq
	n.pixels = pixels
	n.resolved = true
}

// PixelText formats the pixel rectangle for the settings panel, or
// "N/A" when geometry has never resolved.
func (n *Notifier) PixelText() string {
	p, ok := n.PixelROI()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%d,%d %dx%d", p.X, p.Y, p.Width, p.Height)
}
