package camera

import (
	"sync"
	"time"
)

// fpsWindow is the sliding window over which capture FPS is measured.
const fpsWindow = 2 * time.Second

// fpsTracker measures frame rate over a sliding window. The capture
// loop ticks it once per frame; status reads compute the rate.
type fpsTracker struct {
	mu     sync.Mutex
	stamps []time.Time
}

func newFPSTracker() *fpsTracker {
	return &fpsTracker{}
}

// Tick records one captured frame at time now.
func (t *fpsTracker) Tick(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stamps = append(t.stamps, now)
	t.prune(now)
}

// Rate returns frames per second over the window, rounded to one
// decimal place.
func (t *fpsTracker) Rate(now time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prune(now)
	if len(t.stamps) == 0 {
		return 0
	}
	fps := float64(len(t.stamps)) / fpsWindow.Seconds()
	return float64(int(fps*10+0.5)) / 10
}

// Reset discards all samples, e.g. after a capture restart.
func (t *fpsTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stamps = t.stamps[:0]
}

func (t *fpsTracker) prune(now time.Time) {
	cutoff := now.Add(-fpsWindow)
	i := 0
	for i < len(t.stamps) && t.stamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		t.stamps = append(t.stamps[:0], t.stamps[i:]...)
	}
}
