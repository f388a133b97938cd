package overlay

import (
	"sync"

	"github.com/linusw/asipanel/pkg/roi"
)

// BorderInset is subtracted from each side of the image element's
// rendered bounds to get the drawable overlay area.
const BorderInset = 2

// Viewport derives the overlay's pixel dimensions from the rendered
// bounds of the image element it covers. The host signals it when
// layout has settled after an image load or a window resize; there is
// no fixed-delay re-measure heuristic.
type Viewport struct {
	mu       sync.Mutex
	width    int
	height   int
	onResize func(w, h int)
}

// NewViewport creates a viewport. onResize fires whenever the derived
// size actually changes, so the owner can repaint; it may be nil.
func NewViewport(onResize func(w, h int)) *Viewport {
	return &Viewport{onResize: onResize}
}

// Size returns the current drawable dimensions.
func (v *Viewport) Size() (w, h int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// LayoutSettled re-measures from the element bounds reported by the
// host once layout is stable. Returns true when the size changed.
func (v *Viewport) LayoutSettled(b roi.Bounds) bool {
	w := int(b.Width) - 2*BorderInset
	h := int(b.Height) - 2*BorderInset
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}

	v.mu.Lock()
	changed := w != v.width || h != v.height
	v.width, v.height = w, h
	onResize := v.onResize
	v.mu.Unlock()

	if changed && onResize != nil {
		onResize(w, h)
	}
	return changed
}
