package roi

// MinExtent is the minimum normalized width and height a create-drag
// must span before it commits. Smaller selections are discarded so an
// incidental micro-click never replaces the committed rectangle.
const MinExtent = 0.05

// RepaintFunc is called after every intermediate interaction update so
// the owning overlay can redraw. session is nil once the interaction
// has ended.
type RepaintFunc func(committed Rect, session *Session)

// Selector is the free-form create/replace state machine bound to the
// live-preview overlay. A drag from any point on the overlay spans a
// new rectangle; releasing commits it upward when it meets the minimum
// extent, and a double-click resets to full frame.
type Selector struct {
	session Session

	committed func() Rect
	commit    func(Rect)
	repaint   RepaintFunc
}

// NewSelector creates a selector. committed reads the current canonical
// rectangle, commit proposes a replacement upward; the selector never
// mutates shared state directly.
func NewSelector(committed func() Rect, commit func(Rect), repaint RepaintFunc) *Selector {
	return &Selector{
		committed: committed,
		commit:    commit,
		repaint:   repaint,
	}
}

// Session returns the transient interaction state.
func (s *Selector) Session() *Session {
	return &s.session
}

// PointerDown starts a create-drag anywhere on the overlay. The anchor
// is clamped so a down event on the overlay border cannot seed an
// out-of-frame rectangle.
func (s *Selector) PointerDown(p Point) {
	anchor := Point{X: clamp01(p.X), Y: clamp01(p.Y)}
	s.session = Session{
		Mode:    ModeCreating,
		Anchor:  anchor,
		Current: anchor,
	}
	s.doRepaint(true)
}

// PointerMove updates the live drag rectangle. Each coordinate is
// clamped to [0,1] individually so dragging past an edge pins the box
// to that edge.
func (s *Selector) PointerMove(p Point) {
	if s.session.Mode != ModeCreating {
		return
	}
	s.session.Current = Point{X: clamp01(p.X), Y: clamp01(p.Y)}
	s.doRepaint(true)
}

// PointerUp ends the drag. The spanned rectangle is committed when both
// extents reach MinExtent; otherwise the selection is discarded and the
// previously committed rectangle stands untouched.
func (s *Selector) PointerUp(p Point) {
	if s.session.Mode != ModeCreating {
		return
	}
	s.session.Current = Point{X: clamp01(p.X), Y: clamp01(p.Y)}
	r := s.session.DragRect()
	s.session.reset()

	if r.Width >= MinExtent && r.Height >= MinExtent {
		s.commit(r)
	}
	s.doRepaint(false)
}

// DoubleClick resets to the full-frame rectangle from any state. The
// reset always commits, irrespective of the minimum-extent rule.
func (s *Selector) DoubleClick() {
	s.session.reset()
	s.commit(FullFrame())
	s.doRepaint(false)
}

// Cancel abandons an in-progress drag without committing, e.g. when
// the pointer capture is lost.
func (s *Selector) Cancel() {
	if !s.session.Active() {
		return
	}
	s.session.reset()
	s.doRepaint(false)
}

func (s *Selector) doRepaint(active bool) {
	if s.repaint == nil {
		return
	}
	var sess *Session
	if active {
		sess = &s.session
	}
	s.repaint(s.committed(), sess)
}
