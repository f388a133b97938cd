package roi

// Cursor is the hover affordance the secondary overlay should present.
type Cursor int

const (
	// CursorDefault is the default pointer affordance.
	CursorDefault Cursor = iota
	// CursorMove indicates the rectangle under the pointer can be dragged.
	CursorMove
)

// String returns the CSS cursor keyword for the affordance.
func (c Cursor) String() string {
	if c == CursorMove {
		return "move"
	}
	return "default"
}

// Dragger is the move-only state machine bound to the settings-panel
// thumbnail overlay. It translates the committed rectangle without
// resizing it, and only engages when a rectangle is actually selected.
type Dragger struct {
	session Session

	committed func() Rect
	commit    func(Rect)
	repaint   RepaintFunc
}

// NewDragger creates a dragger with the same upward-reporting contract
// as NewSelector.
func NewDragger(committed func() Rect, commit func(Rect), repaint RepaintFunc) *Dragger {
	return &Dragger{
		committed: committed,
		commit:    commit,
		repaint:   repaint,
	}
}

// Session returns the transient interaction state.
func (d *Dragger) Session() *Session {
	return &d.session
}

// PointerDown starts a translate-drag when the rectangle is not
// full-frame and the pointer lies inside it. Any other pointer-down
// produces no interaction at all.
func (d *Dragger) PointerDown(p Point) {
	r := d.committed()
	if r.IsFullFrame() || !r.Contains(p) {
		return
	}
	d.session = Session{
		Mode:     ModeMoving,
		Anchor:   p,
		Current:  p,
		Original: r,
	}
	d.doRepaint(true)
}

// PointerMove translates the snapshot rectangle by the drag delta,
// clamped per axis to [0, 1-dimension] so neither edge leaves the
// frame. Each update repaints the thumbnail immediately; nothing is
// sent over the network until release.
func (d *Dragger) PointerMove(p Point) {
	if d.session.Mode != ModeMoving {
		return
	}
	d.session.Current = p
	d.doRepaint(true)
}

// PointerUp commits the translated rectangle. This is the single point
// where the external settings update is sent for a move.
func (d *Dragger) PointerUp(p Point) {
	if d.session.Mode != ModeMoving {
		return
	}
	d.session.Current = p
	r := d.session.TranslatedRect()
	d.session.reset()
	d.commit(r)
	d.doRepaint(false)
}

// Cancel abandons an in-progress drag without committing.
func (d *Dragger) Cancel() {
	if !d.session.Active() {
		return
	}
	d.session.reset()
	d.doRepaint(false)
}

// Hover reports the affordance cursor for a pointer resting at p while
// idle: a move cursor inside a selected rectangle, default otherwise.
func (d *Dragger) Hover(p Point) Cursor {
	if d.session.Active() {
		return CursorMove
	}
	r := d.committed()
	if !r.IsFullFrame() && r.Contains(p) {
		return CursorMove
	}
	return CursorDefault
}

func (d *Dragger) doRepaint(active bool) {
	if d.repaint == nil {
		return
	}
	var sess *Session
	if active {
		sess = &d.session
	}
	d.repaint(d.committed(), sess)
}
