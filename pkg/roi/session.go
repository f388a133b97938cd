package roi

// Mode is the interaction state of one overlay widget.
type Mode int

const (
	// ModeIdle means no drag is in progress.
	ModeIdle Mode = iota
	// ModeCreating means a create-drag is in progress on the primary overlay.
	ModeCreating
	// ModeMoving means a translate-drag is in progress on the secondary overlay.
	ModeMoving
)

// String returns the mode name for logging.
func (m Mode) String() string {
	switch m {
	case ModeCreating:
		return "creating"
	case ModeMoving:
		return "moving"
	default:
		return "idle"
	}
}

// Session is the transient per-overlay interaction state. It exists only
// for the duration of a drag; the committed rectangle is never mutated
// mid-drag.
type Session struct {
	Mode     Mode  `json:"mode"`
	Anchor   Point `json:"anchor"`
	Current  Point `json:"current"`
	Original Rect  `json:"original"`
}

// Active reports whether a drag is in progress.
func (s *Session) Active() bool {
	return s.Mode != ModeIdle
}

// DragRect returns the live axis-aligned box spanning anchor and
// current point of a create-drag.
func (s *Session) DragRect() Rect {
	return Span(s.Anchor, s.Current)
}

// TranslatedRect returns the original rectangle shifted by the drag
// delta, clamped per axis so the whole rectangle stays inside the
// frame. Width and height never change during a translate-drag.
func (s *Session) TranslatedRect() Rect {
	dx := s.Current.X - s.Anchor.X
	dy := s.Current.Y - s.Anchor.Y
	return Rect{
		X:      clampTo(s.Original.X+dx, 1-s.Original.Width),
		Y:      clampTo(s.Original.Y+dy, 1-s.Original.Height),
		Width:  s.Original.Width,
		Height: s.Original.Height,
	}
}

// reset returns the session to idle.
func (s *Session) reset() {
	*s = Session{}
}
