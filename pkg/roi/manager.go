package roi

import (
	"sync"

	"github.com/linusw/asipanel/internal/log"
)

var logc = log.Component("roi")

// Manager owns the single canonical rectangle shared by both overlay
// widgets. The widgets hold read access and report proposed values
// upward; only the commit path below ever replaces the rectangle, and
// subscribers are notified exactly once per commit, never per
// intermediate drag frame.
type Manager struct {
	mu      sync.Mutex
	rect    Rect
	commits uint64
	subs    []func(Rect)

	// Selector is bound to the live-preview overlay.
	Selector *Selector
	// Dragger is bound to the settings-panel thumbnail overlay.
	Dragger *Dragger
}

// NewManager creates a manager holding the full-frame default and
// constructs both overlay state machines around it. previewRepaint and
// thumbRepaint may be nil when no rendering is attached (tests).
func NewManager(previewRepaint, thumbRepaint RepaintFunc) *Manager {
	m := &Manager{rect: FullFrame()}
	m.Selector = NewSelector(m.Rect, m.Commit, previewRepaint)
	m.Dragger = NewDragger(m.Rect, m.Commit, thumbRepaint)
	return m
}

// Rect returns the committed rectangle.
func (m *Manager) Rect() Rect {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rect
}

// CommitSeq returns the monotonic commit counter. Each successful
// commit increments it; responses to earlier commits can be recognized
// as stale by comparing counters.
func (m *Manager) CommitSeq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// Subscribe registers fn to be invoked once per committed rectangle.
func (m *Manager) Subscribe(fn func(Rect)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

// Commit atomically replaces the canonical rectangle and notifies
// subscribers. Rectangles violating the invariants are refused; the
// state machines never produce one, so a refusal indicates a caller
// bug and is logged.
func (m *Manager) Commit(r Rect) {
	if !r.Valid() {
		logc.Warn("refusing invalid rectangle", "rect", r)
		return
	}

	m.mu.Lock()
	m.rect = r
	m.commits++
	seq := m.commits
	subs := make([]func(Rect), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	logc.Debug("rect committed", "rect", r, "seq", seq)
	for _, fn := range subs {
		fn(r)
	}
}

// Reset commits the full-frame rectangle from any prior state. The
// change callback fires exactly once.
func (m *Manager) Reset() {
	m.Commit(FullFrame())
}
