package web

import (
	"bytes"
	"image/png"
	"sync"

	"github.com/linusw/asipanel/pkg/hub"
	"github.com/linusw/asipanel/pkg/overlay"
	"github.com/linusw/asipanel/pkg/roi"
)

// Surface names used in pointer messages.
const (
	SurfacePreview   = "preview"
	SurfaceThumbnail = "thumbnail"
)

// surface couples one drawing target with its viewport and pipeline.
// The preview surface owns selection, the thumbnail owns dragging.
type surface struct {
	mu       sync.Mutex
	name     string
	style    overlay.Style
	viewport *overlay.Viewport
	canvas   *overlay.ImageCanvas
	pipeline *overlay.Pipeline

	lastRect    roi.Rect
	lastSession *roi.Session
}

func newSurface(name string, style overlay.Style) *surface {
	s := &surface{name: name, style: style}
	s.viewport = overlay.NewViewport(func(w, h int) {
		s.mu.Lock()
		s.canvas = overlay.NewImageCanvas(w, h)
		s.pipeline = overlay.New(s.canvas, s.style)
		s.mu.Unlock()
	})
	return s
}

// repaint re-renders the overlay for the current geometry. Safe to
// call before the first layout message; it becomes a no-op.
func (s *surface) repaint(committed roi.Rect, session *roi.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRect = committed
	s.lastSession = session
	if s.pipeline == nil {
		return
	}
	s.pipeline.Repaint(committed, session)
}

// layout applies new element bounds and re-renders at the new size.
func (s *surface) layout(b roi.Bounds) bool {
	changed := s.viewport.LayoutSettled(b)
	if changed {
		s.mu.Lock()
		rect, session := s.lastRect, s.lastSession
		pipeline := s.pipeline
		s.mu.Unlock()
		if pipeline != nil {
			pipeline.Repaint(rect, session)
		}
	}
	return changed
}

// OverlayPNG encodes the current overlay image.
func (s *surface) OverlayPNG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canvas == nil {
		return nil, errNoLayout
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.canvas.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Panel is the server-side selection panel: it owns the ROI manager,
// both interaction surfaces and the feed that pushes selection state
// to connected clients.
type Panel struct {
	Manager  *roi.Manager
	Notifier *roi.Notifier

	preview *surface
	thumb   *surface
	feed    *hub.Hub

	mu      sync.Mutex
	cursor  roi.Cursor
	preDrag *roi.Session
}

// RectState is pushed on the roi feed after every repaint and commit.
type RectState struct {
	Type      string   `json:"type"` // "roi"
	Rect      roi.Rect `json:"rect"`
	Mode      string   `json:"mode"`
	Cursor    string   `json:"cursor"`
	PixelText string   `json:"pixel_text"`
}

// NewPanel wires the selection machines to the two surfaces and the
// roi feed. cameraBase is the camera API base URL for the notifier.
func NewPanel(cameraBase string, feed *hub.Hub) *Panel {
	p := &Panel{
		preview: newSurface(SurfacePreview, overlay.DefaultStyle()),
		thumb:   newSurface(SurfaceThumbnail, overlay.ThumbnailStyle()),
		feed:    feed,
	}

	p.Manager = roi.NewManager(
		func(committed roi.Rect, session *roi.Session) {
			p.preview.repaint(committed, session)
			p.noteDrag(session)
			p.publish()
		},
		func(committed roi.Rect, session *roi.Session) {
			p.thumb.repaint(committed, session)
			p.publish()
		},
	)

	p.Notifier = roi.NewNotifier(cameraBase)
	p.Manager.Subscribe(p.Notifier.ROIChanged)
	return p
}

// publish pushes the current selection state to all feed clients.
func (p *Panel) publish() {
	p.mu.Lock()
	cursor := p.cursor
	p.mu.Unlock()

	state := RectState{
		Type:      "roi",
		Rect:      p.Manager.Rect(),
		Mode:      p.mode(),
		Cursor:    cursor.String(),
		PixelText: p.Notifier.PixelText(),
	}
	if err := p.feed.BroadcastJSON(state); err != nil {
		logc.Warn("roi state broadcast failed", "err", err)
	}
}

func (p *Panel) mode() string {
	if s := p.Manager.Selector.Session(); s.Active() {
		return s.Mode.String()
	}
	if s := p.Manager.Dragger.Session(); s.Active() {
		return s.Mode.String()
	}
	return roi.ModeIdle.String()
}

// noteDrag snapshots the preview drag session for the feed renderer.
// The machines run on the websocket reader; the feed goroutine must
// not touch them directly.
func (p *Panel) noteDrag(session *roi.Session) {
	p.mu.Lock()
	if session == nil {
		p.preDrag = nil
	} else {
		copied := *session
		p.preDrag = &copied
	}
	p.mu.Unlock()
}

// DragSession returns a copy of the in-progress create-drag, or nil.
func (p *Panel) DragSession() *roi.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.preDrag == nil {
		return nil
	}
	copied := *p.preDrag
	return &copied
}

// Hover updates the thumbnail affordance cursor and pushes fresh state
// when it changes.
func (p *Panel) Hover(pt roi.Point) {
	c := p.Manager.Dragger.Hover(pt)
	p.mu.Lock()
	changed := c != p.cursor
	p.cursor = c
	p.mu.Unlock()
	if changed {
		p.publish()
	}
}

// Surface returns the named surface, or nil.
func (p *Panel) Surface(name string) *surface {
	switch name {
	case SurfacePreview:
		return p.preview
	case SurfaceThumbnail:
		return p.thumb
	}
	return nil
}
