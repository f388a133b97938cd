package web

import (
	"encoding/json"

	"github.com/gofiber/websocket/v2"

	"github.com/linusw/asipanel/pkg/hub"
	"github.com/linusw/asipanel/pkg/roi"
)

// Pointer message types accepted on the roi feed.
const (
	evDown        = "down"
	evMove        = "move"
	evUp          = "up"
	evDoubleClick = "dblclick"
	evCancel      = "cancel"
	evHover       = "hover"
	evLayout      = "layout"
)

// PointerMessage is one client input event. Mouse events carry client
// coordinates directly; touch events carry the touch list and the
// first point wins. Every event carries the current element bounds so
// mapping never depends on stale layout.
type PointerMessage struct {
	Type    string      `json:"type"`
	Surface string      `json:"surface"`
	ClientX float64     `json:"clientX"`
	ClientY float64     `json:"clientY"`
	Touches []roi.Touch `json:"touches,omitempty"`
	Bounds  roi.Bounds  `json:"bounds"`
}

// point maps the message to normalized surface coordinates. ok is
// false for an empty touch list or degenerate bounds.
func (m *PointerMessage) point() (roi.Point, bool) {
	if m.Bounds.Width <= 0 || m.Bounds.Height <= 0 {
		return roi.Point{}, false
	}
	ev := roi.FromMouse(m.ClientX, m.ClientY)
	if len(m.Touches) > 0 {
		var ok bool
		if ev, ok = roi.FromTouch(m.Touches); !ok {
			return roi.Point{}, false
		}
	}
	return roi.Map(ev, m.Bounds), true
}

// handleROIWS serves the roi feed: inbound pointer events drive the
// selection machines, outbound messages are selection state updates.
func (s *Server) handleROIWS(c *websocket.Conn) {
	client := hub.NewClient(s.roiHub, c)
	client.OnMessage(func(data []byte) {
		var msg PointerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logc.Debug("bad pointer message", "err", err)
			return
		}
		s.panel.HandlePointer(msg)
	})

	// Push current state so a fresh client renders immediately.
	s.panel.publish()

	client.Run()
}

// handlePreviewWS serves the binary preview frame feed.
func (s *Server) handlePreviewWS(c *websocket.Conn) {
	hub.NewClient(s.previewHub, c).Run()
}

// handleStatusWS serves the status feed, seeding each new client with
// the current status.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	c.WriteJSON(s.camera.Status())
	hub.NewClient(s.statusHub, c).Run()
}

// HandlePointer routes one pointer message to the owning machine:
// create/replace gestures live on the preview, move gestures on the
// thumbnail.
func (p *Panel) HandlePointer(msg PointerMessage) {
	if msg.Type == evLayout {
		if surface := p.Surface(msg.Surface); surface != nil {
			surface.layout(msg.Bounds)
		}
		return
	}

	pt, ok := msg.point()
	if !ok {
		return
	}

	switch msg.Surface {
	case SurfacePreview:
		sel := p.Manager.Selector
		switch msg.Type {
		case evDown:
			sel.PointerDown(pt)
		case evMove:
			sel.PointerMove(pt)
		case evUp:
			sel.PointerUp(pt)
		case evDoubleClick:
			sel.DoubleClick()
		case evCancel:
			sel.Cancel()
		}

	case SurfaceThumbnail:
		drag := p.Manager.Dragger
		switch msg.Type {
		case evDown:
			drag.PointerDown(pt)
		case evMove:
			drag.PointerMove(pt)
		case evUp:
			drag.PointerUp(pt)
		case evHover:
			p.Hover(pt)
		case evCancel:
			drag.Cancel()
		}
	}
}
