package roi

// PointerEvent is the single abstract input shape fed to the state
// machines. Mouse and touch input are adapted to it before mapping, so
// the machines never see modality-specific event types.
type PointerEvent struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// Touch is one active touch point as reported by the client.
type Touch struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// FromMouse adapts mouse coordinates to a PointerEvent.
func FromMouse(clientX, clientY float64) PointerEvent {
	return PointerEvent{ClientX: clientX, ClientY: clientY}
}

// FromTouch adapts a touch list to a PointerEvent using the first
// active touch point. Additional touch points are ignored; there is no
// multi-touch support. ok is false when the list is empty.
func FromTouch(touches []Touch) (ev PointerEvent, ok bool) {
	if len(touches) == 0 {
		return PointerEvent{}, false
	}
	first := touches[0]
	return PointerEvent{ClientX: first.ClientX, ClientY: first.ClientY}, true
}

// Bounds is the rendered bounding box of an overlay element in device
// pixels: position of its top-left corner plus its size.
type Bounds struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Map converts a pointer event within bounds to a normalized point.
// It never clamps; clamping policy belongs to the caller (create-drags
// clamp each coordinate, move-drags clamp the whole rectangle).
func Map(ev PointerEvent, b Bounds) Point {
	return Point{
		X: (ev.ClientX - b.Left) / b.Width,
		Y: (ev.ClientY - b.Top) / b.Height,
	}
}
