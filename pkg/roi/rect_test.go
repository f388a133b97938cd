package roi

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func rectEquals(a, b Rect) bool {
	return floatEquals(a.X, b.X) && floatEquals(a.Y, b.Y) &&
		floatEquals(a.Width, b.Width) && floatEquals(a.Height, b.Height)
}

func TestFullFrame_Sentinel(t *testing.T) {
	ff := FullFrame()
	if !ff.IsFullFrame() {
		t.Error("FullFrame() should report IsFullFrame")
	}
	if !ff.Valid() {
		t.Error("FullFrame() should be valid")
	}

	almost := Rect{X: 0, Y: 0, Width: 0.999, Height: 1}
	if almost.IsFullFrame() {
		t.Error("near-full rectangle must not be treated as the sentinel")
	}
}

func TestRect_Valid(t *testing.T) {
	cases := []struct {
		name string
		r    Rect
		want bool
	}{
		{"interior", Rect{0.1, 0.1, 0.4, 0.4}, true},
		{"full frame", Rect{0, 0, 1, 1}, true},
		{"touching far edge", Rect{0.5, 0.5, 0.5, 0.5}, true},
		{"negative origin", Rect{-0.1, 0.1, 0.4, 0.4}, false},
		{"zero width", Rect{0.1, 0.1, 0, 0.4}, false},
		{"zero height", Rect{0.1, 0.1, 0.4, 0}, false},
		{"overflow x", Rect{0.8, 0.1, 0.4, 0.4}, false},
		{"overflow y", Rect{0.1, 0.8, 0.4, 0.4}, false},
	}
	for _, tc := range cases {
		if got := tc.r.Valid(); got != tc.want {
			t.Errorf("%s: Valid() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 0.2, Y: 0.2, Width: 0.3, Height: 0.3}

	inside := []Point{{0.2, 0.2}, {0.5, 0.5}, {0.35, 0.35}, {0.2, 0.5}}
	for _, p := range inside {
		if !r.Contains(p) {
			t.Errorf("Contains(%v) = false, want true", p)
		}
	}

	outside := []Point{{0.19, 0.3}, {0.51, 0.3}, {0.3, 0.19}, {0.3, 0.51}}
	for _, p := range outside {
		if r.Contains(p) {
			t.Errorf("Contains(%v) = true, want false", p)
		}
	}
}

func TestSpan_Orientation(t *testing.T) {
	// Span must be orientation-independent: dragging up-left and
	// down-right across the same corners yields the same box.
	a := Point{0.7, 0.6}
	b := Point{0.2, 0.1}

	want := Rect{X: 0.2, Y: 0.1, Width: 0.5, Height: 0.5}
	if got := Span(a, b); !rectEquals(got, want) {
		t.Errorf("Span(%v, %v) = %v, want %v", a, b, got, want)
	}
	if got := Span(b, a); !rectEquals(got, want) {
		t.Errorf("Span(%v, %v) = %v, want %v", b, a, got, want)
	}
}

func TestMap_Normalizes(t *testing.T) {
	b := Bounds{Left: 100, Top: 50, Width: 640, Height: 480}

	p := Map(PointerEvent{ClientX: 420, ClientY: 290}, b)
	if !floatEquals(p.X, 0.5) || !floatEquals(p.Y, 0.5) {
		t.Errorf("center mapped to %v, want (0.5, 0.5)", p)
	}

	// Mapping never clamps: a pointer outside the element produces
	// out-of-range coordinates for the caller to police.
	p = Map(PointerEvent{ClientX: 0, ClientY: 0}, b)
	if p.X >= 0 || p.Y >= 0 {
		t.Errorf("out-of-bounds pointer mapped to %v, want negative coords", p)
	}
}

func TestFromTouch_FirstTouchWins(t *testing.T) {
	if _, ok := FromTouch(nil); ok {
		t.Error("empty touch list should not produce an event")
	}

	ev, ok := FromTouch([]Touch{{ClientX: 10, ClientY: 20}, {ClientX: 99, ClientY: 99}})
	if !ok {
		t.Fatal("expected an event from a non-empty touch list")
	}
	if ev.ClientX != 10 || ev.ClientY != 20 {
		t.Errorf("got %v, want the first touch point", ev)
	}
}
