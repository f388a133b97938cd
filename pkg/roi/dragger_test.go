package roi

import "testing"

func newDraggerHarness(start Rect) (*Dragger, *harness) {
	h := &harness{rect: start}
	return NewDragger(h.committed, h.commit, h.repaint), h
}

func TestDragger_TranslateClampsToFrame(t *testing.T) {
	d, h := newDraggerHarness(Rect{X: 0.2, Y: 0.2, Width: 0.3, Height: 0.3})

	d.PointerDown(Point{0.3, 0.3})
	d.PointerMove(Point{0.9, 0.9}) // delta (0.6, 0.6)
	d.PointerUp(Point{0.9, 0.9})

	// Requested origin 0.8 exceeds the 1-0.3=0.7 bound on both axes, so
	// the rectangle pins flush against the bottom-right of the frame.
	got := h.commits
	if len(got) != 1 {
		t.Fatalf("commit count = %d, want 1", len(got))
	}
	if !floatEquals(got[0].X, 0.7) || !floatEquals(got[0].Y, 0.7) {
		t.Errorf("committed origin (%v, %v), want (0.7, 0.7)", got[0].X, got[0].Y)
	}
	if !floatEquals(got[0].Width, 0.3) || !floatEquals(got[0].Height, 0.3) {
		t.Errorf("size changed to %vx%v during a move", got[0].Width, got[0].Height)
	}
	if got[0].X+got[0].Width > 1+floatTolerance || got[0].Y+got[0].Height > 1+floatTolerance {
		t.Error("far edge must never exceed the frame")
	}
}

func TestDragger_FullFrameNotDraggable(t *testing.T) {
	d, h := newDraggerHarness(FullFrame())

	d.PointerDown(Point{0.5, 0.5})
	if d.Session().Active() {
		t.Error("full-frame rectangle must not start a drag")
	}
	d.PointerMove(Point{0.6, 0.6})
	d.PointerUp(Point{0.6, 0.6})

	if len(h.commits) != 0 {
		t.Errorf("commit count = %d, want 0", len(h.commits))
	}
}

func TestDragger_OutsidePointerDownIgnored(t *testing.T) {
	start := Rect{X: 0.2, Y: 0.2, Width: 0.3, Height: 0.3}
	d, h := newDraggerHarness(start)

	d.PointerDown(Point{0.8, 0.8})
	if d.Session().Active() {
		t.Error("pointer-down outside the rectangle must not start a drag")
	}
	d.PointerUp(Point{0.9, 0.9})

	if len(h.commits) != 0 {
		t.Errorf("commit count = %d, want 0", len(h.commits))
	}
	if !rectEquals(h.rect, start) {
		t.Errorf("rect changed to %v, want unchanged %v", h.rect, start)
	}
}

func TestDragger_IntermediateMovesDoNotCommit(t *testing.T) {
	d, h := newDraggerHarness(Rect{X: 0.2, Y: 0.2, Width: 0.3, Height: 0.3})

	d.PointerDown(Point{0.3, 0.3})
	d.PointerMove(Point{0.35, 0.35})
	d.PointerMove(Point{0.4, 0.4})
	d.PointerMove(Point{0.45, 0.45})

	if len(h.commits) != 0 {
		t.Fatalf("moves committed %d times, want 0 before release", len(h.commits))
	}
	if h.repaints != 4 {
		t.Errorf("repaints = %d, want 4 (down + three moves)", h.repaints)
	}

	d.PointerUp(Point{0.45, 0.45})
	if len(h.commits) != 1 {
		t.Errorf("commit count after release = %d, want 1", len(h.commits))
	}
}

func TestDragger_NegativeDeltaClampsAtOrigin(t *testing.T) {
	d, h := newDraggerHarness(Rect{X: 0.1, Y: 0.1, Width: 0.3, Height: 0.3})

	d.PointerDown(Point{0.2, 0.2})
	d.PointerUp(Point{-0.5, -0.5})

	if len(h.commits) != 1 {
		t.Fatalf("commit count = %d, want 1", len(h.commits))
	}
	got := h.commits[0]
	if !floatEquals(got.X, 0) || !floatEquals(got.Y, 0) {
		t.Errorf("committed origin (%v, %v), want (0, 0)", got.X, got.Y)
	}
	if !got.Valid() {
		t.Error("committed rectangle must satisfy the invariants")
	}
}

func TestDragger_Hover(t *testing.T) {
	d, _ := newDraggerHarness(Rect{X: 0.2, Y: 0.2, Width: 0.3, Height: 0.3})

	if c := d.Hover(Point{0.3, 0.3}); c != CursorMove {
		t.Errorf("inside rect: cursor = %v, want move", c)
	}
	if c := d.Hover(Point{0.8, 0.8}); c != CursorDefault {
		t.Errorf("outside rect: cursor = %v, want default", c)
	}

	full, _ := newDraggerHarness(FullFrame())
	if c := full.Hover(Point{0.5, 0.5}); c != CursorDefault {
		t.Errorf("full frame: cursor = %v, want default", c)
	}
}

func TestDragger_RoundTripMembership(t *testing.T) {
	// A rectangle committed via the primary selector agrees with the
	// dragger's bounds check on membership for the same point.
	s, h := newSelectorHarness()
	s.PointerDown(Point{0.2, 0.2})
	s.PointerUp(Point{0.5, 0.5})

	d := NewDragger(h.committed, h.commit, nil)
	probes := []struct {
		p    Point
		want bool
	}{
		{Point{0.2, 0.2}, true},
		{Point{0.35, 0.35}, true},
		{Point{0.5, 0.5}, true},
		{Point{0.55, 0.35}, false},
		{Point{0.1, 0.1}, false},
	}
	for _, tc := range probes {
		if got := h.rect.Contains(tc.p); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
		}
		// Eligibility mirrors membership: only inside points start a drag.
		d.Cancel()
		d.PointerDown(tc.p)
		if got := d.Session().Active(); got != tc.want {
			t.Errorf("drag eligibility at %v = %v, want %v", tc.p, got, tc.want)
		}
	}
}
