package viewport

import (
	"math"
	"testing"
)

// box hit-tests a single node at screen rect (0,0)-(100,50).
func box(p Point) (string, bool) {
	if p.X >= 0 && p.X <= 100 && p.Y >= 0 && p.Y <= 50 {
		return "node", true
	}
	return "", false
}

func TestPointerClick(t *testing.T) {
	tests := []struct {
		name    string
		moves   []Point
		up      Point
		click   bool
		clickID string
	}{
		{"no movement on node", nil, Point{10, 10}, true, "node"},
		{"small movement", []Point{{12, 11}, {13, 12}}, Point{13, 12}, true, "node"},
		{"background", nil, Point{300, 300}, true, ""},
		{"moved past slop", []Point{{20, 10}}, Point{20, 10}, false, ""},
		{"back and forth accumulates", []Point{{13, 10}, {10, 10}}, Point{10, 10}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(WithHitFunc(box))
			c.PointerDown(Point{10, 10})
			for _, p := range tt.moves {
				c.PointerMove(p)
			}
			res := c.PointerUp(tt.up)
			if res.Click != tt.click || res.ClickID != tt.clickID {
				t.Errorf("PointerUp = %+v, want click=%v id=%q", res, tt.click, tt.clickID)
			}
			if c.Mode() != Idle {
				t.Errorf("Mode() = %v, want idle", c.Mode())
			}
		})
	}
}

func TestPointerPan(t *testing.T) {
	c := New()
	start := c.Transform().Translate
	c.PointerDown(Point{0, 0})
	if c.Mode() != Panning {
		t.Fatalf("Mode() = %v", c.Mode())
	}
	if res := c.PointerMove(Point{30, -10}); !res.Redraw {
		t.Error("pan should request redraw")
	}
	c.PointerUp(Point{30, -10})

	want := start.Add(Point{30, -10})
	if got := c.Transform().Translate; got != want {
		t.Errorf("Translate = %+v, want %+v", got, want)
	}
}

func TestPointerLeaveEndsPanWithoutClick(t *testing.T) {
	c := New(WithHitFunc(box))
	c.PointerMove(Point{10, 10})
	c.PointerDown(Point{10, 10})
	res := c.PointerLeave()
	if res.Click {
		t.Error("leave must not click")
	}
	if !res.Redraw || c.Hovered() != "" {
		t.Error("leave should clear hover")
	}
	if c.Mode() != Idle {
		t.Errorf("Mode() = %v", c.Mode())
	}
	if res := c.PointerUp(Point{10, 10}); res.Click {
		t.Error("release after leave must not click")
	}
}

func TestHover(t *testing.T) {
	c := New(WithHitFunc(box))
	if res := c.PointerMove(Point{5, 5}); !res.Redraw || c.Hovered() != "node" {
		t.Errorf("hover enter: %+v hovered=%q", res, c.Hovered())
	}
	if res := c.PointerMove(Point{6, 6}); res.Redraw {
		t.Error("hover on same node should not redraw")
	}
	if res := c.PointerMove(Point{500, 5}); !res.Redraw || c.Hovered() != "" {
		t.Errorf("hover exit: %+v", res)
	}
}

func TestTouchTap(t *testing.T) {
	c := New(WithHitFunc(box))
	c.TouchStart(1, Point{10, 10})
	c.TouchMove(1, Point{16, 14}) // 7.2px, under touch slop
	res := c.TouchEnd(1, Point{16, 14})
	if !res.Click || res.ClickID != "node" {
		t.Errorf("TouchEnd = %+v, want click on node", res)
	}
}

func TestTouchPanPastSlop(t *testing.T) {
	c := New(WithHitFunc(box))
	c.TouchStart(1, Point{10, 10})
	c.TouchMove(1, Point{22, 10})
	if res := c.TouchEnd(1, Point{22, 10}); res.Click {
		t.Error("12px touch drag should not click")
	}
}

func TestPinch(t *testing.T) {
	c := New(WithHitFunc(box))
	before := c.Transform().Translate

	c.TouchStart(1, Point{0, 0})
	c.TouchStart(2, Point{100, 0})
	if c.Mode() != Pinching {
		t.Fatalf("Mode() = %v, want pinching", c.Mode())
	}
	if got := c.State().PinchCenter; got != (Point{50, 0}) {
		t.Errorf("PinchCenter = %+v", got)
	}
	if res := c.TouchMove(2, Point{150, 0}); !res.Redraw {
		t.Error("pinch should redraw")
	}
	if got := c.Transform().Scale; math.Abs(got-1.5) > 1e-9 {
		t.Errorf("Scale = %g, want 1.5", got)
	}
	if c.Transform().Translate != before {
		t.Error("pinch must not change translation")
	}

	// Lift one finger: resume panning with the other, no click afterwards.
	c.TouchEnd(2, Point{150, 0})
	if c.Mode() != Panning {
		t.Fatalf("Mode() = %v, want panning", c.Mode())
	}
	c.TouchMove(1, Point{1, 1})
	if got := c.Transform().Translate; got != before.Add(Point{1, 1}) {
		t.Errorf("Translate = %+v", got)
	}
	if res := c.TouchEnd(1, Point{1, 1}); res.Click {
		t.Error("gesture that pinched must not click")
	}
	if c.Mode() != Idle {
		t.Errorf("Mode() = %v", c.Mode())
	}
}

func TestPinchClamps(t *testing.T) {
	c := New()
	c.TouchStart(1, Point{0, 0})
	c.TouchStart(2, Point{10, 0})
	c.TouchMove(2, Point{1000, 0})
	if got := c.Transform().Scale; got != MaxScale {
		t.Errorf("Scale = %g, want %g", got, MaxScale)
	}
	c.TouchMove(2, Point{1, 0})
	if got := c.Transform().Scale; got != MinScale {
		t.Errorf("Scale = %g, want %g", got, MinScale)
	}
}

func TestTouchCancel(t *testing.T) {
	c := New(WithHitFunc(box))
	c.TouchStart(1, Point{10, 10})
	c.TouchCancel()
	if c.Mode() != Idle || c.State().ActivePointers != 0 {
		t.Errorf("state after cancel = %+v", c.State())
	}
	if res := c.TouchEnd(1, Point{10, 10}); res.Click {
		t.Error("end after cancel must not click")
	}
}

func TestMouseAndTouchExclusive(t *testing.T) {
	c := New(WithHitFunc(box))
	c.PointerDown(Point{10, 10})
	c.TouchStart(1, Point{50, 50})
	if c.State().Source != SourceMouse || c.State().ActivePointers != 1 {
		t.Errorf("touch during mouse pan should be ignored: %+v", c.State())
	}
	c.PointerUp(Point{10, 10})

	c.TouchStart(1, Point{10, 10})
	c.PointerDown(Point{20, 20})
	if res := c.PointerUp(Point{20, 20}); res.Click {
		t.Error("mouse release during touch gesture must be ignored")
	}
	if c.State().Source != SourceTouch {
		t.Errorf("Source = %v", c.State().Source)
	}
}

func TestWheel(t *testing.T) {
	c := New()
	tr := c.Transform().Translate

	if res := c.Wheel(0); res.Redraw {
		t.Error("zero delta should be ignored")
	}
	c.Wheel(-1)
	if got := c.Transform().Scale; math.Abs(got-1.1) > 1e-9 {
		t.Errorf("Scale after wheel in = %g", got)
	}
	c.Wheel(3)
	if got := c.Transform().Scale; math.Abs(got-1) > 1e-9 {
		t.Errorf("Scale after wheel out = %g", got)
	}
	if c.Transform().Translate != tr {
		t.Error("wheel zoom must not change translation")
	}
	for range 50 {
		c.Wheel(-1)
	}
	if c.Transform().Scale != MaxScale {
		t.Errorf("Scale = %g, want clamp at %g", c.Transform().Scale, MaxScale)
	}
	if res := c.Wheel(-1); res.Redraw {
		t.Error("wheel at max should not redraw")
	}
}

func TestZoomButtons(t *testing.T) {
	c := New()
	c.ZoomIn()
	if got := c.Transform().Scale; math.Abs(got-1.2) > 1e-9 {
		t.Errorf("ZoomIn scale = %g", got)
	}
	c.ZoomOut()
	c.ZoomOut()
	if got := c.Transform().Scale; math.Abs(got-1/1.2) > 1e-9 {
		t.Errorf("ZoomOut scale = %g", got)
	}
}

func TestHome(t *testing.T) {
	c := New(WithTransform(Transform{Scale: 1.7, Translate: Point{-300, 20}}))
	// Root top-center in world coordinates.
	anchor := Point{X: 580, Y: 50}
	res := c.Home(Size{W: 800, H: 600}, anchor)
	if !res.Redraw {
		t.Error("Home should redraw")
	}
	tr := c.Transform()
	if tr.Scale != 1 {
		t.Errorf("Scale = %g", tr.Scale)
	}
	if got := tr.WorldToScreen(anchor); got != (Point{X: 400, Y: 120}) {
		t.Errorf("anchor on screen = %+v, want (400,120)", got)
	}
	if res := c.Home(Size{W: 800, H: 600}, anchor); res.Redraw {
		t.Error("second Home should be a no-op")
	}
}

func TestReset(t *testing.T) {
	c := New(WithTransform(Transform{Scale: 0.5}))
	c.Reset()
	if c.Transform() != (Transform{Scale: 1, Translate: DefaultTranslate}) {
		t.Errorf("Transform = %+v", c.Transform())
	}
}

func TestSelection(t *testing.T) {
	c := New()
	if !c.SetSelected("a") || c.SetSelected("a") {
		t.Error("SetSelected change reporting")
	}
	if c.State().SelectedID != "a" {
		t.Errorf("SelectedID = %q", c.State().SelectedID)
	}
}

func TestModeString(t *testing.T) {
	for m, want := range map[Mode]string{Idle: "idle", Panning: "panning", Pinching: "pinching", Mode(9): "unknown"} {
		if m.String() != want {
			t.Errorf("Mode(%d) = %q", int(m), m.String())
		}
	}
}
