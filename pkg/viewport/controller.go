package viewport

import "slices"

// Mode is the gesture state.
type Mode int

const (
	Idle Mode = iota
	Panning
	Pinching
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	}
	return "unknown"
}

// Source identifies the device that owns the active gesture.
type Source int

const (
	SourceNone Source = iota
	SourceMouse
	SourceTouch
)

// Click slop: a press released after moving less than this many pixels is a
// click rather than a pan.
const (
	PointerClickSlop = 5
	TouchClickSlop   = 10
)

// Home placement.
const (
	HomeTopFraction = 0.2
)

// DefaultTranslate is the translation used when there is nothing to center on.
var DefaultTranslate = Point{X: 100, Y: 50}

// HitFunc returns the id of the node under a screen point.
type HitFunc func(screen Point) (string, bool)

// Result reports what an input event changed.
type Result struct {
	// Redraw is set when the transform, hover or selection changed.
	Redraw bool
	// Click is set when a press was released as a click. ClickID is the node
	// under ClickAt, or empty if the click hit the background.
	Click   bool
	ClickAt Point
	ClickID string
}

// State is a snapshot of the controller.
type State struct {
	Transform      Transform
	Mode           Mode
	Source         Source
	ActivePointers int
	HoveredID      string
	SelectedID     string
	// PinchCenter is the midpoint of the two touches when the current pinch
	// began. It is zero outside a pinch.
	PinchCenter Point
}

// Dragging reports whether a gesture is moving the viewport.
func (s State) Dragging() bool { return s.Mode != Idle }

type touch struct {
	id  int
	pos Point
}

// Controller owns the viewport transform and gesture state.
type Controller struct {
	t   Transform
	hit HitFunc

	mode   Mode
	source Source
	last   Point
	moved  float64
	tap    bool

	mouseDown bool
	touches   []touch
	pinchDist float64
	pinchMid  Point

	hovered  string
	selected string
}

// Option configures a Controller.
type Option func(*Controller)

// WithHitFunc sets the hit tester used for clicks and hover.
func WithHitFunc(f HitFunc) Option {
	return func(c *Controller) { c.hit = f }
}

// WithTransform sets the initial transform. The scale is clamped.
func WithTransform(t Transform) Option {
	return func(c *Controller) {
		t.Scale = Clamp(t.Scale)
		c.t = t
	}
}

// New returns an idle controller at scale 1 and the default translation.
func New(opts ...Option) *Controller {
	c := &Controller{t: Transform{Scale: 1, Translate: DefaultTranslate}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetHitFunc replaces the hit tester.
func (c *Controller) SetHitFunc(f HitFunc) { c.hit = f }

func (c *Controller) Transform() Transform { return c.t }

// SetTransform replaces the transform, clamping its scale.
func (c *Controller) SetTransform(t Transform) bool {
	t.Scale = Clamp(t.Scale)
	if t == c.t {
		return false
	}
	c.t = t
	return true
}

func (c *Controller) Mode() Mode { return c.mode }

func (c *Controller) State() State {
	active := len(c.touches)
	if c.mouseDown {
		active++
	}
	return State{
		Transform:      c.t,
		Mode:           c.mode,
		Source:         c.source,
		ActivePointers: active,
		HoveredID:      c.hovered,
		SelectedID:     c.selected,
		PinchCenter:    c.pinchMid,
	}
}

func (c *Controller) Hovered() string  { return c.hovered }
func (c *Controller) Selected() string { return c.selected }

// SetHovered changes the hovered node and reports whether it changed.
func (c *Controller) SetHovered(id string) bool {
	if c.hovered == id {
		return false
	}
	c.hovered = id
	return true
}

// SetSelected changes the selected node and reports whether it changed.
func (c *Controller) SetSelected(id string) bool {
	if c.selected == id {
		return false
	}
	c.selected = id
	return true
}

// =============================================================================
// Mouse
// =============================================================================

// PointerDown starts a pan. It is ignored while a touch gesture is active.
func (c *Controller) PointerDown(p Point) Result {
	if c.mode != Idle {
		return Result{}
	}
	c.mouseDown = true
	c.beginPan(SourceMouse, p)
	return Result{}
}

// PointerMove pans while the mouse is pressed and tracks hover otherwise.
func (c *Controller) PointerMove(p Point) Result {
	switch {
	case c.mode == Panning && c.source == SourceMouse:
		return c.panTo(p, PointerClickSlop)
	case c.mode == Idle:
		return Result{Redraw: c.SetHovered(c.hitID(p))}
	}
	return Result{}
}

// PointerUp ends a mouse pan. A release that moved less than
// PointerClickSlop is reported as a click at p.
func (c *Controller) PointerUp(p Point) Result {
	if !c.mouseDown || c.source != SourceMouse {
		return Result{}
	}
	c.mouseDown = false
	res := c.release(p, PointerClickSlop)
	c.reset()
	return res
}

// PointerLeave ends any mouse pan without a click and clears hover.
func (c *Controller) PointerLeave() Result {
	if c.mouseDown && c.source == SourceMouse {
		c.mouseDown = false
		c.reset()
	}
	return Result{Redraw: c.SetHovered("")}
}

// =============================================================================
// Touch
// =============================================================================

// TouchStart registers a new touch point. One touch starts a pan; a second
// starts a pinch.
func (c *Controller) TouchStart(id int, p Point) Result {
	if c.source == SourceMouse || c.touchIndex(id) >= 0 {
		return Result{}
	}
	c.touches = append(c.touches, touch{id: id, pos: p})
	if len(c.touches) == 1 {
		c.beginPan(SourceTouch, p)
		return Result{}
	}
	c.beginPinch()
	return Result{}
}

// TouchMove updates a touch point and pans or pinches.
func (c *Controller) TouchMove(id int, p Point) Result {
	i := c.touchIndex(id)
	if i < 0 {
		return Result{}
	}
	c.touches[i].pos = p
	switch c.mode {
	case Panning:
		if i != 0 {
			return Result{}
		}
		return c.panTo(p, TouchClickSlop)
	case Pinching:
		if i > 1 {
			return Result{}
		}
		d := c.touchDistance()
		res := Result{}
		if c.pinchDist > 0 {
			res.Redraw = c.setScale(c.t.Scale * d / c.pinchDist)
		}
		c.pinchDist = d
		return res
	}
	return Result{}
}

// TouchEnd removes a touch point. Releasing the only touch of an unmoved
// single-finger gesture is reported as a click at p.
func (c *Controller) TouchEnd(id int, p Point) Result {
	i := c.touchIndex(id)
	if i < 0 {
		return Result{}
	}
	c.touches = slices.Delete(c.touches, i, i+1)

	switch len(c.touches) {
	case 0:
		res := Result{}
		if c.mode == Panning {
			res = c.release(p, TouchClickSlop)
		}
		c.reset()
		return res
	case 1:
		// Resume a single-finger pan from the remaining touch. The gesture
		// can no longer become a click.
		c.mode = Panning
		c.last = c.touches[0].pos
		c.tap = false
		c.pinchDist = 0
		c.pinchMid = Point{}
	default:
		c.beginPinch()
	}
	return Result{}
}

// TouchCancel drops every touch point and returns to Idle without a click.
func (c *Controller) TouchCancel() Result {
	if c.source == SourceTouch {
		c.reset()
	}
	return Result{}
}

// =============================================================================
// Zoom
// =============================================================================

// Wheel zooms by WheelFactor: in for negative deltaY, out for positive. A
// zero delta is ignored.
func (c *Controller) Wheel(deltaY float64) Result {
	switch {
	case deltaY < 0:
		return Result{Redraw: c.setScale(c.t.Scale * WheelFactor)}
	case deltaY > 0:
		return Result{Redraw: c.setScale(c.t.Scale / WheelFactor)}
	}
	return Result{}
}

// ZoomIn multiplies the scale by ButtonFactor.
func (c *Controller) ZoomIn() Result {
	return Result{Redraw: c.setScale(c.t.Scale * ButtonFactor)}
}

// ZoomOut divides the scale by ButtonFactor.
func (c *Controller) ZoomOut() Result {
	return Result{Redraw: c.setScale(c.t.Scale / ButtonFactor)}
}

// PanBy shifts the translation by d screen pixels.
func (c *Controller) PanBy(d Point) Result {
	if d == (Point{}) {
		return Result{}
	}
	c.t.Translate = c.t.Translate.Add(d)
	return Result{Redraw: true}
}

// Home resets the scale to 1 and moves the world point anchor to the
// horizontal center of view, HomeTopFraction of the way down.
func (c *Controller) Home(view Size, anchor Point) Result {
	return Result{Redraw: c.SetTransform(Transform{
		Scale: 1,
		Translate: Point{
			X: view.W/2 - anchor.X,
			Y: view.H*HomeTopFraction - anchor.Y,
		},
	})}
}

// Reset restores scale 1 and DefaultTranslate.
func (c *Controller) Reset() Result {
	return Result{Redraw: c.SetTransform(Transform{Scale: 1, Translate: DefaultTranslate})}
}

// =============================================================================
// Internals
// =============================================================================

func (c *Controller) beginPan(src Source, p Point) {
	c.mode = Panning
	c.source = src
	c.last = p
	c.moved = 0
	c.tap = true
}

func (c *Controller) beginPinch() {
	c.mode = Pinching
	c.tap = false
	c.pinchDist = c.touchDistance()
	a, b := c.touches[0].pos, c.touches[1].pos
	c.pinchMid = Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

func (c *Controller) panTo(p Point, slop float64) Result {
	d := p.Sub(c.last)
	c.last = p
	if d == (Point{}) {
		return Result{}
	}
	c.moved += d.Len()
	if c.moved >= slop {
		c.tap = false
	}
	c.t.Translate = c.t.Translate.Add(d)
	return Result{Redraw: true}
}

func (c *Controller) release(p Point, slop float64) Result {
	if !c.tap || c.moved >= slop {
		return Result{}
	}
	return Result{Click: true, ClickAt: p, ClickID: c.hitID(p)}
}

func (c *Controller) reset() {
	c.mode = Idle
	c.source = SourceNone
	c.touches = c.touches[:0]
	c.moved = 0
	c.tap = false
	c.pinchDist = 0
	c.pinchMid = Point{}
}

func (c *Controller) setScale(s float64) bool {
	s = Clamp(s)
	if s == c.t.Scale {
		return false
	}
	c.t.Scale = s
	return true
}

func (c *Controller) touchIndex(id int) int {
	return slices.IndexFunc(c.touches, func(t touch) bool { return t.id == id })
}

func (c *Controller) touchDistance() float64 {
	if len(c.touches) < 2 {
		return 0
	}
	return c.touches[0].pos.Sub(c.touches[1].pos).Len()
}

func (c *Controller) hitID(p Point) string {
	if c.hit == nil {
		return ""
	}
	id, ok := c.hit(p)
	if !ok {
		return ""
	}
	return id
}
