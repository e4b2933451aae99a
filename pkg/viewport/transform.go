package viewport

import "math"

// Point is a 2D position. Whether it is in world or screen coordinates
// depends on context.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Len returns the distance of p from the origin.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Size is a viewport size in logical pixels.
type Size struct {
	W, H float64
}

// Empty reports whether the size has no drawable area.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Scale limits and zoom steps.
const (
	MinScale     = 0.3
	MaxScale     = 2.0
	WheelFactor  = 1.1
	ButtonFactor = 1.2
)

// Clamp limits s to [MinScale, MaxScale].
func Clamp(s float64) float64 {
	return min(max(s, MinScale), MaxScale)
}

// Transform maps world coordinates to screen coordinates:
// screen = world*Scale + Translate.
type Transform struct {
	Scale     float64
	Translate Point
}

// Identity returns the unit transform.
func Identity() Transform { return Transform{Scale: 1} }

func (t Transform) WorldToScreen(p Point) Point {
	return Point{p.X*t.Scale + t.Translate.X, p.Y*t.Scale + t.Translate.Y}
}

func (t Transform) ScreenToWorld(p Point) Point {
	return Point{(p.X - t.Translate.X) / t.Scale, (p.Y - t.Translate.Y) / t.Scale}
}

// Len scales a world length to screen pixels.
func (t Transform) Len(v float64) float64 { return v * t.Scale }

// Percent returns the scale as a rounded percentage.
func (t Transform) Percent() int { return int(math.Round(t.Scale * 100)) }
