package tree

// PointerKind is the kind of a mouse event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerLeave
)

// PointerEvent is a mouse event in logical pixels relative to the canvas.
type PointerEvent struct {
	Kind PointerKind
	X, Y float64
}

// TouchKind is the kind of a touch event.
type TouchKind int

const (
	TouchStart TouchKind = iota
	TouchMove
	TouchEnd
	TouchCancel
)

// TouchEvent is one changed touch point. ID identifies the finger for the
// duration of its contact.
type TouchEvent struct {
	Kind TouchKind
	ID   int
	X, Y float64
}
