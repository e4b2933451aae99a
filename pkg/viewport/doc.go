// Package viewport owns the pan/zoom transform of the tree canvas and the
// gesture state machine that drives it.
//
// A [Controller] is in exactly one [Mode] at a time:
//
//	Idle ──press──▶ Panning ──release──▶ Idle (or a click, if it barely moved)
//	Idle/Panning ──second touch──▶ Pinching ──all touches up──▶ Idle
//	                               Pinching ──one touch left──▶ Panning
//
// Mouse and touch input are mutually exclusive: while a gesture from one
// source is active, events from the other are ignored.
//
// Wheel and button zoom act outside the state machine. Zoom keeps the
// translation unchanged, so it is anchored at the viewport origin rather
// than the cursor or the pinch midpoint. Scale is clamped to
// [MinScale, MaxScale] on every update.
//
// A Controller is not safe for concurrent use; it is meant to be driven from
// one event loop.
package viewport
