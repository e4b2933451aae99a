// Package tree wires the layout, viewport and renderer into one interactive
// canvas.
//
// A [Canvas] receives a positioned graph, container resizes and raw input
// events. Every committed state change is followed by exactly one full
// redraw. Clicks that land on a node select it and are reported through the
// OnModuleClick callback; purchase and visit requests come from surrounding
// UI and are reported through their own callbacks.
//
// The viewport is homed (scale 1, first root centered near the top) on the
// first non-empty graph and again on every resize.
//
// A Canvas is driven from one event loop and is not safe for concurrent use.
package tree
