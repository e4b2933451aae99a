// Package nodelink renders module trees as Graphviz node-link diagrams.
//
// The diagram is an alternative to the canvas view for documentation and
// reviews: Graphviz chooses the positions, and nodes carry the same state
// colors and captions as the canvas.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The generated DOT uses a top-to-bottom layout (rankdir=TB) with rounded
// boxes, matching the canvas orientation. Unreachable modules are drawn
// with a dashed outline.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package nodelink
