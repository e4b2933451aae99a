// Package canvas paints a positioned module graph onto a raster surface.
//
// Every frame is a full redraw in four steps: clear to the background, draw
// a two-tier grid that pans with the viewport, draw parent-to-child edges as
// cubic curves, then draw each node as a rounded box colored by its access
// state. Hovered nodes are drawn slightly larger and the selected node gets
// an extra outer ring.
//
// All geometry is computed in logical pixels and multiplied by the pixel
// ratio only when painting, so hit-testing and viewport math never see
// device pixels.
//
//	r := canvas.New(canvas.WithPixelRatio(2))
//	img := r.Frame(canvas.Scene{Graph: g, Transform: t}, 800, 600)
//	err := canvas.WritePNG(w, img)
//
// A [Renderer] is not safe for concurrent use.
package canvas
