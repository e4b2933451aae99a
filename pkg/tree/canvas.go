package tree

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/layout"
	"github.com/matzehuels/moduletree/pkg/render/canvas"
	"github.com/matzehuels/moduletree/pkg/viewport"
)

// Resizer is implemented by surfaces whose size the canvas controls.
type Resizer interface {
	Resize(w, h float64)
}

// Canvas is the interactive module tree.
type Canvas struct {
	renderer *canvas.Renderer
	surface  canvas.Surface
	vp       *viewport.Controller
	graph    *layout.Graph
	logger   *log.Logger

	size  viewport.Size
	homed bool

	onModuleClick       func(id string)
	onPurchaseRequested func(id string)
	onVisitRequested    func(slug string)
}

// Option configures a Canvas.
type Option func(*Canvas)

func WithRenderer(r *canvas.Renderer) Option { return func(c *Canvas) { c.renderer = r } }
func WithSurface(s canvas.Surface) Option    { return func(c *Canvas) { c.surface = s } }
func WithLogger(l *log.Logger) Option        { return func(c *Canvas) { c.logger = l } }

// WithViewport sets the controller. Its hit tester is replaced.
func WithViewport(vp *viewport.Controller) Option { return func(c *Canvas) { c.vp = vp } }

func OnModuleClick(f func(id string)) Option       { return func(c *Canvas) { c.onModuleClick = f } }
func OnPurchaseRequested(f func(id string)) Option { return func(c *Canvas) { c.onPurchaseRequested = f } }
func OnVisitRequested(f func(slug string)) Option  { return func(c *Canvas) { c.onVisitRequested = f } }

// New returns a canvas without a graph.
func New(opts ...Option) *Canvas {
	c := &Canvas{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.renderer == nil {
		c.renderer = canvas.New(canvas.WithLogger(c.logger))
	}
	if c.vp == nil {
		c.vp = viewport.New()
	}
	c.vp.SetHitFunc(c.hit)
	if c.surface != nil {
		c.size = c.surface.Size()
	}
	return c
}

func (c *Canvas) hit(p viewport.Point) (string, bool) {
	return canvas.HitTest(c.graph, c.vp.Transform(), p)
}

// Graph returns the current graph, or nil.
func (c *Canvas) Graph() *layout.Graph { return c.graph }

// Viewport returns a snapshot of the viewport state.
func (c *Canvas) Viewport() viewport.State { return c.vp.State() }

// ZoomPercent returns the current scale as a rounded percentage.
func (c *Canvas) ZoomPercent() int { return c.vp.Transform().Percent() }

// Scene returns what the next frame will show.
func (c *Canvas) Scene() canvas.Scene {
	st := c.vp.State()
	return canvas.Scene{
		Graph:      c.graph,
		Transform:  st.Transform,
		HoveredID:  st.HoveredID,
		SelectedID: st.SelectedID,
	}
}

// SetGraph replaces the graph. The first non-empty graph homes the
// viewport; later graphs keep the current pan and zoom. Hover and selection
// on ids that no longer exist are cleared.
func (c *Canvas) SetGraph(g *layout.Graph) bool {
	c.graph = g
	if _, ok := g.Node(c.vp.Hovered()); !ok {
		c.vp.SetHovered("")
	}
	if _, ok := g.Node(c.vp.Selected()); !ok {
		c.vp.SetSelected("")
	}
	if !c.homed && g.Len() > 0 && !c.size.Empty() {
		c.home()
		c.homed = true
	}
	return c.Redraw()
}

// Resize sets the container size and homes the viewport. A resize to the
// current size is ignored.
func (c *Canvas) Resize(w, h float64) bool {
	size := viewport.Size{W: w, H: h}
	if size == c.size {
		return false
	}
	c.size = size
	if r, ok := c.surface.(Resizer); ok {
		r.Resize(w, h)
	}
	if size.Empty() {
		return false
	}
	if c.graph.Len() > 0 {
		c.home()
		c.homed = true
	}
	return c.Redraw()
}

// Pointer handles a mouse event.
func (c *Canvas) Pointer(ev PointerEvent) bool {
	p := viewport.Point{X: ev.X, Y: ev.Y}
	switch ev.Kind {
	case PointerDown:
		return c.apply(c.vp.PointerDown(p))
	case PointerMove:
		return c.apply(c.vp.PointerMove(p))
	case PointerUp:
		return c.apply(c.vp.PointerUp(p))
	case PointerLeave:
		return c.apply(c.vp.PointerLeave())
	}
	return false
}

// Touch handles a touch event.
func (c *Canvas) Touch(ev TouchEvent) bool {
	p := viewport.Point{X: ev.X, Y: ev.Y}
	switch ev.Kind {
	case TouchStart:
		return c.apply(c.vp.TouchStart(ev.ID, p))
	case TouchMove:
		return c.apply(c.vp.TouchMove(ev.ID, p))
	case TouchEnd:
		return c.apply(c.vp.TouchEnd(ev.ID, p))
	case TouchCancel:
		return c.apply(c.vp.TouchCancel())
	}
	return false
}

// Wheel zooms in for negative deltaY and out for positive.
func (c *Canvas) Wheel(deltaY float64) bool { return c.apply(c.vp.Wheel(deltaY)) }

func (c *Canvas) ZoomIn() bool  { return c.apply(c.vp.ZoomIn()) }
func (c *Canvas) ZoomOut() bool { return c.apply(c.vp.ZoomOut()) }

// PanBy shifts the view by d logical pixels.
func (c *Canvas) PanBy(dx, dy float64) bool {
	return c.apply(c.vp.PanBy(viewport.Point{X: dx, Y: dy}))
}

// Home resets the viewport to the home transform.
func (c *Canvas) Home() bool {
	c.home()
	return c.Redraw()
}

func (c *Canvas) home() {
	root, ok := c.graph.FirstRoot()
	if !ok || c.size.Empty() {
		c.vp.Reset()
		return
	}
	cfg := c.graph.Config()
	c.vp.Home(c.size, viewport.Point{
		X: root.Position.X + cfg.NodeWidth/2,
		Y: root.Position.Y,
	})
}

// Select marks id as selected. An empty id clears the selection. Unknown
// ids return NOT_FOUND.
func (c *Canvas) Select(id string) error {
	if id != "" {
		if _, ok := c.graph.Node(id); !ok {
			return moduleNotFound(id)
		}
	}
	if c.vp.SetSelected(id) {
		c.Redraw()
	}
	return nil
}

// Preview returns the detail view of a module.
func (c *Canvas) Preview(id string) (Preview, error) {
	n, ok := c.graph.Node(id)
	if !ok {
		return Preview{}, moduleNotFound(id)
	}
	return NewPreview(n), nil
}

// RequestPurchase reports a purchase request for id.
func (c *Canvas) RequestPurchase(id string) error {
	if _, ok := c.graph.Node(id); !ok {
		return moduleNotFound(id)
	}
	c.logger.Debug("purchase requested", "module", id)
	if c.onPurchaseRequested != nil {
		c.onPurchaseRequested(id)
	}
	return nil
}

// RequestVisit resolves id to its slug and reports a visit request.
func (c *Canvas) RequestVisit(id string) (string, error) {
	n, ok := c.graph.Node(id)
	if !ok {
		return "", moduleNotFound(id)
	}
	c.logger.Debug("visit requested", "module", id, "slug", n.Slug)
	if c.onVisitRequested != nil {
		c.onVisitRequested(n.Slug)
	}
	return n.Slug, nil
}

// Redraw paints the current scene. It returns false when the surface is
// unavailable; the next state change or resize tries again.
func (c *Canvas) Redraw() bool {
	return c.renderer.Draw(c.surface, c.Scene())
}

func (c *Canvas) apply(res viewport.Result) bool {
	redraw := res.Redraw
	if res.Click && res.ClickID != "" {
		redraw = c.vp.SetSelected(res.ClickID) || redraw
		c.logger.Debug("module clicked", "module", res.ClickID)
		if c.onModuleClick != nil {
			c.onModuleClick(res.ClickID)
		}
	}
	if !redraw {
		return false
	}
	return c.Redraw()
}

func moduleNotFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "module %q not found", id)
}
