package canvas

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/moduletree/pkg/access"
	"github.com/matzehuels/moduletree/pkg/fonts"
	"github.com/matzehuels/moduletree/pkg/layout"
	"github.com/matzehuels/moduletree/pkg/viewport"
)

// Drawing constants in logical pixels, at scale 1.
const (
	GridSize       = 25
	GridBoldEvery  = 4
	EdgeWidth      = 2.0
	BorderRadius   = 6.0
	BorderWidth    = 2.0
	HoverScale     = 1.03
	SelectionGap   = 3.0
	TitleFontSize  = 13.0
	TitleMinSize   = 11.0
	TitleMaxLines  = 2
	TitlePadding   = 20.0
	CaptionSize    = 10.0
	CaptionMinSize = 9.0
	LineHeight     = 1.2
)

// Scene is everything a frame depends on.
type Scene struct {
	Graph      *layout.Graph
	Transform  viewport.Transform
	HoveredID  string
	SelectedID string
}

// Surface is a drawing target. A zero Size means the surface is not
// available and drawing is skipped.
type Surface interface {
	Size() viewport.Size
	Present(img *image.RGBA) error
}

// Renderer paints scenes.
type Renderer struct {
	palette    Palette
	labels     Labels
	pixelRatio float64
	logger     *log.Logger
	// faces holds *fonts.Cache values; each frame borrows one so
	// concurrent frames never share a font.Face.
	faces sync.Pool
}

// Option configures a Renderer.
type Option func(*Renderer)

func WithPalette(p Palette) Option { return func(r *Renderer) { r.palette = p } }
func WithLabels(l Labels) Option   { return func(r *Renderer) { r.labels = l } }

// WithPixelRatio sets the number of device pixels per logical pixel.
// Values <= 0 are ignored.
func WithPixelRatio(ratio float64) Option {
	return func(r *Renderer) {
		if ratio > 0 {
			r.pixelRatio = ratio
		}
	}
}

func WithLogger(l *log.Logger) Option { return func(r *Renderer) { r.logger = l } }

// New returns a renderer with the default palette and labels.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		palette:    DefaultPalette(),
		labels:     DefaultLabels(),
		pixelRatio: 1,
		logger:     log.Default(),
	}
	r.faces.New = func() any { return fonts.NewCache() }
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) PixelRatio() float64 { return r.pixelRatio }
func (r *Renderer) Labels() Labels      { return r.labels }

// Draw renders scene onto s. It returns false without drawing when the
// surface is nil or has no area, or when presenting fails.
func (r *Renderer) Draw(s Surface, scene Scene) bool {
	if s == nil {
		return false
	}
	size := s.Size()
	if size.Empty() {
		r.logger.Debug("skipping frame", "reason", "surface unavailable")
		return false
	}
	if err := s.Present(r.Frame(scene, size.W, size.H)); err != nil {
		r.logger.Debug("skipping frame", "reason", err)
		return false
	}
	return true
}

// Frame renders scene into a new image of w×h logical pixels.
func (r *Renderer) Frame(scene Scene, w, h float64) *image.RGBA {
	pw := max(1, int(math.Ceil(w*r.pixelRatio)))
	ph := max(1, int(math.Ceil(h*r.pixelRatio)))
	img := image.NewRGBA(image.Rect(0, 0, pw, ph))

	faces := r.faces.Get().(*fonts.Cache)
	defer r.faces.Put(faces)

	p := &painter{
		Renderer: r,
		faces:    faces,
		dc:       gg.NewContextForRGBA(img),
		ratio:    r.pixelRatio,
		w:        w,
		h:        h,
		t:        scene.Transform,
	}
	if p.t.Scale == 0 {
		p.t.Scale = 1
	}

	p.dc.SetColor(r.palette.Background)
	p.dc.Clear()
	p.grid()
	if scene.Graph != nil {
		p.edges(scene.Graph)
		for _, n := range scene.Graph.Nodes() {
			p.node(scene.Graph, n, n.ID == scene.HoveredID, n.ID == scene.SelectedID)
		}
	}
	return img
}

// NodeRect returns a node's screen-space box, ignoring hover growth.
func NodeRect(g *layout.Graph, t viewport.Transform, n *layout.Node) layout.Rect {
	cfg := g.Config()
	tl := t.WorldToScreen(viewport.Point{X: n.Position.X, Y: n.Position.Y})
	return layout.Rect{
		Min: layout.Point{X: tl.X, Y: tl.Y},
		Max: layout.Point{X: tl.X + t.Len(cfg.NodeWidth), Y: tl.Y + t.Len(cfg.NodeHeight)},
	}
}

// HitTest returns the id of the node whose screen box contains p.
func HitTest(g *layout.Graph, t viewport.Transform, p viewport.Point) (string, bool) {
	if g == nil {
		return "", false
	}
	for _, n := range g.Nodes() {
		r := NodeRect(g, t, n)
		if p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y {
			return n.ID, true
		}
	}
	return "", false
}

// Caption returns the status line drawn under a node's title.
func (r *Renderer) Caption(m access.Module) string { return r.labels.Caption(m) }

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// painter draws one frame. Inputs are logical pixels; px converts to device
// pixels at the last moment.
type painter struct {
	*Renderer
	faces *fonts.Cache
	dc    *gg.Context
	ratio float64
	w, h  float64
	t     viewport.Transform
}

func (p *painter) px(v float64) float64 { return v * p.ratio }

func (p *painter) grid() {
	step := GridSize * p.t.Scale
	p.gridLines(step, 0.5, p.palette.GridLine)
	p.gridLines(step*GridBoldEvery, 1, p.palette.GridLineSecondary)
}

func (p *painter) gridLines(step, width float64, c color.Color) {
	if step < 1 {
		return
	}
	p.dc.SetColor(c)
	p.dc.SetLineWidth(p.px(width))
	for x := math.Mod(p.t.Translate.X, step); x < p.w+step; x += step {
		p.dc.DrawLine(p.px(x), 0, p.px(x), p.px(p.h))
	}
	for y := math.Mod(p.t.Translate.Y, step); y < p.h+step; y += step {
		p.dc.DrawLine(0, p.px(y), p.px(p.w), p.px(y))
	}
	p.dc.Stroke()
}

func (p *painter) edges(g *layout.Graph) {
	p.dc.SetColor(p.palette.Connection)
	p.dc.SetLineWidth(p.px(EdgeWidth))
	for _, e := range g.Edges() {
		from := p.t.WorldToScreen(viewport.Point{X: e.Start.X, Y: e.Start.Y})
		to := p.t.WorldToScreen(viewport.Point{X: e.End.X, Y: e.End.Y})
		cy := from.Y + (to.Y-from.Y)*layout.EdgeCurve
		p.dc.MoveTo(p.px(from.X), p.px(from.Y))
		p.dc.CubicTo(p.px(from.X), p.px(cy), p.px(to.X), p.px(cy), p.px(to.X), p.px(to.Y))
		p.dc.Stroke()
	}
}

func (p *painter) node(g *layout.Graph, n *layout.Node, hovered, selected bool) {
	box := NodeRect(g, p.t, n)
	x, y, w, h := box.Min.X, box.Min.Y, box.Width(), box.Height()
	if hovered {
		dw, dh := w*HoverScale, h*HoverScale
		x -= (dw - w) / 2
		y -= (dh - h) / 2
		w, h = dw, dh
	}
	radius := BorderRadius * p.t.Scale
	style := p.palette.Style(n.State)

	p.dc.DrawRoundedRectangle(p.px(x), p.px(y), p.px(w), p.px(h), p.px(radius))
	p.dc.SetColor(style.Fill)
	p.dc.FillPreserve()
	p.dc.SetColor(style.Border)
	p.dc.SetLineWidth(p.px(BorderWidth))
	p.dc.Stroke()

	if selected {
		gap := SelectionGap
		p.dc.DrawRoundedRectangle(p.px(x-gap), p.px(y-gap), p.px(w+2*gap), p.px(h+2*gap), p.px(radius+gap))
		p.dc.SetColor(p.palette.Accent)
		p.dc.SetLineWidth(p.px(BorderWidth + 2))
		p.dc.Stroke()
	}

	cx := x + w/2

	size := max(TitleMinSize, TitleFontSize*p.t.Scale)
	lh := size * LineHeight
	face := p.face(fonts.Medium, size)
	lines := WrapText(n.Title, w-TitlePadding*p.t.Scale, TitleMaxLines, p.measure(face))
	p.dc.SetColor(style.Text)
	top := y + h/2 - lh/3 - float64(len(lines))*lh/2 + lh/2
	for i, line := range lines {
		p.dc.DrawStringAnchored(line, p.px(cx), p.px(top+float64(i)*lh), 0.5, 0.5)
	}

	csize := max(CaptionMinSize, CaptionSize*p.t.Scale)
	p.face(fonts.Regular, csize)
	p.dc.SetColor(style.Caption)
	p.dc.DrawStringAnchored(p.labels.Caption(n.Module), p.px(cx), p.px(y+h-csize*1.5), 0.5, 0.5)
}

// face selects a face of size logical pixels and returns it.
func (p *painter) face(w fonts.Weight, size float64) font.Face {
	f := p.faces.MustFace(w, p.px(size))
	p.dc.SetFontFace(f)
	return f
}

// measure returns a MeasureFunc in logical pixels for face.
func (p *painter) measure(face font.Face) MeasureFunc {
	return func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64 / p.ratio
	}
}
