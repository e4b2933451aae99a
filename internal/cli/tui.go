package cli

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/pipeline"
	"github.com/matzehuels/moduletree/pkg/render/canvas"
	"github.com/matzehuels/moduletree/pkg/tree"
)

// A terminal cell covers cellWidth x cellHeight logical pixels and shows
// two physical pixels stacked with a half block.
const (
	cellWidth  = 8
	cellHeight = 16
	panStep    = 40
	// wheelDelta is the deltaY of one wheel notch.
	wheelDelta = 100
	// chromeRows is the number of rows used by the status lines.
	chromeRows = 2
)

var (
	tuiHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	tuiStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	tuiErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Key Bindings
// =============================================================================

type keyMap struct {
	Quit     key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Home     key.Binding
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Visit    key.Binding
	Purchase key.Binding
	Reload   key.Binding
}

var exploreKeys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Home:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "home")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan")),
	Right:    key.NewBinding(key.WithKeys("right", "l")),
	Up:       key.NewBinding(key.WithKeys("up", "k")),
	Down:     key.NewBinding(key.WithKeys("down", "j")),
	Visit:    key.NewBinding(key.WithKeys("enter", "v"), key.WithHelp("enter", "visit")),
	Purchase: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "purchase")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Home, k.Left, k.Visit, k.Purchase, k.Reload, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// =============================================================================
// Messages
// =============================================================================

type stageMsg pipeline.Stage

type loadedMsg struct {
	res *pipeline.Result
	err error
}

// =============================================================================
// Explorer Model
// =============================================================================

// loader runs the pipeline for the explorer. send is set once the program
// exists and forwards stage transitions.
type loader struct {
	ctx    context.Context
	runner *pipeline.Runner
	opts   pipeline.Options
	send   func(tea.Msg)
}

func (l *loader) onStage(s pipeline.Stage) {
	if l.send != nil {
		l.send(stageMsg(s))
	}
}

func (l *loader) load() tea.Cmd {
	return func() tea.Msg {
		res, err := l.runner.Execute(l.ctx, l.opts)
		return loadedMsg{res: res, err: err}
	}
}

// exploreModel is the bubbletea model of `moduletree explore`.
type exploreModel struct {
	loader  *loader
	surface *canvas.ImageSurface
	canvas  *tree.Canvas
	labels  canvas.Labels
	keys    keyMap
	help    help.Model
	spin    spinner.Model

	cols, rows int
	loading    bool
	stage      pipeline.Stage
	status     string
	err        error
	clicked    string
}

func newExploreModel(l *loader, r *canvas.Renderer) *exploreModel {
	m := &exploreModel{
		loader:  l,
		loading: true,
		surface: canvas.NewImageSurface(0, 0),
		labels:  r.Labels(),
		keys:    exploreKeys,
		help:    help.New(),
		spin:    spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(styleIconSpinner)),
	}
	m.canvas = tree.New(
		tree.WithSurface(m.surface),
		tree.WithRenderer(r),
		tree.OnModuleClick(func(id string) { m.clicked = id }),
		tree.OnVisitRequested(func(slug string) { m.status = "visit /" + slug }),
		tree.OnPurchaseRequested(func(id string) { m.status = "purchase requested for " + id }),
	)
	return m
}

func (m *exploreModel) Init() tea.Cmd {
	return tea.Batch(m.loader.load(), m.spin.Tick)
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, max(msg.Height-chromeRows, 0)
		m.help.Width = msg.Width
		m.canvas.Resize(float64(m.cols*cellWidth), float64(m.rows*cellHeight))

	case stageMsg:
		m.stage = pipeline.Stage(msg)

	case loadedMsg:
		if errors.Is(msg.err, errors.ErrCodeStale) {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.canvas.SetGraph(msg.res.Graph)
			m.status = treeStats(msg.res)
		}

	case tea.KeyMsg:
		return m, m.key(msg)

	case tea.MouseMsg:
		m.mouse(msg)
	}
	return m, nil
}

func (m *exploreModel) key(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.ZoomIn):
		m.canvas.ZoomIn()
	case key.Matches(msg, k.ZoomOut):
		m.canvas.ZoomOut()
	case key.Matches(msg, k.Home):
		m.canvas.Home()
	case key.Matches(msg, k.Left):
		m.canvas.PanBy(panStep, 0)
	case key.Matches(msg, k.Right):
		m.canvas.PanBy(-panStep, 0)
	case key.Matches(msg, k.Up):
		m.canvas.PanBy(0, panStep)
	case key.Matches(msg, k.Down):
		m.canvas.PanBy(0, -panStep)
	case key.Matches(msg, k.Visit):
		if id := m.canvas.Viewport().SelectedID; id != "" {
			m.canvas.RequestVisit(id)
		}
	case key.Matches(msg, k.Purchase):
		if id := m.canvas.Viewport().SelectedID; id != "" {
			m.canvas.RequestPurchase(id)
		}
	case key.Matches(msg, k.Reload):
		m.loading = true
		m.err = nil
		return tea.Batch(m.loader.load(), m.spin.Tick)
	}
	return nil
}

func (m *exploreModel) mouse(msg tea.MouseMsg) {
	x := (float64(msg.X) + 0.5) * cellWidth
	y := (float64(msg.Y) + 0.5) * cellHeight
	if msg.Y >= m.rows {
		m.canvas.Pointer(tree.PointerEvent{Kind: tree.PointerLeave})
		return
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.canvas.Wheel(-wheelDelta)
	case msg.Button == tea.MouseButtonWheelDown:
		m.canvas.Wheel(wheelDelta)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.canvas.Pointer(tree.PointerEvent{Kind: tree.PointerDown, X: x, Y: y})
	case msg.Action == tea.MouseActionRelease:
		m.clicked = ""
		m.canvas.Pointer(tree.PointerEvent{Kind: tree.PointerUp, X: x, Y: y})
		if m.clicked != "" {
			m.status = m.previewLine(m.clicked)
		}
	case msg.Action == tea.MouseActionMotion:
		m.canvas.Pointer(tree.PointerEvent{Kind: tree.PointerMove, X: x, Y: y})
	}
}

// previewLine summarizes a module for the status bar.
func (m *exploreModel) previewLine(id string) string {
	p, err := m.canvas.Preview(id)
	if err != nil {
		return err.Error()
	}
	parts := []string{p.Title, p.Badge}
	if p.ShowPrice {
		parts = append(parts, m.labels.Currency+canvas.FormatPrice(p.Price))
	}
	if p.Exercises > 0 {
		parts = append(parts, fmt.Sprintf("%d%% done", p.ProgressPercent))
	}
	parts = append(parts, "[enter] "+p.Action.String())
	return strings.Join(parts, " · ")
}

func (m *exploreModel) View() string {
	var b strings.Builder
	switch {
	case m.err != nil:
		b.WriteString(tuiErrorStyle.Render(iconError+" "+errors.UserMessage(m.err)) + "\n")
		b.WriteString(tuiHelpStyle.Render("r retry · q quit"))
		return b.String()
	case m.loading && m.canvas.Graph() == nil:
		b.WriteString(m.spin.View() + " " + StyleDim.Render(stageMessages[m.stage]))
		return b.String()
	}

	if frame := m.surface.Frame(); frame != nil {
		b.WriteString(halfBlocks(frame, m.cols, m.rows))
	}
	b.WriteString("\n")
	b.WriteString(StyleTitle.Render(appName) + " " + StyleValue.Render(fmt.Sprintf("%d%%", m.canvas.ZoomPercent())) + " " + tuiStatusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// halfBlocks draws img as cols x rows cells, each showing the pixel pair
// (x, 2y) and (x, 2y+1) with an upper half block. Pixels outside img are
// left blank.
func halfBlocks(img *image.RGBA, cols, rows int) string {
	var b strings.Builder
	bounds := img.Bounds()
	for y := range rows {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := range cols {
			px := image.Point{X: bounds.Min.X + x, Y: bounds.Min.Y + 2*y}
			if !px.In(bounds) {
				b.WriteByte(' ')
				continue
			}
			top := img.RGBAAt(px.X, px.Y)
			bottom := top
			if below := px.Add(image.Point{Y: 1}); below.In(bounds) {
				bottom = img.RGBAAt(below.X, below.Y)
			}
			b.WriteString(lipgloss.NewStyle().
				Foreground(termColor(top)).
				Background(termColor(bottom)).
				Render("▀"))
		}
	}
	return b.String()
}

func termColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
