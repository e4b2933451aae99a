package cli

import (
	"context"
	"image"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/moduletree/pkg/catalog/file"
	"github.com/matzehuels/moduletree/pkg/config"
	"github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/pipeline"
)

const testUser = "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10"

func newTestExplorer(t *testing.T) *exploreModel {
	t.Helper()
	src, err := file.Open("testdata/catalog.toml")
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	cfg := config.Default()
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("config: %v", err)
	}
	quiet := log.New(&strings.Builder{})

	l := &loader{ctx: context.Background(), opts: pipeline.Options{UserID: testUser}}
	l.runner = newRunner(src, cfg, quiet, l.onStage)
	return newExploreModel(l, newRenderer(cfg, 1.0/cellWidth, quiet))
}

// loaded sizes the explorer to 100x40 cells and feeds it the first load.
func loaded(t *testing.T, m *exploreModel) {
	t.Helper()
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	msg := m.loader.load()()
	if lm, ok := msg.(loadedMsg); !ok || lm.err != nil {
		t.Fatalf("load message = %#v", msg)
	}
	m.Update(msg)
}

func TestExploreLoads(t *testing.T) {
	m := newTestExplorer(t)
	if !strings.Contains(m.View(), stageMessages[pipeline.StageAuth]) {
		t.Errorf("loading view = %q", m.View())
	}

	loaded(t, m)
	if m.loading || m.canvas.Graph().Len() != 3 {
		t.Fatalf("loading=%v graph=%d", m.loading, m.canvas.Graph().Len())
	}
	if f := m.surface.Frame(); f == nil || f.Bounds().Dx() != 100 || f.Bounds().Dy() != 76 {
		t.Errorf("frame = %v", f)
	}
	view := m.View()
	if !strings.Contains(view, "moduletree") || !strings.Contains(view, "100%") || !strings.Contains(view, "3 modules") {
		t.Errorf("view status missing in %d bytes of output", len(view))
	}
}

func TestExploreKeys(t *testing.T) {
	m := newTestExplorer(t)
	loaded(t, m)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	if got := m.canvas.ZoomPercent(); got != 120 {
		t.Errorf("zoom after + = %d", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'0'}})
	if got := m.canvas.ZoomPercent(); got != 100 {
		t.Errorf("zoom after 0 = %d", got)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestExploreClickSelects(t *testing.T) {
	m := newTestExplorer(t)
	loaded(t, m)

	// The root is homed at the horizontal center, a fifth of the way down.
	press := tea.MouseMsg{X: 50, Y: 9, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	release := tea.MouseMsg{X: 50, Y: 9, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
	m.Update(press)
	m.Update(release)

	if got := m.canvas.Viewport().SelectedID; got != "intro" {
		t.Fatalf("SelectedID = %q, want intro", got)
	}
	if !strings.Contains(m.status, "Introduction to Programming") || !strings.Contains(m.status, "visit") {
		t.Errorf("status = %q", m.status)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.status != "visit /intro" {
		t.Errorf("status after enter = %q", m.status)
	}
}

func TestExploreWheelZooms(t *testing.T) {
	m := newTestExplorer(t)
	loaded(t, m)

	m.Update(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	if got := m.canvas.ZoomPercent(); got >= 100 {
		t.Errorf("zoom after wheel down = %d", got)
	}
}

func TestExploreIgnoresStale(t *testing.T) {
	m := newTestExplorer(t)
	loaded(t, m)

	m.Update(loadedMsg{err: errors.New(errors.ErrCodeStale, "request 1 superseded")})
	if m.err != nil || m.canvas.Graph().Len() != 3 {
		t.Errorf("stale result should be ignored: err=%v", m.err)
	}

	m.Update(loadedMsg{err: errors.New(errors.ErrCodeDataFetch, "load modules")})
	if !strings.Contains(m.View(), "load modules") {
		t.Errorf("error view = %q", m.View())
	}
}

func TestHalfBlocks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	out := halfBlocks(img, 3, 2)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	for i, line := range lines {
		if n := strings.Count(line, "▀"); n != 2 {
			t.Errorf("line %d has %d blocks, want 2", i, n)
		}
		if !strings.HasSuffix(line, " ") {
			t.Errorf("line %d should end with a blank cell", i)
		}
	}
}

func TestTermColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[3] = 0x3a, 0xd7, 0x68, 0xff
	if got := termColor(img.RGBAAt(0, 0)); string(got) != "#3ad768" {
		t.Errorf("termColor = %q", got)
	}
}
