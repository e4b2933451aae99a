package cli

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/moduletree/pkg/access"
	"github.com/matzehuels/moduletree/pkg/catalog"
	"github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/layout"
	"github.com/matzehuels/moduletree/pkg/render/canvas"
	"github.com/matzehuels/moduletree/pkg/tree"
	"github.com/matzehuels/moduletree/pkg/viewport"
)

func testTree() *layout.Graph {
	mods := []catalog.Module{
		{ID: "intro", Title: "Intro", Slug: "intro", IsFree: true},
		{ID: "loops", Title: "Loops", Slug: "loops", Price: 19.9, ParentIDs: []string{"intro"}},
	}
	return layout.New().Compute(access.ResolveAll(mods, map[string]bool{}, nil))
}

func TestParsePan(t *testing.T) {
	tests := []struct {
		in      string
		dx, dy  float64
		wantErr bool
	}{
		{"", 0, 0, false},
		{"10,-20", 10, -20, false},
		{" 1.5 , 2 ", 1.5, 2, false},
		{"10", 0, 0, true},
		{"a,1", 0, 0, true},
		{"1,b", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			dx, dy, err := parsePan(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("error = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil || dx != tt.dx || dy != tt.dy {
				t.Errorf("parsePan(%q) = %g, %g, %v", tt.in, dx, dy, err)
			}
		})
	}
}

func TestZoomAboutKeepsCenter(t *testing.T) {
	start := viewport.Transform{Scale: 1, Translate: viewport.Point{X: -180, Y: 70}}
	center := viewport.Point{X: 400, Y: 300}

	got := zoomAbout(start, 1.5, center)
	if got.Scale != 1.5 {
		t.Errorf("Scale = %g", got.Scale)
	}
	before := start.ScreenToWorld(center)
	after := got.WorldToScreen(before)
	if math.Abs(after.X-center.X) > 1e-9 || math.Abs(after.Y-center.Y) > 1e-9 {
		t.Errorf("center moved to %+v", after)
	}

	if s := zoomAbout(start, 9, center).Scale; s != viewport.MaxScale {
		t.Errorf("Scale = %g, want clamp to %g", s, viewport.MaxScale)
	}
}

func TestReadGestures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr bool
	}{
		{"pointer", "[[events]]\nkind = \"down\"\nx = 1\ny = 2\n", false},
		{"touch", "[[events]]\nkind = \"touchstart\"\nid = 1\n", false},
		{"buttons", "[[events]]\nkind = \"zoomin\"\n[[events]]\nkind = \"home\"\n", false},
		{"unknown kind", "[[events]]\nkind = \"fling\"\n", true},
		{"negative resize", "[[events]]\nkind = \"resize\"\nwidth = -1\n", true},
		{"bad toml", "[[events]\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readGestures(strings.NewReader(tt.script))
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidFormat) {
					t.Errorf("error = %v, want INVALID_FORMAT", err)
				}
				return
			}
			if err != nil {
				t.Errorf("readGestures: %v", err)
			}
		})
	}
}

func TestGestureReplay(t *testing.T) {
	script, err := readGestureFile("testdata/click.toml")
	if err != nil {
		t.Fatalf("readGestureFile: %v", err)
	}

	var clicks []string
	surface := canvas.NewImageSurface(script.Width, script.Height)
	tc := tree.New(
		tree.WithSurface(surface),
		tree.OnModuleClick(func(id string) { clicks = append(clicks, id) }),
	)
	tc.SetGraph(testTree())

	if err := script.replay(tc); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(clicks) != 1 || clicks[0] != "intro" {
		t.Errorf("clicks = %v, want [intro]", clicks)
	}
	st := tc.Viewport()
	if st.SelectedID != "intro" || st.HoveredID != "intro" {
		t.Errorf("selected=%q hovered=%q", st.SelectedID, st.HoveredID)
	}
	if tc.ZoomPercent() != 120 {
		t.Errorf("ZoomPercent = %d, want 120", tc.ZoomPercent())
	}
}

func TestGestureReplayUnknownSelect(t *testing.T) {
	tc := tree.New(tree.WithSurface(canvas.NewImageSurface(400, 300)))
	tc.SetGraph(testTree())

	s := &gestureScript{Events: []gesture{{Kind: "select", Module: "nope"}}}
	if err := s.replay(tc); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestHoverModule(t *testing.T) {
	tc := tree.New(tree.WithSurface(canvas.NewImageSurface(800, 600)))
	tc.SetGraph(testTree())

	if err := hoverModule(tc, "loops"); err != nil {
		t.Fatalf("hoverModule: %v", err)
	}
	if got := tc.Viewport().HoveredID; got != "loops" {
		t.Errorf("HoveredID = %q", got)
	}
	if err := hoverModule(tc, "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestRenderCommandWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tree.png")
	t.Setenv("MODULETREE_USER", "")

	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs([]string{
		"render",
		"--config", "testdata/moduletree.toml",
		"--script", "testdata/click.toml",
		"--pixel-ratio", "2",
		"-o", out,
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1600 || b.Dy() != 1200 {
		t.Errorf("image size = %dx%d, want 1600x1200", b.Dx(), b.Dy())
	}
}
