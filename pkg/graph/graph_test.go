package graph

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/moduletree/pkg/access"
	"github.com/matzehuels/moduletree/pkg/catalog"
	"github.com/matzehuels/moduletree/pkg/layout"
)

func sampleModules() []catalog.Module {
	return []catalog.Module{
		{ID: "A", Title: "Intro", Slug: "intro", IsFree: true},
		{ID: "B", Title: "Loops", Slug: "loops", Price: 19.9, ParentIDs: []string{"A"}},
		{ID: "C", Title: "Functions", Slug: "functions", ParentIDs: []string{"A"}},
		{ID: "D", Title: "Recursion", Slug: "recursion", ParentIDs: []string{"B", "C"}},
	}
}

func sampleGraph() *layout.Graph {
	grants := map[string]bool{"B": true}
	return layout.New().Compute(access.ResolveAll(sampleModules(), grants, nil))
}

func TestGraphRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGraph(sampleModules(), &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}

	var g Graph
	if err := json.Unmarshal(buf.Bytes(), &g); err != nil {
		t.Fatal(err)
	}
	if len(g.Nodes) != 4 || len(g.Edges) != 4 {
		t.Fatalf("nodes=%d edges=%d", len(g.Nodes), len(g.Edges))
	}

	mods, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	want := sampleModules()
	for i := range want {
		if mods[i].ID != want[i].ID || mods[i].Title != want[i].Title || mods[i].Price != want[i].Price {
			t.Errorf("module %d = %+v, want %+v", i, mods[i], want[i])
		}
		if strings.Join(mods[i].ParentIDs, ",") != strings.Join(want[i].ParentIDs, ",") {
			t.Errorf("module %s parents = %v, want %v", want[i].ID, mods[i].ParentIDs, want[i].ParentIDs)
		}
	}
}

func TestGraphModulesIgnoresUnknownChildren(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "a"}},
		Edges: []Edge{{From: "a", To: "ghost"}, {From: "missing", To: "a"}},
	}
	mods := g.Modules()
	if len(mods) != 1 || len(mods[0].ParentIDs) != 1 || mods[0].ParentIDs[0] != "missing" {
		t.Errorf("modules = %+v", mods)
	}
}

func TestExport(t *testing.T) {
	l := Export(sampleGraph())
	if !l.IsTree() {
		t.Fatalf("VizType = %q", l.VizType)
	}
	if len(l.Nodes) != 4 || len(l.Edges) != 4 {
		t.Fatalf("nodes=%d edges=%d", len(l.Nodes), len(l.Edges))
	}

	a := l.Nodes[0]
	if a.ID != "A" || a.X != 500 || a.Y != 50 || a.Width != 160 || a.State != "free" {
		t.Errorf("A = %+v", a)
	}
	if b := l.Nodes[1]; b.State != "available" || !b.HasAccess || b.Row != 1 {
		t.Errorf("B = %+v", b)
	}
	if c := l.Nodes[2]; c.State != "locked" || c.HasAccess {
		t.Errorf("C = %+v", c)
	}
	if got := strings.Join(l.Rows[1], ","); got != "B,C" {
		t.Errorf("row 1 = %s", got)
	}
	if len(l.Roots) != 1 || l.Roots[0] != "A" {
		t.Errorf("roots = %v", l.Roots)
	}

	e := l.Edges[0]
	if len(e.Path) != 4 {
		t.Fatalf("path = %v", e.Path)
	}
	if e.Path[0] != (Point{X: 580, Y: 120}) || e.Path[3] != (Point{X: 470, Y: 190}) {
		t.Errorf("edge A->B path = %v", e.Path)
	}
	if e.Path[1].Y != e.Path[2].Y {
		t.Errorf("control points should share y: %v", e.Path)
	}
	if l.Width <= 0 || l.Height <= 0 {
		t.Errorf("size = %gx%g", l.Width, l.Height)
	}
}

func TestExportEmpty(t *testing.T) {
	l := Export(layout.New().Compute(nil))
	if len(l.Nodes) != 0 || l.Width != 0 {
		t.Errorf("empty layout = %+v", l)
	}
	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"nodes": []`)) {
		t.Errorf("empty nodes should encode as []: %s", data)
	}
}

func TestUnmarshalLayout(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    string
	}{
		{"default viz type", `{"nodes":[]}`, false, VizTypeTree},
		{"nodelink", `{"viz_type":"nodelink","dot":"digraph{}"}`, false, VizTypeNodelink},
		{"nodelink without dot", `{"viz_type":"nodelink"}`, true, ""},
		{"unknown", `{"viz_type":"tower"}`, true, ""},
		{"malformed", `{`, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := UnmarshalLayout([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && l.VizType != tt.want {
				t.Errorf("VizType = %q, want %q", l.VizType, tt.want)
			}
		})
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	l := Export(sampleGraph())
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if len(got.Nodes) != len(l.Nodes) || got.Nodes[3].ID != "D" || got.Nodes[3].Row != 2 {
		t.Errorf("read back %+v", got.Nodes)
	}
	if got.Config != l.Config {
		t.Errorf("config = %+v", got.Config)
	}
	if _, err := ReadLayoutFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}
