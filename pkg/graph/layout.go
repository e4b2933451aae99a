package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/moduletree/pkg/layout"
)

// Layout is the serialized form of a computed tree.
//
// Tree layouts ("tree") carry Nodes with rectangles, Edges with bezier
// paths and Rows. Nodelink layouts ("nodelink") carry a Graphviz DOT
// source in DOT and the engine that should render it.
type Layout struct {
	VizType string `json:"viz_type" bson:"viz_type"`

	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Config layout.Config    `json:"config" bson:"config"`
	Roots  []string         `json:"roots,omitempty" bson:"roots,omitempty"`
	Nodes  []Node           `json:"nodes" bson:"nodes"`
	Edges  []Edge           `json:"edges" bson:"edges"`
	Rows   map[int][]string `json:"rows,omitempty" bson:"rows,omitempty"`

	DOT    string `json:"dot,omitempty" bson:"dot,omitempty"`
	Engine string `json:"engine,omitempty" bson:"engine,omitempty"`
}

// IsTree reports whether this is a positioned tree layout.
func (l *Layout) IsTree() bool { return l.VizType == VizTypeTree }

// IsNodelink reports whether this is a Graphviz layout.
func (l *Layout) IsNodelink() bool { return l.VizType == VizTypeNodelink }

// Export converts a computed graph to a tree Layout. Width and Height are
// the extent of the node bounds measured from the world origin.
func Export(g *layout.Graph) Layout {
	cfg := g.Config()
	out := Layout{
		VizType: VizTypeTree,
		Config:  cfg,
		Roots:   g.Roots(),
		Nodes:   []Node{},
		Edges:   []Edge{},
		Rows:    map[int][]string{},
	}
	if g.Len() > 0 {
		b := g.Bounds()
		out.Width = b.Max.X + cfg.LeftMargin
		out.Height = b.Max.Y + cfg.TopMargin
	}

	for _, n := range g.Nodes() {
		node := Node{
			ID:          n.ID,
			Label:       n.Title,
			Slug:        n.Slug,
			Description: n.Description,
			Color:       n.BackgroundColor,
			Thumbnail:   n.ThumbnailURL,
			Price:       n.Price,
			IsFree:      n.IsFree,
			Row:         n.Level,
			Index:       n.Index,
			X:           n.Position.X,
			Y:           n.Position.Y,
			Width:       cfg.NodeWidth,
			Height:      cfg.NodeHeight,
			State:       n.State.String(),
			HasAccess:   n.HasAccess,
			Unreachable: !n.Reachable,
			Children:    n.ChildrenIDs,
		}
		if n.Progress != nil {
			node.Exercises = len(n.Progress.CompletedExercises)
		}
		out.Nodes = append(out.Nodes, node)
	}

	for level, ids := range g.Levels() {
		out.Rows[level] = ids
	}

	for _, e := range g.Edges() {
		c1, c2 := e.Controls()
		out.Edges = append(out.Edges, Edge{
			From: e.From,
			To:   e.To,
			Path: []Point{
				{X: e.Start.X, Y: e.Start.Y},
				{X: c1.X, Y: c1.Y},
				{X: c2.X, Y: c2.Y},
				{X: e.End.X, Y: e.End.Y},
			},
		})
	}
	return out
}

// MarshalLayout serializes a Layout to indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout decodes a Layout. A missing VizType means tree.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.VizType == "" {
		l.VizType = VizTypeTree
	}
	switch {
	case l.IsNodelink() && l.DOT == "":
		return Layout{}, fmt.Errorf("nodelink layout must contain DOT string")
	case !l.IsTree() && !l.IsNodelink():
		return Layout{}, fmt.Errorf("unknown viz type %q", l.VizType)
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
