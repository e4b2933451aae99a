package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/moduletree/pkg/catalog"
)

// Graph is the node-link form of a catalog.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// FromModules converts a catalog to node-link form. Nodes keep input
// order; edges are listed per child in ParentIDs order.
func FromModules(mods []catalog.Module) Graph {
	out := Graph{Nodes: make([]Node, 0, len(mods)), Edges: []Edge{}}
	for _, m := range mods {
		out.Nodes = append(out.Nodes, Node{
			ID:          m.ID,
			Label:       m.Title,
			Slug:        m.Slug,
			Description: m.Description,
			Color:       m.BackgroundColor,
			Thumbnail:   m.ThumbnailURL,
			Price:       m.Price,
			IsFree:      m.IsFree,
		})
		for _, p := range m.ParentIDs {
			out.Edges = append(out.Edges, Edge{From: p, To: m.ID})
		}
	}
	return out
}

// Modules converts the graph back to a catalog. Edges naming unknown
// children are ignored; unknown parents are kept as dangling references.
func (g Graph) Modules() []catalog.Module {
	mods := make([]catalog.Module, len(g.Nodes))
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		mods[i] = catalog.Module{
			ID:              n.ID,
			Title:           n.Label,
			Slug:            n.Slug,
			Description:     n.Description,
			BackgroundColor: n.Color,
			ThumbnailURL:    n.Thumbnail,
			Price:           n.Price,
			IsFree:          n.IsFree,
		}
		index[n.ID] = i
	}
	for _, e := range g.Edges {
		if i, ok := index[e.To]; ok {
			mods[i].ParentIDs = append(mods[i].ParentIDs, e.From)
		}
	}
	return mods
}

// MarshalGraph converts a catalog to indented JSON.
func MarshalGraph(mods []catalog.Module) ([]byte, error) {
	return json.MarshalIndent(FromModules(mods), "", "  ")
}

// WriteGraph writes a catalog as node-link JSON.
func WriteGraph(mods []catalog.Module, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromModules(mods)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraph decodes node-link JSON into a catalog.
func ReadGraph(r io.Reader) ([]catalog.Module, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return g.Modules(), nil
}

// ReadGraphFile reads a node-link JSON file.
func ReadGraphFile(path string) ([]catalog.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
