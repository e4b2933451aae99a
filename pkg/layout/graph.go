package layout

import (
	"math"
	"sort"

	"github.com/matzehuels/moduletree/pkg/access"
)

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in world coordinates.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Node is a positioned module.
type Node struct {
	access.Module
	ChildrenIDs []string `json:"children_ids"`
	Level       int      `json:"level"`
	// Index is the node's position within its level, in discovery order.
	Index     int   `json:"index"`
	Position  Point `json:"position"`
	Reachable bool  `json:"reachable"`
}

// Edge connects a parent's bottom-center anchor to a child's top-center
// anchor.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Start Point  `json:"start"`
	End   Point  `json:"end"`
}

// EdgeCurve is the fraction of the vertical distance at which edge control
// points sit.
const EdgeCurve = 0.6

// Controls returns the two cubic bezier control points for the edge. Both
// share one y coordinate so the curve leaves the parent and enters the child
// vertically.
func (e Edge) Controls() (Point, Point) {
	cy := e.Start.Y + (e.End.Y-e.Start.Y)*EdgeCurve
	return Point{X: e.Start.X, Y: cy}, Point{X: e.End.X, Y: cy}
}

// Graph is the output of [Engine.Compute].
type Graph struct {
	cfg   Config
	nodes map[string]*Node
	order []string
}

// Config returns the geometry the graph was computed with.
func (g *Graph) Config() Config { return g.cfg }

// Len returns the number of distinct modules.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in input order. A duplicated id appears at its
// first position and carries its last record.
func (g *Graph) Nodes() []*Node {
	if g == nil {
		return nil
	}
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// Roots returns the ids of modules without parents, in input order.
func (g *Graph) Roots() []string {
	if g == nil {
		return nil
	}
	var roots []string
	for _, id := range g.order {
		if len(g.nodes[id].ParentIDs) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// FirstRoot returns the first root, if any.
func (g *Graph) FirstRoot() (*Node, bool) {
	roots := g.Roots()
	if len(roots) == 0 {
		return nil, false
	}
	return g.Node(roots[0])
}

// Levels returns node ids grouped by level, each level in discovery order.
// Unreachable nodes form the final level.
func (g *Graph) Levels() [][]string {
	if g.Len() == 0 {
		return nil
	}
	depth := 0
	for _, n := range g.nodes {
		depth = max(depth, n.Level+1)
	}
	levels := make([][]string, depth)
	for _, id := range g.order {
		n := g.nodes[id]
		levels[n.Level] = append(levels[n.Level], id)
	}
	for _, ids := range levels {
		sort.SliceStable(ids, func(i, j int) bool {
			return g.nodes[ids[i]].Index < g.nodes[ids[j]].Index
		})
	}
	return levels
}

// Edges returns one edge per parent-child pair, grouped by parent in input
// order.
func (g *Graph) Edges() []Edge {
	if g == nil {
		return nil
	}
	var edges []Edge
	w, h := g.cfg.NodeWidth, g.cfg.NodeHeight
	for _, id := range g.order {
		p := g.nodes[id]
		for _, cid := range p.ChildrenIDs {
			c := g.nodes[cid]
			edges = append(edges, Edge{
				From:  p.ID,
				To:    c.ID,
				Start: Point{X: p.Position.X + w/2, Y: p.Position.Y + h},
				End:   Point{X: c.Position.X + w/2, Y: c.Position.Y},
			})
		}
	}
	return edges
}

// Bounds returns the smallest rectangle containing every node box. An empty
// graph has zero bounds.
func (g *Graph) Bounds() Rect {
	if g.Len() == 0 {
		return Rect{}
	}
	r := Rect{
		Min: Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for _, n := range g.nodes {
		r.Min.X = min(r.Min.X, n.Position.X)
		r.Min.Y = min(r.Min.Y, n.Position.Y)
		r.Max.X = max(r.Max.X, n.Position.X+g.cfg.NodeWidth)
		r.Max.Y = max(r.Max.Y, n.Position.Y+g.cfg.NodeHeight)
	}
	return r
}

// Contains reports whether world point p lies inside the node's box.
func (g *Graph) Contains(n *Node, p Point) bool {
	return p.X >= n.Position.X && p.X <= n.Position.X+g.cfg.NodeWidth &&
		p.Y >= n.Position.Y && p.Y <= n.Position.Y+g.cfg.NodeHeight
}
