package layout

import (
	"slices"

	"github.com/matzehuels/moduletree/pkg/access"
)

// Engine computes positioned graphs. It holds no state besides its
// configuration and may be shared between goroutines.
type Engine struct {
	cfg Config
}

// New returns an engine with the default geometry modified by opts.
func New(opts ...Option) *Engine {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{cfg: cfg}
}

// Config returns the engine's geometry.
func (e *Engine) Config() Config { return e.cfg }

type queued struct {
	id    string
	level int
}

// Compute builds the positioned graph for mods. It never fails: duplicate ids
// keep the last record and dangling parent references are dropped.
func (e *Engine) Compute(mods []access.Module) *Graph {
	g := &Graph{
		cfg:   e.cfg,
		nodes: make(map[string]*Node, len(mods)),
	}

	for _, m := range mods {
		if _, seen := g.nodes[m.ID]; !seen {
			g.order = append(g.order, m.ID)
		}
		g.nodes[m.ID] = &Node{Module: m}
	}

	for _, id := range g.order {
		for _, pid := range g.nodes[id].ParentIDs {
			p, ok := g.nodes[pid]
			if !ok || slices.Contains(p.ChildrenIDs, id) {
				continue
			}
			p.ChildrenIDs = append(p.ChildrenIDs, id)
		}
	}

	levels := e.assignLevels(g)
	e.place(g, levels)
	return g
}

// assignLevels runs the multi-source BFS and returns ids per level in
// discovery order.
func (e *Engine) assignLevels(g *Graph) [][]string {
	visited := make(map[string]bool, len(g.order))
	var queue []queued
	for _, id := range g.Roots() {
		visited[id] = true
		queue = append(queue, queued{id: id})
	}

	var levels [][]string
	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]

		n := g.nodes[q.id]
		n.Level = q.level
		n.Reachable = true
		if q.level == len(levels) {
			levels = append(levels, nil)
		}
		levels[q.level] = append(levels[q.level], q.id)

		for _, cid := range n.ChildrenIDs {
			if visited[cid] {
				continue
			}
			visited[cid] = true
			queue = append(queue, queued{id: cid, level: q.level + 1})
		}
	}

	var orphans []string
	for _, id := range g.order {
		if !visited[id] {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) > 0 {
		for _, id := range orphans {
			g.nodes[id].Level = len(levels)
		}
		levels = append(levels, orphans)
	}
	return levels
}

func (e *Engine) place(g *Graph, levels [][]string) {
	for li, ids := range levels {
		y := float64(li)*e.cfg.LevelSpacing + e.cfg.TopMargin
		total := float64(len(ids)-1) * e.cfg.NodeSpacing
		startX := max(e.cfg.LeftMargin, (e.cfg.ReferenceWidth-total)/2)
		for i, id := range ids {
			n := g.nodes[id]
			n.Index = i
			n.Position = Point{X: startX + float64(i)*e.cfg.NodeSpacing, Y: y}
		}
	}
}
