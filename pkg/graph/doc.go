// Package graph provides the serialization formats for module trees.
//
// Two formats are defined:
//
//   - [Graph]: node-link form of a catalog, one node per module and one edge
//     per prerequisite. It carries no positions and round-trips through
//     [FromModules] and [Graph.Modules].
//   - [Layout]: a computed tree with node rectangles, edge anchors, levels
//     and access states. It is what `moduletree layout` writes and what the
//     API server returns from /api/tree.
//
// # Layout Serialization
//
// Layouts are discriminated by VizType:
//
//	l := graph.Export(g)                 // *layout.Graph → Layout
//	data, _ := graph.MarshalLayout(l)
//	parsed, _ := graph.UnmarshalLayout(data)
//	if parsed.IsNodelink() {
//	    // parsed.DOT holds the Graphviz source
//	}
//
// Node order in both formats follows the input module order, so identical
// inputs produce byte-identical output.
package graph
