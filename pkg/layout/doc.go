// Package layout converts a flat list of modules with parent references into
// a positioned graph.
//
// # Algorithm
//
// [Engine.Compute] runs in four passes:
//
//  1. Index modules by id. Duplicate ids keep the last record.
//  2. Invert parent references into child lists. Parents that are not in the
//     input are ignored.
//  3. Breadth-first traversal from every root at once, in input order. A
//     module's level is fixed the first time it is enqueued; later parents
//     do not move it.
//  4. Place each level on its own row. Rows are centered around
//     [Config.ReferenceWidth] and never start left of [Config.LeftMargin].
//
// Modules that no root reaches (only possible with cyclic input) are placed
// on one extra row below the last level and marked unreachable.
//
// # Views
//
// A [Graph] owns one id-keyed node map. Roots, levels, edges and bounds are
// recomputed from it on every call and never stored, so they cannot drift
// from the node positions.
package layout
