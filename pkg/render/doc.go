// Package render groups the module tree renderers.
//
//   - [canvas]: the interactive raster view painted with gg, driven by a
//     viewport transform and used by the terminal viewer and `render`
//   - [nodelink]: Graphviz node-link diagrams for `export`
//
// Both read a computed [layout.Graph] and share the state palette defined
// in canvas.
//
// [canvas]: github.com/matzehuels/moduletree/pkg/render/canvas
// [nodelink]: github.com/matzehuels/moduletree/pkg/render/nodelink
// [layout.Graph]: github.com/matzehuels/moduletree/pkg/layout.Graph
package render
