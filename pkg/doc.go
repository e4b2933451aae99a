// Package pkg holds the moduletree libraries.
//
// # Overview
//
// Moduletree turns a course catalog into a tree a learner can navigate:
// modules rest below the modules they build on, each painted by whether the
// learner has completed it, can open it, or still has to buy it.
//
// # Data Flow
//
//	catalog source (file, Supabase, MongoDB)
//	         ↓
//	    [pipeline]  validate user, fetch, resolve access
//	         ↓
//	    [access]    per-module state
//	         ↓
//	    [layout]    levels and positions
//	         ↓
//	    [tree]      interactive canvas: gestures, [viewport], preview
//	         ↓
//	    [render/canvas] raster frames, [render/nodelink] DOT/SVG, [graph] JSON
//
// # Supporting Packages
//
//   - [catalog]: domain types and the Source interface with its backends
//   - [integrations]: HTTP clients for hosted backends (Supabase)
//   - [cache]: file, Redis and no-op caches for remote responses
//   - [config]: TOML configuration with environment overrides
//   - [errors]: coded errors shared by every layer
//   - [observability]: Prometheus metrics and hook points
//   - [buildinfo]: version stamping
//
// [pipeline]: github.com/matzehuels/moduletree/pkg/pipeline
// [access]: github.com/matzehuels/moduletree/pkg/access
// [layout]: github.com/matzehuels/moduletree/pkg/layout
// [tree]: github.com/matzehuels/moduletree/pkg/tree
// [viewport]: github.com/matzehuels/moduletree/pkg/viewport
// [render/canvas]: github.com/matzehuels/moduletree/pkg/render/canvas
// [render/nodelink]: github.com/matzehuels/moduletree/pkg/render/nodelink
// [graph]: github.com/matzehuels/moduletree/pkg/graph
// [catalog]: github.com/matzehuels/moduletree/pkg/catalog
// [integrations]: github.com/matzehuels/moduletree/pkg/integrations
// [cache]: github.com/matzehuels/moduletree/pkg/cache
// [config]: github.com/matzehuels/moduletree/pkg/config
// [errors]: github.com/matzehuels/moduletree/pkg/errors
// [observability]: github.com/matzehuels/moduletree/pkg/observability
// [buildinfo]: github.com/matzehuels/moduletree/pkg/buildinfo
package pkg
