// Package catalog defines the records moduletree consumes and the [Source]
// interface that fetches them.
//
// A [Module] is one learning unit with a set of parent ids. Modules without
// parents are roots. A [Progress] record tracks how far a user got through a
// module; a non-nil CompletedAt marks it completed. A [Subscription] is opaque
// to the core and only passed through.
//
// Three implementations of [Source] ship with the repository:
//
//   - catalog/file: TOML or JSON fixture files, for local use and tests
//   - catalog/mongo: a MongoDB database
//   - integrations/supabase: the hosted REST backend
//
// All Source methods may be called concurrently.
package catalog
