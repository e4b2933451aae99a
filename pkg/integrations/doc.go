// Package integrations provides the HTTP plumbing shared by remote catalog
// sources.
//
// [Client] sends JSON requests with a fixed set of default headers, retries
// transient failures through [httputil.Retry], caches decoded responses in a
// [cache.Cache] and reports every request to the [observability.HTTPHooks]
// registry. Backends live in subpackages:
//
//   - [supabase]: the hosted module tree, progress and access RPCs
//
// Transport failures are reported with two sentinels. [ErrNotFound] is
// returned for 404 responses, [ErrNetwork] for everything else; both are
// wrapped with %w so callers can use errors.Is.
//
// [supabase]: github.com/matzehuels/moduletree/pkg/integrations/supabase
// [httputil.Retry]: github.com/matzehuels/moduletree/pkg/httputil.Retry
// [cache.Cache]: github.com/matzehuels/moduletree/pkg/cache.Cache
// [observability.HTTPHooks]: github.com/matzehuels/moduletree/pkg/observability.HTTPHooks
package integrations
