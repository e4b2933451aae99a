// Package observability provides hooks for metrics and tracing.
//
// Libraries call the registered hooks; main decides what backs them. The
// defaults are no-ops, and [Metrics] implements every hook interface on top
// of a Prometheus registry.
//
//	m := observability.NewMetrics(prometheus.NewRegistry())
//	observability.SetPipelineHooks(m)
//	observability.SetCacheHooks(m)
//	observability.SetHTTPHooks(m)
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the tree loading pipeline.
type PipelineHooks interface {
	// OnFetchComplete fires after the three initial loads settle.
	OnFetchComplete(ctx context.Context, modules int, duration time.Duration, err error)

	// OnAccessCheck fires once per module access check. A non-nil err means
	// the check failed and the module was locked.
	OnAccessCheck(ctx context.Context, granted bool, err error)

	// OnLayoutComplete fires after a graph is computed.
	OnLayoutComplete(ctx context.Context, nodes, levels int, duration time.Duration)

	// OnStaleResult fires when a superseded request is discarded.
	OnStaleResult(ctx context.Context, token uint64)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from outgoing HTTP requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure (network error, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// Registry
// =============================================================================

// Noop implements every hook interface and discards all events.
type Noop struct{}

func (Noop) OnFetchComplete(context.Context, int, time.Duration, error)             {}
func (Noop) OnAccessCheck(context.Context, bool, error)                             {}
func (Noop) OnLayoutComplete(context.Context, int, int, time.Duration)              {}
func (Noop) OnStaleResult(context.Context, uint64)                                  {}
func (Noop) OnCacheHit(context.Context, string)                                     {}
func (Noop) OnCacheMiss(context.Context, string)                                    {}
func (Noop) OnCacheSet(context.Context, string, int)                                {}
func (Noop) OnRequest(context.Context, string, string, string)                      {}
func (Noop) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (Noop) OnError(context.Context, string, string, string, error)                 {}

// hookSet is swapped as a whole so readers never see a half-updated set.
type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var (
	current atomic.Pointer[hookSet]
	writeMu sync.Mutex
)

func init() { Reset() }

func update(f func(*hookSet)) {
	writeMu.Lock()
	defer writeMu.Unlock()
	next := *current.Load()
	f(&next)
	current.Store(&next)
}

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks registers HTTP client hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

func Pipeline() PipelineHooks { return current.Load().pipeline }

func Cache() CacheHooks { return current.Load().cache }

func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks.
func Reset() {
	writeMu.Lock()
	defer writeMu.Unlock()
	current.Store(&hookSet{pipeline: Noop{}, cache: Noop{}, http: Noop{}})
}
