package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	var n Noop
	var p PipelineHooks = n
	p.OnFetchComplete(ctx, 12, time.Second, nil)
	p.OnAccessCheck(ctx, true, nil)
	p.OnLayoutComplete(ctx, 12, 3, time.Millisecond)
	p.OnStaleResult(ctx, 4)

	var c CacheHooks = n
	c.OnCacheHit(ctx, "modules")
	c.OnCacheMiss(ctx, "modules")
	c.OnCacheSet(ctx, "modules", 1024)

	var h HTTPHooks = n
	h.OnRequest(ctx, "POST", "example.supabase.co", "/rest/v1/rpc/get_module_tree")
	h.OnResponse(ctx, "POST", "example.supabase.co", "/rest/v1/rpc/get_module_tree", 200, time.Second)
	h.OnError(ctx, "POST", "example.supabase.co", "/rest/v1/rpc/get_module_tree", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(Noop); !ok {
		t.Error("Pipeline() should be a no-op by default")
	}
	if _, ok := Cache().(Noop); !ok {
		t.Error("Cache() should be a no-op by default")
	}
	if _, ok := HTTP().(Noop); !ok {
		t.Error("HTTP() should be a no-op by default")
	}

	m := NewMetrics(nil)
	SetPipelineHooks(m)
	SetCacheHooks(m)
	SetHTTPHooks(m)
	if Pipeline() != m || Cache() != m || HTTP() != m {
		t.Error("Set*Hooks should register the metrics")
	}

	Reset()
	if _, ok := Pipeline().(Noop); !ok {
		t.Error("Reset() should restore the no-op hooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics(prometheus.NewRegistry())

	m.OnFetchComplete(ctx, 7, 20*time.Millisecond, nil)
	m.OnFetchComplete(ctx, 0, time.Millisecond, errors.New("boom"))
	m.OnAccessCheck(ctx, true, nil)
	m.OnAccessCheck(ctx, false, nil)
	m.OnAccessCheck(ctx, false, errors.New("timeout"))
	m.OnAccessCheck(ctx, false, errors.New("timeout"))
	m.OnLayoutComplete(ctx, 7, 3, time.Millisecond)
	m.OnStaleResult(ctx, 2)
	m.OnCacheHit(ctx, "modules")
	m.OnCacheSet(ctx, "modules", 512)
	m.OnResponse(ctx, "GET", "db", "/rest/v1/user_progress", 200, time.Millisecond)
	m.ObserveServed("GET", "/api/tree", 200, time.Millisecond)

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"fetch ok", m.FetchTotal.WithLabelValues("ok"), 1},
		{"fetch error", m.FetchTotal.WithLabelValues("error"), 1},
		{"modules loaded", m.ModulesLoaded, 7},
		{"access granted", m.AccessChecksTotal.WithLabelValues("granted"), 1},
		{"access denied", m.AccessChecksTotal.WithLabelValues("denied"), 1},
		{"access error", m.AccessChecksTotal.WithLabelValues("error"), 2},
		{"layout levels", m.LayoutLevels, 3},
		{"stale", m.StaleResultsTotal, 1},
		{"cache hit", m.CacheOpsTotal.WithLabelValues("modules", "hit"), 1},
		{"client 200", m.ClientRequests.WithLabelValues("GET", "db", "200"), 1},
		{"served", m.ServerRequests.WithLabelValues("GET", "/api/tree", "200"), 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %g, want %g", tt.name, got, tt.want)
		}
	}
}

type testPipelineHooks struct{ Noop }
