package pipeline

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/moduletree/pkg/access"
	"github.com/matzehuels/moduletree/pkg/catalog"
	"github.com/matzehuels/moduletree/pkg/errors"
)

const user = "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10"

// fakeSource is an in-memory catalog.Source with injectable failures.
type fakeSource struct {
	modules  []catalog.Module
	progress []catalog.Progress
	grants   map[string]bool

	modulesErr  error
	progressErr error
	subErr      error
	accessErr   map[string]error

	// gate, when set, blocks the first ModuleList call until closed.
	// entered is closed once that call has started.
	gate     chan struct{}
	entered  chan struct{}
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeSource) ModuleList(ctx context.Context) ([]catalog.Module, error) {
	if f.gate != nil && f.calls.Add(1) == 1 {
		close(f.entered)
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.modules, f.modulesErr
}

func (f *fakeSource) UserProgress(context.Context, string) ([]catalog.Progress, error) {
	return f.progress, f.progressErr
}

func (f *fakeSource) CheckModuleAccess(_ context.Context, _, moduleID string) (bool, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	if err := f.accessErr[moduleID]; err != nil {
		return false, err
	}
	return f.grants[moduleID], nil
}

func (f *fakeSource) ActiveSubscription(context.Context, string) (*catalog.Subscription, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	return &catalog.Subscription{ID: "sub-1", Plan: "monthly"}, nil
}

func exampleSource() *fakeSource {
	return &fakeSource{
		modules: []catalog.Module{
			{ID: "A", Title: "A"},
			{ID: "B", Title: "B", ParentIDs: []string{"A"}},
			{ID: "C", Title: "C", ParentIDs: []string{"A"}},
		},
		grants: map[string]bool{"A": true, "B": true},
	}
}

func TestExecute(t *testing.T) {
	var stages []Stage
	r := NewRunner(exampleSource(), WithStageCallback(func(s Stage) { stages = append(stages, s) }))

	res, err := r.Execute(context.Background(), Options{UserID: user})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := map[string]access.State{"A": access.Available, "B": access.Available, "C": access.Locked}
	for id, st := range want {
		n, ok := res.Graph.Node(id)
		if !ok {
			t.Fatalf("node %s missing", id)
		}
		if n.State != st {
			t.Errorf("%s state = %v, want %v", id, n.State, st)
		}
	}
	if res.Subscription == nil || res.Subscription.ID != "sub-1" {
		t.Errorf("Subscription = %+v", res.Subscription)
	}
	if res.Stats.Modules != 3 || res.Stats.Levels != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	wantStages := []Stage{StageAuth, StageData, StageProcessing, StageComplete}
	if len(stages) != len(wantStages) {
		t.Fatalf("stages = %v", stages)
	}
	for i := range wantStages {
		if stages[i] != wantStages[i] {
			t.Errorf("stage %d = %v, want %v", i, stages[i], wantStages[i])
		}
	}
}

func TestExecuteInvalidUser(t *testing.T) {
	r := NewRunner(exampleSource())
	_, err := r.Execute(context.Background(), Options{UserID: "alice"})
	if !errors.Is(err, errors.ErrCodeInvalidUser) {
		t.Errorf("error = %v, want INVALID_USER", err)
	}
}

func TestFetchFailures(t *testing.T) {
	boom := stderrors.New("boom")
	tests := []struct {
		name    string
		mutate  func(*fakeSource)
		opts    Options
		wantErr bool
	}{
		{"modules fail", func(f *fakeSource) { f.modulesErr = boom }, Options{}, true},
		{"progress fail", func(f *fakeSource) { f.progressErr = boom }, Options{}, true},
		{"subscription fail tolerated", func(f *fakeSource) { f.subErr = boom }, Options{}, false},
		{"subscription fail strict", func(f *fakeSource) { f.subErr = boom }, Options{StrictSubscription: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := exampleSource()
			tt.mutate(src)
			tt.opts.UserID = user

			res, err := NewRunner(src).Execute(context.Background(), tt.opts)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeDataFetch) {
					t.Fatalf("error = %v, want DATA_FETCH", err)
				}
				if !stderrors.Is(err, boom) {
					t.Errorf("error should wrap the cause: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if res.Subscription != nil {
				t.Errorf("Subscription = %+v, want nil", res.Subscription)
			}
		})
	}
}

func TestAccessFailureLocks(t *testing.T) {
	done := time.Now()
	src := exampleSource()
	src.progress = []catalog.Progress{{ModuleID: "B", CompletedAt: &done}}
	src.accessErr = map[string]error{"B": stderrors.New("timeout")}

	res, err := NewRunner(src).Execute(context.Background(), Options{UserID: user})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	b, _ := res.Graph.Node("B")
	if b.State != access.Locked || b.HasAccess {
		t.Errorf("B = %v hasAccess=%v, want locked", b.State, b.HasAccess)
	}
	a, _ := res.Graph.Node("A")
	if a.State != access.Available {
		t.Errorf("A = %v, other checks must not be affected", a.State)
	}
	if res.Stats.AccessErrors != 1 {
		t.Errorf("AccessErrors = %d", res.Stats.AccessErrors)
	}
}

func TestResolveConcurrencyLimit(t *testing.T) {
	src := &fakeSource{grants: map[string]bool{}}
	for i := range 20 {
		src.modules = append(src.modules, catalog.Module{ID: string(rune('a' + i))})
	}
	r := NewRunner(src)

	grants, failures := r.Resolve(context.Background(), Options{UserID: user, AccessConcurrency: 3}, src.modules)
	if len(grants) != 20 || failures != 0 {
		t.Errorf("grants=%d failures=%d", len(grants), failures)
	}
	if p := src.peak.Load(); p > 3 {
		t.Errorf("peak in-flight checks = %d, want <= 3", p)
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	src := exampleSource()
	src.gate = make(chan struct{})
	src.entered = make(chan struct{})
	r := NewRunner(src)

	var wg sync.WaitGroup
	var staleErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, staleErr = r.Execute(context.Background(), Options{UserID: user})
	}()

	// The second run starts after the first is blocked and finishes first.
	<-src.entered
	res, err := r.Execute(context.Background(), Options{UserID: user})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if res.Token != 2 || r.Committed() != 2 {
		t.Errorf("token=%d committed=%d", res.Token, r.Committed())
	}

	close(src.gate)
	wg.Wait()
	if !errors.Is(staleErr, errors.ErrCodeStale) {
		t.Errorf("first run error = %v, want STALE_RESULT", staleErr)
	}
	if r.Committed() != 2 {
		t.Errorf("stale run must not move the committed token: %d", r.Committed())
	}
}

func TestStaleFailureDiscarded(t *testing.T) {
	src := exampleSource()
	src.gate = make(chan struct{})
	src.entered = make(chan struct{})
	r := NewRunner(src)

	var wg sync.WaitGroup
	var olderErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, olderErr = r.Execute(context.Background(), Options{UserID: user})
	}()

	<-src.entered
	if _, err := r.Execute(context.Background(), Options{UserID: user}); err != nil {
		t.Fatalf("second Execute: %v", err)
	}

	// The older run fails only after the newer one has committed.
	src.modulesErr = stderrors.New("late failure")
	close(src.gate)
	wg.Wait()

	if !errors.Is(olderErr, errors.ErrCodeStale) {
		t.Errorf("older run error = %v, want STALE_RESULT", olderErr)
	}
	if r.Committed() != 2 {
		t.Errorf("committed = %d, want 2", r.Committed())
	}

	// With nothing newer committed, a failure is still reported as such.
	if _, err := r.Execute(context.Background(), Options{UserID: user}); !errors.Is(err, errors.ErrCodeDataFetch) {
		t.Errorf("fresh failure = %v, want DATA_FETCH", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	o := Options{UserID: user, AccessConcurrency: -4}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if o.AccessConcurrency != DefaultAccessConcurrency {
		t.Errorf("AccessConcurrency = %d", o.AccessConcurrency)
	}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call: %v", err)
	}
}

func TestStageString(t *testing.T) {
	want := []string{"auth", "data", "processing", "complete"}
	for i, w := range want {
		if got := Stage(i).String(); got != w {
			t.Errorf("Stage(%d) = %q, want %q", i, got, w)
		}
	}
}
