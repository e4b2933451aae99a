package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/moduletree/pkg/access"
	"github.com/matzehuels/moduletree/pkg/catalog"
	"github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/layout"
	"github.com/matzehuels/moduletree/pkg/observability"
)

// Runner executes runs against one Source. It is safe for concurrent use;
// concurrent runs are ordered by their tokens.
type Runner struct {
	source  catalog.Source
	engine  *layout.Engine
	logger  *log.Logger
	onStage func(Stage)

	seq       atomic.Uint64
	mu        sync.Mutex
	committed uint64
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithEngine sets the layout engine. The default uses the default geometry.
func WithEngine(e *layout.Engine) RunnerOption { return func(r *Runner) { r.engine = e } }

// WithLogger sets the logger. Nil means log.Default().
func WithLogger(l *log.Logger) RunnerOption { return func(r *Runner) { r.logger = l } }

// WithStageCallback reports stage transitions. It is called from the
// goroutine running Execute.
func WithStageCallback(f func(Stage)) RunnerOption { return func(r *Runner) { r.onStage = f } }

// NewRunner returns a runner reading from src.
func NewRunner(src catalog.Source, opts ...RunnerOption) *Runner {
	r := &Runner{source: src}
	for _, opt := range opts {
		opt(r)
	}
	if r.engine == nil {
		r.engine = layout.New()
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r
}

// Engine returns the layout engine.
func (r *Runner) Engine() *layout.Engine { return r.engine }

// Execute runs fetch, resolve and layout. It returns a STALE_RESULT error
// when a run that started later has already been committed.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	token := r.seq.Add(1)

	r.stage(StageAuth)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	r.stage(StageData)
	start := time.Now()
	data, err := r.Fetch(ctx, opts)
	fetchTime := time.Since(start)
	if err != nil {
		return nil, r.failed(ctx, token, err)
	}
	r.logger.Info("loaded modules",
		"modules", len(data.Modules),
		"progress", len(data.Progress),
		"duration", fetchTime)

	r.stage(StageProcessing)
	start = time.Now()
	grants, accessErrs := r.Resolve(ctx, opts, data.Modules)
	resolveTime := time.Since(start)
	if err := ctx.Err(); err != nil {
		return nil, r.failed(ctx, token, err)
	}

	start = time.Now()
	mods := access.ResolveAll(data.Modules, grants, data.Progress)
	g := r.engine.Compute(mods)
	layoutTime := time.Since(start)
	levels := len(g.Levels())
	observability.Pipeline().OnLayoutComplete(ctx, g.Len(), levels, layoutTime)

	if !r.commit(token) {
		return nil, r.stale(ctx, token)
	}

	r.logger.Info("computed layout",
		"nodes", g.Len(),
		"levels", levels,
		"access_errors", accessErrs,
		"duration", resolveTime+layoutTime)
	r.stage(StageComplete)

	return &Result{
		Token:        token,
		Modules:      mods,
		Graph:        g,
		Subscription: data.Subscription,
		Stats: Stats{
			Modules:      g.Len(),
			Levels:       levels,
			AccessErrors: accessErrs,
			FetchTime:    fetchTime,
			ResolveTime:  resolveTime,
			LayoutTime:   layoutTime,
		},
	}, nil
}

// Fetch loads modules, progress and subscription concurrently.
func (r *Runner) Fetch(ctx context.Context, opts Options) (*Data, error) {
	start := time.Now()
	var data Data

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mods, err := r.source.ModuleList(gctx)
		if err != nil {
			return errors.Wrap(errors.ErrCodeDataFetch, err, "load modules")
		}
		data.Modules = mods
		return nil
	})
	g.Go(func() error {
		p, err := r.source.UserProgress(gctx, opts.UserID)
		if err != nil {
			return errors.Wrap(errors.ErrCodeDataFetch, err, "load progress")
		}
		data.Progress = p
		return nil
	})
	g.Go(func() error {
		sub, err := r.source.ActiveSubscription(gctx, opts.UserID)
		if err != nil {
			if opts.StrictSubscription {
				return errors.Wrap(errors.ErrCodeDataFetch, err, "load subscription")
			}
			r.logger.Debug("ignoring subscription failure", "user", opts.UserID, "error", err)
			return nil
		}
		data.Subscription = sub
		return nil
	})

	err := g.Wait()
	observability.Pipeline().OnFetchComplete(ctx, len(data.Modules), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Resolve checks access for every module and waits for all checks to
// settle. Failed checks are reported as denied and counted in the second
// return value.
func (r *Runner) Resolve(ctx context.Context, opts Options, mods []catalog.Module) (map[string]bool, int) {
	granted := make([]bool, len(mods))
	var failures atomic.Int64

	var g errgroup.Group
	if opts.AccessConcurrency > 0 {
		g.SetLimit(opts.AccessConcurrency)
	}
	for i, m := range mods {
		g.Go(func() error {
			ok, err := r.source.CheckModuleAccess(ctx, opts.UserID, m.ID)
			observability.Pipeline().OnAccessCheck(ctx, ok, err)
			if err != nil {
				failures.Add(1)
				r.logger.Debug("access check failed, locking module", "module", m.ID, "error", err)
				return nil
			}
			granted[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	grants := make(map[string]bool, len(mods))
	for i, m := range mods {
		// A duplicated id keeps the decision for its last record, matching
		// the layout's last-write-wins rule.
		grants[m.ID] = granted[i]
	}
	return grants, int(failures.Load())
}

// failed returns err, or a STALE_RESULT error when a newer run has
// already been committed so the older failure cannot replace its state.
func (r *Runner) failed(ctx context.Context, token uint64, err error) error {
	if token < r.Committed() {
		r.logger.Debug("discarding stale failure", "token", token, "error", err)
		return r.stale(ctx, token)
	}
	return err
}

func (r *Runner) stale(ctx context.Context, token uint64) error {
	observability.Pipeline().OnStaleResult(ctx, token)
	r.logger.Debug("discarding stale result", "token", token)
	return errors.New(errors.ErrCodeStale, "request %d superseded by a newer result", token)
}

// commit records token as the newest result unless a newer one is already
// committed.
func (r *Runner) commit(token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token < r.committed {
		return false
	}
	r.committed = token
	return true
}

// Committed returns the token of the newest committed run.
func (r *Runner) Committed() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.committed
}

func (r *Runner) stage(s Stage) {
	if r.onStage != nil {
		r.onStage(s)
	}
}
