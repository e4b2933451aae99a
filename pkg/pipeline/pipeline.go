// Package pipeline loads a user's module tree and turns it into a
// positioned graph.
//
// # Architecture
//
// A run has three stages:
//
//  1. Fetch: the module list, the user's progress and the active
//     subscription are requested concurrently. The first failure cancels
//     the other requests and the run fails with one DATA_FETCH error.
//  2. Resolve: one access check per module, all in flight at once. Failed
//     checks count as denied. Nothing is returned until every check has
//     settled, so callers never see a partially locked tree.
//  3. Layout: access states are derived and the graph is computed.
//
// Runs are numbered. When a run finishes after a newer run has already
// been committed, its result is discarded with a STALE_RESULT error.
//
// # Usage
//
//	runner := pipeline.NewRunner(src, pipeline.WithLogger(logger))
//	res, err := runner.Execute(ctx, pipeline.Options{UserID: user})
//	if err != nil {
//	    return err
//	}
//	canvas.SetGraph(res.Graph)
package pipeline

import (
	"time"

	"github.com/matzehuels/moduletree/pkg/access"
	"github.com/matzehuels/moduletree/pkg/catalog"
	"github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/layout"
)

// =============================================================================
// Stages
// =============================================================================

// Stage is a loading step reported to the OnStage callback.
type Stage int

const (
	StageAuth Stage = iota
	StageData
	StageProcessing
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageAuth:
		return "auth"
	case StageData:
		return "data"
	case StageProcessing:
		return "processing"
	case StageComplete:
		return "complete"
	}
	return "unknown"
}

// =============================================================================
// Options
// =============================================================================

// DefaultAccessConcurrency leaves the number of in-flight access checks
// unbounded.
const DefaultAccessConcurrency = 0

// Options configures one run.
type Options struct {
	UserID string `json:"user_id"`

	// AccessConcurrency caps in-flight access checks. Zero or negative
	// means one request per module, all at once.
	AccessConcurrency int `json:"access_concurrency,omitempty"`

	// StrictSubscription makes a failed subscription lookup fail the
	// fetch like the module and progress loads, so any of the three
	// initial loads failing yields one DATA_FETCH error. By default the
	// failure is logged and the subscription is nil.
	StrictSubscription bool `json:"strict_subscription,omitempty"`

	validated bool
}

// ValidateAndSetDefaults checks the options. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateUserID(o.UserID); err != nil {
		return err
	}
	if o.AccessConcurrency < 0 {
		o.AccessConcurrency = DefaultAccessConcurrency
	}
	o.validated = true
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Data is the output of the fetch stage.
type Data struct {
	Modules      []catalog.Module
	Progress     []catalog.Progress
	Subscription *catalog.Subscription
}

// Result is the output of a committed run.
type Result struct {
	// Token is the run's sequence number.
	Token        uint64
	Modules      []access.Module
	Graph        *layout.Graph
	Subscription *catalog.Subscription
	Stats        Stats
}

// Stats contains timing and size information for a run.
type Stats struct {
	Modules      int
	Levels       int
	AccessErrors int
	FetchTime    time.Duration
	ResolveTime  time.Duration
	LayoutTime   time.Duration
}
