package catalog

import (
	"context"
	"time"
)

// Module is a learning-unit descriptor as delivered by a Source.
type Module struct {
	ID              string   `json:"id" toml:"id" bson:"id"`
	Title           string   `json:"title" toml:"title" bson:"title"`
	Slug            string   `json:"slug" toml:"slug" bson:"slug"`
	Description     string   `json:"description" toml:"description" bson:"description"`
	ThumbnailURL    string   `json:"thumbnail_url,omitempty" toml:"thumbnail_url" bson:"thumbnail_url,omitempty"`
	BackgroundColor string   `json:"background_color" toml:"background_color" bson:"background_color"`
	Price           float64  `json:"price" toml:"price" bson:"price"`
	IsFree          bool     `json:"is_free" toml:"is_free" bson:"is_free"`
	ParentIDs       []string `json:"parent_ids" toml:"parent_ids" bson:"parent_ids"`
}

// IsRoot reports whether the module has no prerequisites.
func (m Module) IsRoot() bool { return len(m.ParentIDs) == 0 }

// Progress is a user's progress through one module.
type Progress struct {
	ModuleID           string     `json:"module_id" toml:"module_id" bson:"module_id"`
	CompletedExercises []string   `json:"completed_exercises" toml:"completed_exercises" bson:"completed_exercises"`
	LastPosition       int        `json:"last_position" toml:"last_position" bson:"last_position"`
	StartedAt          *time.Time `json:"started_at,omitempty" toml:"started_at" bson:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty" toml:"completed_at" bson:"completed_at,omitempty"`
}

// Completed reports whether the record carries a completion timestamp.
// A nil record is not completed.
func (p *Progress) Completed() bool {
	return p != nil && p.CompletedAt != nil
}

// Subscription is the user's active subscription. Its contents are not
// interpreted by the core; it is carried alongside the tree for callers.
type Subscription struct {
	ID        string         `json:"id" toml:"id" bson:"id"`
	Plan      string         `json:"plan,omitempty" toml:"plan" bson:"plan,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty" toml:"expires_at" bson:"expires_at,omitempty"`
	Extra     map[string]any `json:"extra,omitempty" toml:"extra" bson:"extra,omitempty"`
}

// Source fetches modules, progress, access decisions and subscriptions.
//
// CheckModuleAccess is called once per module per refresh. ActiveSubscription
// returns (nil, nil) when the user has no subscription.
type Source interface {
	ModuleList(ctx context.Context) ([]Module, error)
	UserProgress(ctx context.Context, userID string) ([]Progress, error)
	CheckModuleAccess(ctx context.Context, userID, moduleID string) (bool, error)
	ActiveSubscription(ctx context.Context, userID string) (*Subscription, error)
}

// ProgressIndex maps module ids to progress records. When several records
// share a module id the last one wins.
func ProgressIndex(records []Progress) map[string]*Progress {
	idx := make(map[string]*Progress, len(records))
	for i := range records {
		idx[records[i].ModuleID] = &records[i]
	}
	return idx
}
