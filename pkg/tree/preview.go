package tree

import (
	"math"

	"github.com/matzehuels/moduletree/pkg/access"
	"github.com/matzehuels/moduletree/pkg/layout"
)

// ExercisesPerModule is the exercise count progress percentages are
// computed against.
const ExercisesPerModule = 10

// Action is the primary action offered for a module.
type Action int

const (
	ActionVisit Action = iota
	ActionPurchase
)

func (a Action) String() string {
	if a == ActionPurchase {
		return "purchase"
	}
	return "visit"
}

// MarshalText encodes the action by name.
func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Preview is the detail view of one module.
type Preview struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Description string       `json:"description"`
	State       access.State `json:"state"`
	Badge       string       `json:"badge"`
	HasAccess   bool         `json:"has_access"`
	// ShowPrice is set for paid modules the user cannot open yet.
	ShowPrice       bool    `json:"show_price"`
	Price           float64 `json:"price"`
	Action          Action  `json:"action"`
	Exercises       int     `json:"exercises"`
	ProgressPercent int     `json:"progress_percent"`
	Level           int     `json:"level"`
	Children        int     `json:"children"`
}

var badges = map[access.State]string{
	access.Completed: "Module completed",
	access.Available: "Available",
	access.Locked:    "Restricted access",
	access.Free:      "Free access",
}

// NewPreview builds the detail view of a positioned node.
func NewPreview(n *layout.Node) Preview {
	locked := !n.HasAccess && !n.IsFree
	p := Preview{
		ID:          n.ID,
		Title:       n.Title,
		Slug:        n.Slug,
		Description: n.Description,
		State:       n.State,
		Badge:       badges[n.State],
		HasAccess:   n.HasAccess,
		ShowPrice:   locked,
		Price:       n.Price,
		Action:      ActionVisit,
		Level:       n.Level,
		Children:    len(n.ChildrenIDs),
	}
	if locked {
		p.Action = ActionPurchase
	}
	if n.Progress != nil {
		p.Exercises = len(n.Progress.CompletedExercises)
		p.ProgressPercent = ProgressPercent(p.Exercises)
	}
	return p
}

// ProgressPercent converts a completed-exercise count into a percentage of
// ExercisesPerModule, capped at 100.
func ProgressPercent(completed int) int {
	pct := int(math.Round(float64(completed) / ExercisesPerModule * 100))
	return min(max(pct, 0), 100)
}
