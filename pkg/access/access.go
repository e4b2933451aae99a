// Package access derives the display state of a module from its free flag,
// the result of the user's access check, and the user's progress record.
//
// Resolution is a pure function of its inputs, so it is safe to call
// concurrently for every module of a tree.
package access

import (
	"github.com/matzehuels/moduletree/pkg/catalog"
)

// State is the display state of a module. It is always derived, never stored.
type State int

const (
	Locked State = iota
	Available
	Free
	Completed
)

var stateNames = [...]string{
	Locked:    "locked",
	Available: "available",
	Free:      "free",
	Completed: "completed",
}

func (s State) String() string {
	if int(s) < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name so JSON and TOML output stay readable.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Module is a catalog module annotated with its resolved access state.
type Module struct {
	catalog.Module
	State     State             `json:"state"`
	HasAccess bool              `json:"has_access"`
	Progress  *catalog.Progress `json:"progress,omitempty"`
}

// Completed reports whether the module resolved to the completed state.
func (m Module) Completed() bool { return m.State == Completed }

// Resolve applies the access priority rule to one module.
//
// Free modules are free or completed. Otherwise a granted module is available
// or completed, and anything else is locked, even with a completed progress
// record. HasAccess is granted || IsFree.
func Resolve(m catalog.Module, granted bool, p *catalog.Progress) Module {
	out := Module{
		Module:    m,
		HasAccess: granted || m.IsFree,
		Progress:  p,
	}
	switch {
	case m.IsFree:
		out.State = Free
	case granted:
		out.State = Available
	default:
		out.State = Locked
		return out
	}
	if p.Completed() {
		out.State = Completed
	}
	return out
}

// ResolveAll resolves every module in input order. Modules missing from
// grants are treated as not granted.
func ResolveAll(mods []catalog.Module, grants map[string]bool, progress []catalog.Progress) []Module {
	idx := catalog.ProgressIndex(progress)
	out := make([]Module, len(mods))
	for i, m := range mods {
		out[i] = Resolve(m, grants[m.ID], idx[m.ID])
	}
	return out
}

// Count tallies modules per state.
func Count(mods []Module) map[State]int {
	counts := make(map[State]int, len(stateNames))
	for _, m := range mods {
		counts[m.State]++
	}
	return counts
}
