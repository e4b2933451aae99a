package access

import (
	"testing"
	"time"

	"github.com/matzehuels/moduletree/pkg/catalog"
)

func completedAt() *catalog.Progress {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &catalog.Progress{ModuleID: "m", CompletedAt: &now}
}

func TestResolve(t *testing.T) {
	inProgress := &catalog.Progress{ModuleID: "m", CompletedExercises: []string{"e1"}}

	tests := []struct {
		name          string
		free          bool
		granted       bool
		progress      *catalog.Progress
		wantState     State
		wantHasAccess bool
	}{
		{"free no progress", true, false, nil, Free, true},
		{"free completed", true, false, completedAt(), Completed, true},
		{"free completed granted", true, true, completedAt(), Completed, true},
		{"free in progress", true, false, inProgress, Free, true},
		{"granted no progress", false, true, nil, Available, true},
		{"granted completed", false, true, completedAt(), Completed, true},
		{"granted in progress", false, true, inProgress, Available, true},
		{"denied no progress", false, false, nil, Locked, false},
		{"denied completed", false, false, completedAt(), Locked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := catalog.Module{ID: "m", IsFree: tt.free, Price: 10}
			got := Resolve(m, tt.granted, tt.progress)
			if got.State != tt.wantState {
				t.Errorf("State = %v, want %v", got.State, tt.wantState)
			}
			if got.HasAccess != tt.wantHasAccess {
				t.Errorf("HasAccess = %v, want %v", got.HasAccess, tt.wantHasAccess)
			}
			if got.ID != "m" {
				t.Errorf("ID = %q, want m", got.ID)
			}
		})
	}
}

func TestResolveAll(t *testing.T) {
	mods := []catalog.Module{
		{ID: "A"},
		{ID: "B", ParentIDs: []string{"A"}},
		{ID: "C", ParentIDs: []string{"A"}},
	}
	got := ResolveAll(mods, map[string]bool{"A": true, "B": true}, nil)

	want := []State{Available, Available, Locked}
	for i, w := range want {
		if got[i].State != w {
			t.Errorf("%s: State = %v, want %v", got[i].ID, got[i].State, w)
		}
	}
}

func TestResolveAllAccessFailureLocksCompleted(t *testing.T) {
	p := completedAt()
	p.ModuleID = "M"
	got := ResolveAll([]catalog.Module{{ID: "M", Price: 5}}, map[string]bool{}, []catalog.Progress{*p})
	if got[0].State != Locked {
		t.Errorf("State = %v, want locked", got[0].State)
	}
	if got[0].Progress == nil {
		t.Error("progress record should still be attached")
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Locked:    "locked",
		Available: "available",
		Free:      "free",
		Completed: "completed",
		State(42): "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestCount(t *testing.T) {
	mods := ResolveAll([]catalog.Module{
		{ID: "a", IsFree: true},
		{ID: "b"},
		{ID: "c"},
	}, map[string]bool{"b": true}, nil)
	c := Count(mods)
	if c[Free] != 1 || c[Available] != 1 || c[Locked] != 1 {
		t.Errorf("Count = %v", c)
	}
}
