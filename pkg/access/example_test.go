package access_test

import (
	"fmt"
	"time"

	"github.com/matzehuels/moduletree/pkg/access"
	"github.com/matzehuels/moduletree/pkg/catalog"
)

func ExampleResolve() {
	done := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d := catalog.Module{ID: "D", Title: "Intro", IsFree: true}

	m := access.Resolve(d, false, &catalog.Progress{ModuleID: "D", CompletedAt: &done})
	fmt.Println(m.State, m.HasAccess)
	// Output: completed true
}
