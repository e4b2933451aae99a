// Package file implements catalog.Source over a fixture file.
//
// Fixtures are TOML or JSON, chosen by extension:
//
//	[[modules]]
//	id = "intro"
//	title = "Introduction"
//	slug = "intro"
//	is_free = true
//
//	[[modules]]
//	id = "loops"
//	title = "Loops"
//	parent_ids = ["intro"]
//	price = 19.9
//
//	[[progress]]
//	user_id = "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10"
//	module_id = "intro"
//	completed_at = 2024-03-01T10:00:00Z
//
//	[grants]
//	"6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10" = ["loops"]
//
//	[failures]
//	access = ["loops"]   # access checks for these modules fail
//	latency_ms = 50      # delay added to every call
//
// The failures table exists so the CLI and tests can reproduce slow or
// broken backends without a network.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/moduletree/pkg/catalog"
	"github.com/matzehuels/moduletree/pkg/errors"
)

// Fixture is the decoded contents of a fixture file.
type Fixture struct {
	Modules       []catalog.Module                `json:"modules" toml:"modules"`
	Progress      []ProgressRecord                `json:"progress" toml:"progress"`
	Grants        map[string][]string             `json:"grants" toml:"grants"`
	Subscriptions map[string]catalog.Subscription `json:"subscriptions" toml:"subscriptions"`
	Failures      Failures                        `json:"failures" toml:"failures"`
}

// ProgressRecord is a progress row owned by one user.
type ProgressRecord struct {
	UserID string `json:"user_id" toml:"user_id"`
	catalog.Progress
}

// Failures injects errors and latency.
type Failures struct {
	Modules      bool     `json:"modules" toml:"modules"`
	Progress     bool     `json:"progress" toml:"progress"`
	Subscription bool     `json:"subscription" toml:"subscription"`
	Access       []string `json:"access" toml:"access"`
	LatencyMS    int      `json:"latency_ms" toml:"latency_ms"`
}

// ErrInjected is returned by calls listed in the fixture's failures table.
var ErrInjected = fmt.Errorf("injected failure")

// Source serves a Fixture. It never mutates the fixture and is safe for
// concurrent use.
type Source struct {
	fx *Fixture
}

// New returns a Source over fx.
func New(fx *Fixture) *Source {
	if fx == nil {
		fx = &Fixture{}
	}
	return &Source{fx: fx}
}

// Open reads a fixture file. The format follows the extension: .toml, or
// .json for anything else.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "fixture %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var fx *Fixture
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		fx, err = ReadTOML(f)
	} else {
		fx, err = ReadJSON(f)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "fixture %s", path)
	}
	return New(fx), nil
}

// ReadTOML decodes a TOML fixture.
func ReadTOML(r io.Reader) (*Fixture, error) {
	var fx Fixture
	if _, err := toml.NewDecoder(r).Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &fx, nil
}

// ReadJSON decodes a JSON fixture.
func ReadJSON(r io.Reader) (*Fixture, error) {
	var fx Fixture
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &fx, nil
}

// Fixture returns the underlying fixture.
func (s *Source) Fixture() *Fixture { return s.fx }

func (s *Source) ModuleList(ctx context.Context) ([]catalog.Module, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.fx.Failures.Modules {
		return nil, ErrInjected
	}
	return slices.Clone(s.fx.Modules), nil
}

func (s *Source) UserProgress(ctx context.Context, userID string) ([]catalog.Progress, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.fx.Failures.Progress {
		return nil, ErrInjected
	}
	var out []catalog.Progress
	for _, p := range s.fx.Progress {
		if p.UserID == userID {
			out = append(out, p.Progress)
		}
	}
	return out, nil
}

func (s *Source) CheckModuleAccess(ctx context.Context, userID, moduleID string) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	if slices.Contains(s.fx.Failures.Access, moduleID) {
		return false, fmt.Errorf("%w: access check for %s", ErrInjected, moduleID)
	}
	return slices.Contains(s.fx.Grants[userID], moduleID), nil
}

func (s *Source) ActiveSubscription(ctx context.Context, userID string) (*catalog.Subscription, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.fx.Failures.Subscription {
		return nil, ErrInjected
	}
	sub, ok := s.fx.Subscriptions[userID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (s *Source) wait(ctx context.Context) error {
	d := time.Duration(s.fx.Failures.LatencyMS) * time.Millisecond
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ catalog.Source = (*Source)(nil)
