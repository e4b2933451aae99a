package layout

import (
	"github.com/matzehuels/moduletree/pkg/errors"
)

// Default layout constants, in world units.
const (
	DefaultNodeWidth      = 160
	DefaultNodeHeight     = 70
	DefaultLevelSpacing   = 140
	DefaultNodeSpacing    = 220
	DefaultTopMargin      = 50
	DefaultLeftMargin     = 50
	DefaultReferenceWidth = 1000
)

// Config holds the geometry used to place nodes.
type Config struct {
	NodeWidth      float64 `json:"node_width" toml:"node_width"`
	NodeHeight     float64 `json:"node_height" toml:"node_height"`
	LevelSpacing   float64 `json:"level_spacing" toml:"level_spacing"`
	NodeSpacing    float64 `json:"node_spacing" toml:"node_spacing"`
	TopMargin      float64 `json:"top_margin" toml:"top_margin"`
	LeftMargin     float64 `json:"left_margin" toml:"left_margin"`
	ReferenceWidth float64 `json:"reference_width" toml:"reference_width"`
}

// DefaultConfig returns the standard geometry.
func DefaultConfig() Config {
	return Config{
		NodeWidth:      DefaultNodeWidth,
		NodeHeight:     DefaultNodeHeight,
		LevelSpacing:   DefaultLevelSpacing,
		NodeSpacing:    DefaultNodeSpacing,
		TopMargin:      DefaultTopMargin,
		LeftMargin:     DefaultLeftMargin,
		ReferenceWidth: DefaultReferenceWidth,
	}
}

// WithDefaults fills zero fields from [DefaultConfig].
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.NodeWidth == 0 {
		c.NodeWidth = d.NodeWidth
	}
	if c.NodeHeight == 0 {
		c.NodeHeight = d.NodeHeight
	}
	if c.LevelSpacing == 0 {
		c.LevelSpacing = d.LevelSpacing
	}
	if c.NodeSpacing == 0 {
		c.NodeSpacing = d.NodeSpacing
	}
	if c.TopMargin == 0 {
		c.TopMargin = d.TopMargin
	}
	if c.LeftMargin == 0 {
		c.LeftMargin = d.LeftMargin
	}
	if c.ReferenceWidth == 0 {
		c.ReferenceWidth = d.ReferenceWidth
	}
	return c
}

// Validate checks that nodes cannot overlap: a node must be shorter than the
// level spacing and narrower than the node spacing.
func (c Config) Validate() error {
	switch {
	case c.NodeWidth <= 0 || c.NodeHeight <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "node size must be positive")
	case c.NodeHeight >= c.LevelSpacing:
		return errors.New(errors.ErrCodeInvalidConfig,
			"node height %g must be less than level spacing %g", c.NodeHeight, c.LevelSpacing)
	case c.NodeWidth >= c.NodeSpacing:
		return errors.New(errors.ErrCodeInvalidConfig,
			"node width %g must be less than node spacing %g", c.NodeWidth, c.NodeSpacing)
	case c.TopMargin < 0 || c.LeftMargin < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "margins must not be negative")
	}
	return nil
}

// Option configures an [Engine].
type Option func(*Config)

// WithConfig replaces the whole geometry. Zero fields take defaults.
func WithConfig(c Config) Option {
	return func(dst *Config) { *dst = c.WithDefaults() }
}

// WithNodeSize sets the node box size.
func WithNodeSize(w, h float64) Option {
	return func(c *Config) { c.NodeWidth, c.NodeHeight = w, h }
}

// WithSpacing sets the vertical distance between levels and the horizontal
// distance between nodes on the same level.
func WithSpacing(level, node float64) Option {
	return func(c *Config) { c.LevelSpacing, c.NodeSpacing = level, node }
}

// WithMargins sets the top and left margins.
func WithMargins(top, left float64) Option {
	return func(c *Config) { c.TopMargin, c.LeftMargin = top, left }
}

// WithReferenceWidth sets the width rows are centered in.
func WithReferenceWidth(w float64) Option {
	return func(c *Config) { c.ReferenceWidth = w }
}
