package canvas

import (
	"image/color"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/moduletree/pkg/access"
)

// Palette is the fixed set of colors a frame is painted with.
type Palette struct {
	Background        color.Color
	GridLine          color.Color
	GridLineSecondary color.Color
	TextPrimary       color.Color
	TextSecondary     color.Color
	Accent            color.Color
	AccentLow         color.Color
	Border            color.Color
	BorderAccent      color.Color
	FillSecondary     color.Color
	FillTernary       color.Color
	Connection        color.Color
}

func hex(s string) color.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("canvas: bad palette color " + s)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// DefaultPalette returns the dark theme.
func DefaultPalette() Palette {
	return Palette{
		Background:        hex("#141710"),
		GridLine:          hex("#32332e"),
		GridLineSecondary: hex("#20231c"),
		TextPrimary:       hex("#ffffff"),
		TextSecondary:     hex("#cccccc"),
		Accent:            hex("#3ad768"),
		AccentLow:         hex("#90ffb7"),
		Border:            hex("#32332e"),
		BorderAccent:      hex("#868b7e"),
		FillSecondary:     hex("#1a1c15"),
		FillTernary:       hex("#20231c"),
		Connection:        hex("#868b7e"),
	}
}

// NodeStyle is the fill, border and text color of one node.
type NodeStyle struct {
	Fill, Border, Text, Caption color.Color
}

// Style returns the node colors for a display state.
func (p Palette) Style(s access.State) NodeStyle {
	switch s {
	case access.Completed:
		return NodeStyle{Fill: p.Accent, Border: p.Accent, Text: p.TextPrimary, Caption: p.TextPrimary}
	case access.Available:
		return NodeStyle{Fill: p.FillSecondary, Border: p.BorderAccent, Text: p.TextPrimary, Caption: p.TextSecondary}
	case access.Free:
		return NodeStyle{Fill: p.FillSecondary, Border: p.AccentLow, Text: p.TextPrimary, Caption: p.TextSecondary}
	default:
		return NodeStyle{Fill: p.FillTernary, Border: p.Border, Text: p.TextSecondary, Caption: p.TextSecondary}
	}
}

// Labels are the caption strings shown under node titles.
type Labels struct {
	Completed string
	Locked    string
	Free      string
	Currency  string
}

// DefaultLabels returns English captions with the "S/" currency prefix.
func DefaultLabels() Labels {
	return Labels{
		Completed: "Completed",
		Locked:    "Locked",
		Free:      "Free",
		Currency:  "S/",
	}
}

// Caption returns the status line for a module.
func (l Labels) Caption(m access.Module) string {
	switch m.State {
	case access.Completed:
		return l.Completed
	case access.Available:
		return l.Currency + FormatPrice(m.Price)
	case access.Free:
		return l.Free
	default:
		return l.Locked
	}
}

// FormatPrice prints a price with the fewest digits that represent it.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
