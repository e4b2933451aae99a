package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/moduletree/pkg/access"
	"github.com/matzehuels/moduletree/pkg/layout"
	"github.com/matzehuels/moduletree/pkg/pipeline"
	"github.com/matzehuels/moduletree/pkg/render/canvas"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, completed modules
	colorMint   = lipgloss.Color("121") // Mint - free modules
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text, locked modules
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// stateStyles color module names by access state.
var stateStyles = map[access.State]lipgloss.Style{
	access.Completed: lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
	access.Available: lipgloss.NewStyle().Foreground(colorCyan),
	access.Free:      lipgloss.NewStyle().Foreground(colorMint),
	access.Locked:    lipgloss.NewStyle().Foreground(colorDim),
}

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}

// =============================================================================
// Tree Summaries
// =============================================================================

// printTreeStats prints module, level and state counts on one line.
func printTreeStats(res *pipeline.Result) {
	fmt.Println("  " + treeStats(res))
	if res.Stats.AccessErrors > 0 {
		printWarning("Some access checks failed; those modules are shown locked")
	}
}

func treeStats(res *pipeline.Result) string {
	parts := []string{
		pluralize(res.Stats.Modules, "module", "modules"),
		pluralize(res.Stats.Levels, "level", "levels"),
	}
	counts := access.Count(res.Modules)
	for _, st := range []access.State{access.Completed, access.Available, access.Free, access.Locked} {
		if n := counts[st]; n > 0 {
			parts = append(parts, stateStyles[st].Render(fmt.Sprintf("%d %s", n, st)))
		}
	}
	if res.Stats.AccessErrors > 0 {
		parts = append(parts, StyleWarning.Render(pluralize(res.Stats.AccessErrors, "access error", "access errors")))
	}

	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(part)
	}
	return b.String()
}

// levelTable renders one row per module, grouped by level.
func levelTable(g *layout.Graph, labels canvas.Labels) string {
	var rows [][]string
	var states []access.State
	for lvl, ids := range g.Levels() {
		for _, id := range ids {
			n, _ := g.Node(id)
			level := strconv.Itoa(lvl)
			if !n.Reachable {
				level = "-"
			}
			rows = append(rows, []string{
				level,
				n.Title,
				n.State.String(),
				labels.Caption(n.Module),
				fmt.Sprintf("%.0f,%.0f", n.Position.X, n.Position.Y),
			})
			states = append(states, n.State)
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Level", "Module", "State", "Caption", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 1 && row >= 0 && row < len(states) {
				return stateStyles[states[row]]
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})
	return t.Render()
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
