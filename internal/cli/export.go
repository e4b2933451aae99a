package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moduletree/pkg/catalog"
	"github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/graph"
	"github.com/matzehuels/moduletree/pkg/layout"
	"github.com/matzehuels/moduletree/pkg/render/nodelink"
)

// Export formats.
const (
	formatDOT   = "dot"
	formatSVG   = "svg"
	formatGraph = "graph"
	formatJSON  = "json"
)

var exportFormats = []string{formatDOT, formatSVG, formatGraph, formatJSON}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the module tree as DOT, SVG or JSON",
		Long: `Export the module tree.

Formats:
  dot    Graphviz DOT, nodes colored by access state
  svg    the DOT rendered by Graphviz
  graph  the module list with parent links (no user state)
  json   a node-link layout carrying the DOT source`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validExportFormat(format) {
				return errors.New(errors.ErrCodeInvalidInput, "invalid format %q (want dot, svg, graph or json)", format)
			}
			return c.runExport(cmd.Context(), format, output, detailed, refresh)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatDOT, "output format: dot, svg, graph, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add captions and levels to node labels")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached responses")

	return cmd
}

func validExportFormat(f string) bool { return slices.Contains(exportFormats, f) }

func (c *CLI) runExport(ctx context.Context, format, output string, detailed, refresh bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	res, err := c.loadTree(ctx, cfg, refresh, stageLogger(loggerFromContext(ctx)))
	if err != nil {
		return err
	}

	l := labels(cfg)
	data, err := exportTree(ctx, res.Graph, format, nodelink.Options{Detailed: detailed, Labels: &l})
	if err != nil {
		return err
	}

	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	printSuccess("Exported %s", format)
	printFile(output)
	return nil
}

// exportTree encodes g in format.
func exportTree(ctx context.Context, g *layout.Graph, format string, opts nodelink.Options) ([]byte, error) {
	switch format {
	case formatDOT:
		return []byte(nodelink.ToDOT(g, opts)), nil
	case formatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(g, opts))
	case formatGraph:
		mods := make([]catalog.Module, 0, g.Len())
		for _, n := range g.Nodes() {
			mods = append(mods, n.Module.Module)
		}
		return graph.MarshalGraph(mods)
	case formatJSON:
		l := graph.Layout{
			VizType: graph.VizTypeNodelink,
			DOT:     nodelink.ToDOT(g, opts),
			Engine:  "dot",
			Config:  g.Config(),
		}
		return graph.MarshalLayout(l)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "invalid format %q", format)
}
