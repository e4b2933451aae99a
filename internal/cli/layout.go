package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moduletree/pkg/graph"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		asTable bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the positioned module tree for a user",
		Long: `Compute the positioned module tree for a user.

The layout command loads the module list, the user's progress and the
per-module access checks from the configured source, derives each module's
state and assigns levels and positions. The result is written as a layout
JSON file (or printed as a table with --table).

Remote responses are cached; use --refresh to bypass cached entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), output, asTable, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&asTable, "table", false, "print a table of levels instead of JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached responses")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, output string, asTable, refresh bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Loading modules...")
	spinner.Start()
	res, err := c.loadTree(ctx, cfg, refresh, stages(spinner.OnStage, stageLogger(loggerFromContext(ctx))))
	if err != nil {
		spinner.StopWithError("Loading failed")
		return err
	}
	spinner.Stop()

	if asTable {
		fmt.Println(levelTable(res.Graph, labels(cfg)))
		printTreeStats(res)
		return nil
	}

	l := graph.Export(res.Graph)
	if output == "" {
		data, err := graph.MarshalLayout(l)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}

	if err := graph.WriteLayoutFile(l, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printTreeStats(res)
	printNewline()
	printNextStep("Render", appName+" render -o tree.png")
	return nil
}
