package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// exploreCommand creates the interactive viewer command.
func (c *CLI) exploreCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the module tree in the terminal",
		Long: `Explore the module tree in the terminal.

Drag with the mouse to pan, use the wheel to zoom and click a module to
select it. Keys: +/- zoom, 0 home, arrows pan, enter visit, p purchase,
r reload, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached responses")
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, refresh bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	// The viewer owns the terminal; library logging would corrupt it.
	quiet := log.New(io.Discard)

	b, err := openBackend(ctx, cfg, refresh, loggerFromContext(ctx))
	if err != nil {
		return err
	}
	defer b.Close(context.WithoutCancel(ctx))

	l := &loader{ctx: ctx, opts: pipelineOptions(cfg)}
	l.runner = newRunner(b.source, cfg, quiet, l.onStage)

	m := newExploreModel(l, newRenderer(cfg, 1.0/cellWidth, quiet))
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	l.send = p.Send

	_, err = p.Run()
	return err
}
