package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/layout"
	"github.com/matzehuels/moduletree/pkg/render/canvas"
	"github.com/matzehuels/moduletree/pkg/tree"
	"github.com/matzehuels/moduletree/pkg/viewport"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output     string
	width      float64
	height     float64
	pixelRatio float64
	zoom       float64 // scale about the view center, 0 keeps the home scale
	pan        string  // "dx,dy" in logical pixels
	selectID   string
	hoverID    string
	script     string
	refresh    bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the module tree to PNG",
		Long: `Render the module tree to PNG.

The tree is loaded, placed on a canvas of --width x --height logical pixels
and homed on its first root. --zoom, --pan, --select and --hover adjust the
view before the frame is written. --script replays a TOML gesture file
(pointer, touch, wheel and button events) through the canvas; modules
clicked during the replay are listed after the file is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "tree.png", "output PNG file")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "canvas width in logical pixels (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "canvas height in logical pixels (default from config)")
	cmd.Flags().Float64Var(&opts.pixelRatio, "pixel-ratio", 0, "physical pixels per logical pixel (default from config)")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", 0, "scale factor, clamped to [0.3, 2]")
	cmd.Flags().StringVar(&opts.pan, "pan", "", "pan offset as dx,dy")
	cmd.Flags().StringVar(&opts.selectID, "select", "", "module id to select")
	cmd.Flags().StringVar(&opts.hoverID, "hover", "", "module id to hover")
	cmd.Flags().StringVar(&opts.script, "script", "", "gesture script (TOML) to replay")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached responses")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logger := loggerFromContext(ctx)

	var script *gestureScript
	if opts.script != "" {
		if script, err = readGestureFile(opts.script); err != nil {
			return err
		}
	}
	dx, dy, err := parsePan(opts.pan)
	if err != nil {
		return err
	}

	w, h := opts.width, opts.height
	if w <= 0 && script != nil {
		w = script.Width
	}
	if h <= 0 && script != nil {
		h = script.Height
	}
	if w <= 0 {
		w = float64(cfg.Render.Width)
	}
	if h <= 0 {
		h = float64(cfg.Render.Height)
	}

	res, err := c.loadTree(ctx, cfg, opts.refresh, stageLogger(logger))
	if err != nil {
		return err
	}

	var clicks []string
	surface := canvas.NewImageSurface(w, h)
	vp := viewport.New()
	tc := tree.New(
		tree.WithSurface(surface),
		tree.WithRenderer(newRenderer(cfg, opts.pixelRatio, logger)),
		tree.WithViewport(vp),
		tree.WithLogger(logger),
		tree.OnModuleClick(func(id string) { clicks = append(clicks, id) }),
	)
	tc.SetGraph(res.Graph)

	if opts.zoom > 0 {
		vp.SetTransform(zoomAbout(vp.Transform(), opts.zoom, viewport.Point{X: w / 2, Y: h / 2}))
	}
	if dx != 0 || dy != 0 {
		tc.PanBy(dx, dy)
	}
	if script != nil {
		if err := script.replay(tc); err != nil {
			return err
		}
	}
	if opts.hoverID != "" {
		if err := hoverModule(tc, opts.hoverID); err != nil {
			return err
		}
	}
	if opts.selectID != "" {
		if err := tc.Select(opts.selectID); err != nil {
			return err
		}
	}
	tc.Redraw()

	frame := surface.Frame()
	if frame == nil {
		return errors.New(errors.ErrCodeInvalidInput, "canvas has no drawable area (%gx%g)", w, h)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.output, err)
	}
	if err := canvas.WritePNG(f, frame); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	printSuccess("Rendered at %d%%", tc.ZoomPercent())
	printFile(opts.output)
	printTreeStats(res)
	for _, id := range clicks {
		printDetail("clicked %s", id)
	}
	return nil
}

// zoomAbout sets the scale to s, keeping the world point under center
// fixed on screen.
func zoomAbout(t viewport.Transform, s float64, center viewport.Point) viewport.Transform {
	s = viewport.Clamp(s)
	world := t.ScreenToWorld(center)
	return viewport.Transform{
		Scale:     s,
		Translate: viewport.Point{X: center.X - world.X*s, Y: center.Y - world.Y*s},
	}
}

// hoverModule moves the pointer over the center of module id.
func hoverModule(tc *tree.Canvas, id string) error {
	g := tc.Graph()
	n, ok := g.Node(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "module %q not found", id)
	}
	r := canvas.NodeRect(g, tc.Viewport().Transform, n)
	center := layout.Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
	tc.Pointer(tree.PointerEvent{Kind: tree.PointerMove, X: center.X, Y: center.Y})
	return nil
}

// parsePan parses "dx,dy". An empty string is no offset.
func parsePan(s string) (float64, float64, error) {
	if s == "" {
		return 0, 0, nil
	}
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "pan %q: want dx,dy", s)
	}
	dx, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "pan %q", s)
	}
	dy, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "pan %q", s)
	}
	return dx, dy, nil
}
