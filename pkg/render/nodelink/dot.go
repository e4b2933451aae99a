package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/moduletree/pkg/layout"
	"github.com/matzehuels/moduletree/pkg/render/canvas"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the level and caption to node labels.
	Detailed bool
	// Palette colors the nodes. The zero value means canvas.DefaultPalette.
	Palette *canvas.Palette
	// Labels are the captions used with Detailed.
	Labels *canvas.Labels
}

// ToDOT converts a computed tree to Graphviz DOT. Nodes and edges follow
// the graph's input order.
func ToDOT(g *layout.Graph, opts Options) string {
	pal := canvas.DefaultPalette()
	if opts.Palette != nil {
		pal = *opts.Palette
	}
	labels := canvas.DefaultLabels()
	if opts.Labels != nil {
		labels = *opts.Labels
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", hexColor(pal.Background))
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, arrowsize=0.6];\n", hexColor(pal.Connection))
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, pal, labels, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *layout.Node, pal canvas.Palette, labels canvas.Labels, detailed bool) []string {
	st := pal.Style(n.State)
	label := n.Title
	if label == "" {
		label = n.ID
	}
	if detailed {
		label = fmt.Sprintf("%s\n%s\nlevel %d", label, labels.Caption(n.Module), n.Level)
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", hexColor(st.Fill)),
		fmt.Sprintf("color=%q", hexColor(st.Border)),
		fmt.Sprintf("fontcolor=%q", hexColor(st.Text)),
	}
	if !n.Reachable {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

func hexColor(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Hex()
}

// RenderSVG renders DOT source to SVG with an embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a
// pixel-sized one so browsers scale the diagram predictably.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
