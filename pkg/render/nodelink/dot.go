package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
	"github.com/matzehuels/circuitdraw/pkg/render"
)

// Options configures connectivity diagram rendering.
type Options struct {
	// Detailed adds the component type, model and value to node labels.
	// When false, only the component id is shown.
	Detailed bool
}

// ToDOT converts a netlist to Graphviz DOT format. Components become nodes,
// connections become undirected edges with the pin names as head and tail
// labels. The resulting DOT string can be rendered using [RenderSVG],
// [RenderPDF], or [RenderPNG].
//
// Endpoints that name a component missing from the netlist are drawn as
// dashed grey nodes so dangling references stay visible.
func ToDOT(nl *netlist.Netlist, opts Options) string {
	nl = nl.Normalize()

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=12];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	known := make(map[string]bool, len(nl.Components))
	for _, c := range nl.Components {
		if known[c.ID] {
			continue
		}
		known[c.ID] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", c.ID, strings.Join(fmtAttrs(c, opts.Detailed), ", "))
	}

	var edges bytes.Buffer
	for _, conn := range nl.Connections {
		a, okA := netlist.ParseRef(conn.A)
		b, okB := netlist.ParseRef(conn.B)
		if !okA || !okB {
			continue
		}
		for _, r := range []netlist.Ref{a, b} {
			if !known[r.Component] {
				known[r.Component] = true
				fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", r.Component, r.Component)
			}
		}
		fmt.Fprintf(&edges, "  %q -- %q [%s];\n", a.Component, b.Component, strings.Join(pinAttrs(a, b), ", "))
	}

	buf.WriteString("\n")
	buf.Write(edges.Bytes())
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(c netlist.Component, detailed bool) string {
	if !detailed {
		return c.ID
	}
	parts := []string{c.ID, string(c.Kind())}
	if c.Model != "" {
		parts = append(parts, c.Model)
	}
	if c.Value != "" {
		parts = append(parts, c.Value)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(c netlist.Component, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(c, detailed))}
	switch c.Kind() {
	case netlist.KindMicrocontroller:
		attrs = append(attrs, "fillcolor=lightblue", "penwidth=2")
	case netlist.KindVoltageSource, netlist.KindGround:
		attrs = append(attrs, "shape=ellipse")
	}
	return attrs
}

func pinAttrs(a, b netlist.Ref) []string {
	var attrs []string
	if a.HasPin {
		attrs = append(attrs, fmt.Sprintf("taillabel=%q", a.Pin))
	}
	if b.HasPin {
		attrs = append(attrs, fmt.Sprintf("headlabel=%q", b.Pin))
	}
	if len(attrs) == 0 {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := renderFormat(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders a DOT graph to PNG in-process.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the graph scales with its
// container instead of Graphviz's point-based width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
