// Package nodelink renders netlists as connectivity diagrams.
//
// # Overview
//
// Where the schematic view places symbols on a fixed grid, this view lets
// Graphviz arrange components freely: every component is a node and every
// connection an edge labelled with the pins it joins. It is useful for
// checking what an LLM-generated netlist actually connects, independent of
// the schematic layout rules.
//
// # Usage
//
//	dot := nodelink.ToDOT(nl, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// PNG is rendered in-process by Graphviz; PDF goes through rsvg-convert:
//
//	png, err := nodelink.RenderPNG(ctx, dot)
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] (Graphviz compiled to
// WebAssembly) for in-process rendering.
package nodelink
