// Package render draws schematic scenes and writes them to image files.
//
// # Overview
//
// Rendering runs in two steps. [Draw] turns a [schematic.Scene] into a
// [Drawing], a display list of four primitives: lines, open circles, filled
// dots and text. Every symbol (resistor, LED, switch, source, ground, boxes)
// is composed from those primitives only. An encoder then rasterizes or
// serializes the drawing:
//
//   - PNG via github.com/fogleman/gg, labels set in Go Regular
//   - SVG, written directly
//   - PDF, converted from the SVG with rsvg-convert
//
// # Usage
//
//	r, err := render.New(render.Config{OutputPath: "out/circuit.png", Headless: true})
//	if err != nil {
//	    return err
//	}
//	path, err := r.Render(nl)
//
// The format is chosen from the output extension (see [FormatFromPath]).
//
// # Placeholder Policy
//
// If a scene yields nothing to draw (no components, nothing resolvable), the
// drawing gets a single resistor labelled "R". An empty result therefore
// never produces a blank image, and a blank image always means something
// went wrong.
//
// # Failure Model
//
// Files are written to a temporary file in the destination directory and
// renamed into place, so a failed render never leaves a partial file at the
// output path. Rendering is deterministic and never retried.
//
// # Connectivity View
//
// The [nodelink] subpackage renders the netlist as a Graphviz graph instead
// of a schematic.
//
// [nodelink]: github.com/matzehuels/circuitdraw/pkg/render/nodelink
package render
