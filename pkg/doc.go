// Package pkg provides the core libraries for circuitdraw.
//
// # Overview
//
// circuitdraw turns a plain-language circuit request such as "Arduino blink
// an LED on D13" into a netlist, a schematic image, a short explanation and a
// starter Arduino sketch. The pkg directory is organized into three areas:
//
//  1. Domain logic: [netlist], [schematic], [render], [source], [explain], [firmware]
//  2. Infrastructure: [cache], [history], [storage], [llm], [httputil], [observability]
//  3. Orchestration: [pipeline]
//
// # Architecture
//
// The data flow of one generation:
//
//	Request text
//	     ↓
//	[source] package (language model, keyword rules as fallback)
//	     ↓
//	[netlist] package (components + pin connections)
//	     ↓                          ↘
//	[schematic] package (layout,     [explain], [firmware] packages
//	 pin resolution, routing)          (text from the model or templates)
//	     ↓
//	[render] package (PNG, SVG, PDF)
//	     ↓
//	[storage], [history] packages (signed link, run record)
//
// # Quick Start
//
// Build a netlist with the rule builder and draw it:
//
//	nl := source.BuildRules("Arduino Uno blink an LED on D13")
//
//	r, _ := render.New(render.Config{Headless: true})
//	path, err := r.RenderTo(nl, "blink.png")
//
// Or run the whole pipeline, texts included:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	runner.Source = source.Rules{}
//	res, err := runner.Execute(ctx, pipeline.Options{Request: "9V battery and an LED"})
//
// # Main Packages
//
// [netlist] - The canonical circuit description and its JSON wire format.
// Pin references are "id" or "id:pin".
//
// [schematic] - Deterministic placement: the first microcontroller becomes a
// box with pin stubs on both sides, every other part goes into a column to its
// right. [schematic.Resolve] maps pin references to coordinates and
// [schematic.Route] draws two-segment orthogonal wires.
//
// [render] - Turns a scene into drawing primitives and encodes them as PNG
// (fogleman/gg), SVG or PDF. [render/nodelink] draws the connectivity graph
// with Graphviz instead.
//
// [source] - Netlist sources: the language model, the keyword rule builder, a
// fallback chain and a cache wrapper.
//
// [pipeline] - The end-to-end runner shared by the CLI and the HTTP service.
//
// [cache] - File and Redis caches for netlists, texts and images.
//
// [history] - File and MongoDB stores of past generations.
//
// [storage] - Publishing images behind HMAC-signed links.
//
// # Testing
//
//	go test ./pkg/...                  # All tests
//	go test ./pkg/schematic/...        # Specific package
package pkg
