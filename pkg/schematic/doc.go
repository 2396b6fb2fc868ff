// Package schematic turns a netlist into schematic geometry.
//
// # Overview
//
// The package is the core of circuitdraw. It runs three steps, each a pure
// function of its inputs:
//
//  1. [Compute] places every component (the layout engine).
//  2. [Resolve] maps a pin reference onto a coordinate of that layout.
//  3. [Route] joins two coordinates with an L-shaped orthogonal wire.
//
// [Build] runs all three over a netlist and returns a [Scene], the complete
// geometry that the render package draws.
//
// # Coordinates
//
// All coordinates are in abstract schematic units with y growing upwards.
// The controller box is centred on the origin; every other component is
// stacked in a single column to its right.
//
// # Controller Layout
//
// The first microcontroller in the netlist gets a 10×8 box. Only the pins
// referenced by a connection are drawn. Pins are taken from the profile
// table for the controller's model family (see [ProfileFor]) and placed in
// profile order, evenly spaced down the left and right edges:
//
//	y = top - (i+1) * height/(N+1)
//
// Each pin gets a short stub; wires attach to the stub tip, not the box edge.
//
// # Failure Model
//
// Nothing in this package returns an error. References that cannot be
// resolved are reported as unresolved and the affected connection is skipped
// (see [Scene.Skipped]). Layout is deterministic: the same netlist always
// yields the same scene.
package schematic
