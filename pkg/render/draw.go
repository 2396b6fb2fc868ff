package render

import "github.com/matzehuels/circuitdraw/pkg/schematic"

// PlaceholderLabel labels the symbol drawn when a scene is empty.
const PlaceholderLabel = "R"

// Draw converts a scene into a display list. Placements are drawn in scene
// order, then wires. If nothing was drawn the result holds a single
// placeholder resistor at the origin.
func Draw(s *schematic.Scene) *Drawing {
	d := &Drawing{}
	drew := false
	if s != nil {
		for _, p := range s.Placements {
			drawPlacement(d, p)
			drew = true
		}
		for _, w := range s.Wires {
			drawWire(d, w)
			drew = true
		}
	}
	if !drew {
		drawResistor(d, schematic.Pt(0, 0), PlaceholderLabel)
		d.Placeholder = true
	}
	return d
}
