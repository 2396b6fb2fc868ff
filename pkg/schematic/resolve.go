package schematic

import "github.com/matzehuels/circuitdraw/pkg/netlist"

// Resolve maps a pin reference onto a coordinate of l.
//
// It reports false, and never panics, for malformed references, unknown
// component ids, controller pins that were not drawn, and bare references to
// a controller (a controller has no primary terminal).
func Resolve(ref string, l *Layout) (Point, bool) {
	r, ok := netlist.ParseRef(ref)
	if !ok {
		return Point{}, false
	}
	p, ok := l.Placement(r.Component)
	if !ok {
		return Point{}, false
	}
	return p.Terminal(r.Pin, r.HasPin)
}

// Terminal returns the coordinate of a named pin, or of the default terminal
// when hasPin is false.
func (p *Placement) Terminal(pin string, hasPin bool) (Point, bool) {
	if p.Shape == ShapeController {
		if !hasPin {
			return Point{}, false
		}
		return p.Pin(pin)
	}
	if off, ok := fixedTaps[p.Kind]; ok {
		return p.Anchor.Offset(off), true
	}
	if rule, ok := terminalRules[p.Kind]; ok && hasPin && !rule.primary[pin] {
		return p.Anchor.Offset(rule.second), true
	}
	return p.Anchor, true
}
