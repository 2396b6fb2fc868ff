package schematic

import (
	"fmt"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

// Skip records a connection that was not drawn.
type Skip struct {
	Connection netlist.Connection `json:"connection"`
	Reason     string             `json:"reason"`
}

// Scene is the resolved geometry of one netlist.
type Scene struct {
	Placements []*Placement `json:"placements"`
	Wires      []Wire       `json:"wires"`
	Skipped    []Skip       `json:"skipped,omitempty"`

	// Placeholder is set when nothing would be drawn; renderers then emit a
	// single placeholder symbol instead of a blank image.
	Placeholder bool `json:"placeholder"`
}

// Build lays out nl, resolves every connection and routes the resolvable
// ones. A connection with any unresolved endpoint is skipped as a whole.
func Build(nl *netlist.Netlist) *Scene {
	l := Compute(nl)
	s := &Scene{Placements: l.Placements, Wires: []Wire{}}

	if nl != nil {
		for _, conn := range nl.Connections {
			p1, ok1 := Resolve(conn.A, l)
			p2, ok2 := Resolve(conn.B, l)
			switch {
			case !ok1:
				s.Skipped = append(s.Skipped, Skip{Connection: conn, Reason: unresolved(conn.A)})
			case !ok2:
				s.Skipped = append(s.Skipped, Skip{Connection: conn, Reason: unresolved(conn.B)})
			default:
				s.Wires = append(s.Wires, Wire{From: conn.A, To: conn.B, Segments: Route(p1, p2), Junction: p2})
			}
		}
	}

	s.Placeholder = len(s.Placements) == 0 && len(s.Wires) == 0
	return s
}

func unresolved(ref string) string {
	return fmt.Sprintf("unresolved endpoint %q", ref)
}
