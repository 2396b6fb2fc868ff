package schematic

import (
	"strings"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

// Shape selects the symbol a placement is drawn with.
type Shape string

const (
	ShapeController Shape = "controller"
	ShapeResistor   Shape = "resistor"
	ShapeLED        Shape = "led"
	ShapeButton     Shape = "button"
	ShapeSource     Shape = "voltage_source"
	ShapeGround     Shape = "gnd"
	ShapeCamera     Shape = "camera"
	ShapeBlock      Shape = "block"
)

// Side is the controller edge a pin sits on.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Pin is one drawn controller pin.
type Pin struct {
	Name string `json:"name"`
	Side Side   `json:"side"`
	Edge Point  `json:"edge"` // on the box outline
	Tip  Point  `json:"tip"`  // stub end; wires attach here
}

// Placement is the geometry assigned to one component.
//
// Controllers carry Box and Pins. Every other shape carries an Anchor;
// camera modules and generic blocks also carry the Box they are drawn as.
type Placement struct {
	ID     string       `json:"id"`
	Kind   netlist.Kind `json:"kind"`
	Shape  Shape        `json:"shape"`
	Label  string       `json:"label,omitempty"`
	Anchor Point        `json:"anchor"`
	Box    *Box         `json:"box,omitempty"`
	Pins   []Pin        `json:"pins,omitempty"`

	pinTips map[string]Point
}

// Pin returns the stub tip of a drawn controller pin.
func (p *Placement) Pin(name string) (Point, bool) {
	pt, ok := p.pinTips[name]
	return pt, ok
}

// Layout holds the placements of one render, in draw order.
type Layout struct {
	Placements []*Placement

	byID map[string]*Placement
}

// Placement looks up a placement by component id. When ids are duplicated
// the first placement wins.
func (l *Layout) Placement(id string) (*Placement, bool) {
	if l == nil {
		return nil, false
	}
	p, ok := l.byID[id]
	return p, ok
}

// Len returns the number of placements.
func (l *Layout) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Placements)
}

func (l *Layout) add(p *Placement) {
	l.Placements = append(l.Placements, p)
	if _, dup := l.byID[p.ID]; !dup {
		l.byID[p.ID] = p
	}
}

// Compute lays out a netlist. The first microcontroller is placed as the
// controller box; every other component is stacked in arrival order in the
// column at [GridX]. The netlist is normalized first, so components without
// an id are still placed.
func Compute(nl *netlist.Netlist) *Layout {
	nl = nl.Normalize()
	l := &Layout{byID: make(map[string]*Placement, len(nl.Components))}

	ctrl, hasCtrl := nl.Controller()
	if hasCtrl {
		l.add(placeController(ctrl, usedPins(nl)))
	}

	pending := hasCtrl
	row := 0
	for _, c := range nl.Components {
		if pending && c == ctrl {
			// Only the first match is the controller box. An identical
			// duplicate goes to the column like any other part.
			pending = false
			continue
		}
		l.add(placeComponent(c, Pt(GridX, GridY-float64(row)*RowStep)))
		row++
	}
	return l
}

// usedPins collects the pin names of every "id:pin" endpoint, whichever
// component it names. A "G1:GND" endpoint therefore still draws the
// controller's GND stub.
func usedPins(nl *netlist.Netlist) map[string]bool {
	used := make(map[string]bool)
	for _, conn := range nl.Connections {
		for _, s := range []string{conn.A, conn.B} {
			if ref, ok := netlist.ParseRef(s); ok && ref.HasPin {
				used[ref.Pin] = true
			}
		}
	}
	return used
}

func placeController(c netlist.Component, used map[string]bool) *Placement {
	box := BoxAround(Pt(0, 0), ControllerWidth, ControllerHeight)
	p := &Placement{
		ID:      c.ID,
		Kind:    netlist.KindMicrocontroller,
		Shape:   ShapeController,
		Label:   c.Model,
		Anchor:  box.Center(),
		Box:     &box,
		pinTips: make(map[string]Point),
	}

	profile := ProfileFor(c.Model)
	p.placeSide(SideLeft, filterUsed(profile.Left, used), box.X0, -StubLength)
	p.placeSide(SideRight, filterUsed(profile.Right, used), box.X1, StubLength)
	return p
}

func filterUsed(candidates []string, used map[string]bool) []string {
	var out []string
	for _, name := range candidates {
		if used[name] {
			out = append(out, name)
		}
	}
	return out
}

// placeSide spaces pins evenly along one edge: pin i of n sits at
// y1 - (i+1)*h/(n+1), with n=0 treated as 1.
func (p *Placement) placeSide(side Side, names []string, x, stub float64) {
	n := max(1, len(names))
	step := p.Box.Height() / float64(n+1)
	for i, name := range names {
		y := p.Box.Y1 - float64(i+1)*step
		edge := Pt(x, y)
		tip := edge.Add(stub, 0)
		p.Pins = append(p.Pins, Pin{Name: name, Side: side, Edge: edge, Tip: tip})
		if _, dup := p.pinTips[name]; !dup {
			p.pinTips[name] = tip
		}
	}
}

func placeComponent(c netlist.Component, anchor Point) *Placement {
	p := &Placement{ID: c.ID, Kind: c.Kind(), Anchor: anchor}
	switch p.Kind {
	case netlist.KindResistor:
		p.Shape, p.Label = ShapeResistor, c.Value
	case netlist.KindLED:
		p.Shape, p.Label = ShapeLED, "LED"
	case netlist.KindButton:
		p.Shape, p.Label = ShapeButton, "Button"
	case netlist.KindVoltageSource:
		p.Shape, p.Label = ShapeSource, orDefault(c.Value, "V")
	case netlist.KindGround:
		p.Shape = ShapeGround
	case netlist.KindCameraModule:
		box := BoxAround(anchor, BlockWidth, BlockHeight)
		p.Shape, p.Label, p.Box = ShapeCamera, orDefault(c.Model, DefaultCameraTag), &box
	case netlist.KindMicrocontroller:
		// A second controller is drawn as a labelled block.
		box := BoxAround(anchor, BlockWidth, BlockHeight)
		p.Shape, p.Label, p.Box = ShapeBlock, orDefault(c.Model, string(p.Kind)), &box
	default:
		box := BoxAround(anchor, BlockWidth, BlockHeight)
		p.Shape, p.Label, p.Box = ShapeBlock, orDefault(string(p.Kind), DefaultBlockText), &box
	}
	return p
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
