package render

import (
	"github.com/matzehuels/circuitdraw/pkg/schematic"
)

// Symbol proportions, in schematic units.
const (
	leadLength    = 0.5  // straight lead at each end of a two-terminal symbol
	zigzagPeaks   = 6    // resistor body
	zigzagHeight  = 0.25 // resistor peak amplitude
	diodeHalf     = 0.35 // LED triangle half height
	contactRadius = 0.08 // switch contacts
	sourceRadius  = 0.5
	labelRise     = 0.55 // label above a horizontal symbol
	pinLabelRise  = 0.25 // pin names sit just above their stub
)

// drawPlacement appends the symbol for one placement.
func drawPlacement(d *Drawing, p *schematic.Placement) {
	switch p.Shape {
	case schematic.ShapeController:
		drawController(d, p)
	case schematic.ShapeResistor:
		drawResistor(d, p.Anchor, p.Label)
	case schematic.ShapeLED:
		drawLED(d, p.Anchor, p.Label)
	case schematic.ShapeButton:
		drawButton(d, p.Anchor, p.Label)
	case schematic.ShapeSource:
		drawSource(d, p.Anchor, p.Label)
	case schematic.ShapeGround:
		drawGround(d, p.Anchor)
	case schematic.ShapeCamera:
		drawBox(d, *p.Box, p.Label, schematic.CameraLabelGap)
	default:
		drawBox(d, *p.Box, p.Label, schematic.BlockLabelGap)
	}
}

func drawController(d *Drawing, p *schematic.Placement) {
	b := *p.Box
	d.rect(b)
	d.text(schematic.Pt(b.Center().X, b.Y1+schematic.TitleOffset), p.Label, AlignCenter)
	for _, pin := range p.Pins {
		d.line(pin.Edge, pin.Tip)
		d.circle(pin.Edge, pinDotRadius)
		if pin.Side == schematic.SideLeft {
			d.text(pin.Edge.Add(-schematic.PinLabelOffset, pinLabelRise), pin.Name, AlignRight)
		} else {
			d.text(pin.Edge.Add(schematic.PinLabelOffset, pinLabelRise), pin.Name, AlignLeft)
		}
	}
}

// twoTerminal draws the leads of a left-to-right symbol and returns the
// inner span available for the body.
func twoTerminal(d *Drawing, a schematic.Point) (schematic.Point, schematic.Point) {
	end := a.Add(schematic.TwoTerminalSpan, 0)
	in, out := a.Add(leadLength, 0), end.Add(-leadLength, 0)
	d.line(a, in)
	d.line(out, end)
	return in, out
}

func drawResistor(d *Drawing, a schematic.Point, label string) {
	in, out := twoTerminal(d, a)
	step := (out.X - in.X) / zigzagPeaks
	pts := []schematic.Point{in}
	for i := 0; i < zigzagPeaks; i++ {
		dy := zigzagHeight
		if i%2 == 1 {
			dy = -zigzagHeight
		}
		pts = append(pts, schematic.Pt(in.X+(float64(i)+0.5)*step, a.Y+dy))
	}
	pts = append(pts, out)
	d.polyline(pts...)
	d.text(a.Add(schematic.TwoTerminalSpan/2, labelRise), label, AlignCenter)
}

func drawLED(d *Drawing, a schematic.Point, label string) {
	in, out := twoTerminal(d, a)
	mid := (in.X + out.X) / 2
	left, right := mid-diodeHalf, mid+diodeHalf
	d.line(in, schematic.Pt(left, a.Y))
	d.line(schematic.Pt(right, a.Y), out)
	d.polyline(
		schematic.Pt(left, a.Y+diodeHalf),
		schematic.Pt(right, a.Y),
		schematic.Pt(left, a.Y-diodeHalf),
		schematic.Pt(left, a.Y+diodeHalf),
	)
	d.line(schematic.Pt(right, a.Y+diodeHalf), schematic.Pt(right, a.Y-diodeHalf))
	for _, dx := range []float64{-0.1, 0.15} {
		tail := schematic.Pt(mid+dx, a.Y+diodeHalf+0.05)
		head := tail.Add(0.3, 0.3)
		d.line(tail, head)
		d.line(head, head.Add(-0.12, 0))
		d.line(head, head.Add(0, -0.12))
	}
	d.text(a.Add(schematic.TwoTerminalSpan/2, labelRise+0.25), label, AlignCenter)
}

func drawButton(d *Drawing, a schematic.Point, label string) {
	in, out := twoTerminal(d, a)
	d.circle(in, contactRadius)
	d.circle(out, contactRadius)
	d.line(in, out.Add(-0.1, 0.45))
	d.text(a.Add(schematic.TwoTerminalSpan/2, labelRise+0.2), label, AlignCenter)
}

// drawSource draws a vertical source from a (positive) down to a-SourceSpan.
func drawSource(d *Drawing, a schematic.Point, label string) {
	c := a.Add(0, -schematic.SourceSpan/2)
	d.line(a, c.Add(0, sourceRadius))
	d.line(c.Add(0, -sourceRadius), a.Add(0, -schematic.SourceSpan))
	d.circle(c, sourceRadius)
	plus := c.Add(0, 0.22)
	d.line(plus.Add(-0.1, 0), plus.Add(0.1, 0))
	d.line(plus.Add(0, -0.1), plus.Add(0, 0.1))
	minus := c.Add(0, -0.22)
	d.line(minus.Add(-0.1, 0), minus.Add(0.1, 0))
	d.text(c.Add(sourceRadius+0.3, 0), label, AlignLeft)
}

func drawGround(d *Drawing, a schematic.Point) {
	d.line(a, a.Add(0, -0.4))
	for i, w := range []float64{0.8, 0.5, 0.2} {
		y := a.Y - 0.4 - float64(i)*0.15
		d.line(schematic.Pt(a.X-w/2, y), schematic.Pt(a.X+w/2, y))
	}
}

func drawBox(d *Drawing, b schematic.Box, label string, gap float64) {
	d.rect(b)
	d.text(schematic.Pt(b.Center().X, b.Y1+gap), label, AlignCenter)
}

func drawWire(d *Drawing, w schematic.Wire) {
	for _, s := range w.Segments {
		d.line(s.From, s.To)
	}
	d.dot(w.Junction, junctionSize)
}
