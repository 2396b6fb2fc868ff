package render

import (
	"unicode/utf8"

	"github.com/matzehuels/circuitdraw/pkg/schematic"
)

// Align is the horizontal anchoring of a text label.
type Align int

const (
	AlignCenter Align = iota
	AlignLeft         // text starts at the anchor
	AlignRight        // text ends at the anchor
)

// Text metrics in schematic units, used for bounds and font sizing.
const (
	TextHeight   = 0.5
	charWidth    = 0.28
	pinDotRadius = 0.12
	junctionSize = 0.12
)

// Line is a straight stroke.
type Line struct {
	From, To schematic.Point
}

// Circle is a stroked or filled circle.
type Circle struct {
	Center schematic.Point
	Radius float64
	Filled bool
}

// Text is a label whose baseline is vertically centred on At.
type Text struct {
	At    schematic.Point
	Value string
	Align Align
}

// Drawing is a display list in schematic units, y up.
type Drawing struct {
	Lines   []Line
	Circles []Circle
	Texts   []Text

	// Placeholder reports that the drawing holds only the placeholder symbol.
	Placeholder bool
}

func (d *Drawing) line(a, b schematic.Point) {
	d.Lines = append(d.Lines, Line{From: a, To: b})
}

// polyline strokes consecutive points.
func (d *Drawing) polyline(pts ...schematic.Point) {
	for i := 1; i < len(pts); i++ {
		d.line(pts[i-1], pts[i])
	}
}

// rect strokes a box as four lines.
func (d *Drawing) rect(b schematic.Box) {
	for _, e := range b.Edges() {
		d.line(e.From, e.To)
	}
}

func (d *Drawing) circle(c schematic.Point, r float64) {
	d.Circles = append(d.Circles, Circle{Center: c, Radius: r})
}

func (d *Drawing) dot(c schematic.Point, r float64) {
	d.Circles = append(d.Circles, Circle{Center: c, Radius: r, Filled: true})
}

func (d *Drawing) text(at schematic.Point, s string, align Align) {
	if s == "" {
		return
	}
	d.Texts = append(d.Texts, Text{At: at, Value: s, Align: align})
}

// Len returns the number of primitives.
func (d *Drawing) Len() int {
	return len(d.Lines) + len(d.Circles) + len(d.Texts)
}

// Bounds returns the box enclosing every primitive, with text extents
// estimated from the label length.
func (d *Drawing) Bounds() schematic.Box {
	var b schematic.Box
	first := true
	add := func(box schematic.Box) {
		if first {
			b, first = box, false
			return
		}
		b = b.Union(box)
	}
	for _, l := range d.Lines {
		add(schematic.Box{X0: l.From.X, Y0: l.From.Y, X1: l.From.X, Y1: l.From.Y}.Extend(l.To))
	}
	for _, c := range d.Circles {
		add(schematic.BoxAround(c.Center, 2*c.Radius, 2*c.Radius))
	}
	for _, t := range d.Texts {
		add(textBox(t))
	}
	return b
}

func textBox(t Text) schematic.Box {
	w := float64(utf8.RuneCountInString(t.Value)) * charWidth
	x0 := t.At.X - w/2
	switch t.Align {
	case AlignLeft:
		x0 = t.At.X
	case AlignRight:
		x0 = t.At.X - w
	}
	return schematic.Box{X0: x0, Y0: t.At.Y - TextHeight/2, X1: x0 + w, Y1: t.At.Y + TextHeight/2}
}
