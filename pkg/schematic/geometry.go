package schematic

import "math"

// Point is a position in schematic units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p shifted by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Offset returns p shifted by the vector o.
func (p Point) Offset(o Point) Point { return p.Add(o.X, o.Y) }

// Near reports whether p and q coincide within floating point noise.
func (p Point) Near(q Point) bool {
	const eps = 1e-9
	return math.Abs(p.X-q.X) < eps && math.Abs(p.Y-q.Y) < eps
}

// Segment is a straight line between two points.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Horizontal reports whether the segment runs along the x axis.
func (s Segment) Horizontal() bool { return s.From.Y == s.To.Y }

// Vertical reports whether the segment runs along the y axis.
func (s Segment) Vertical() bool { return s.From.X == s.To.X }

// Box is an axis-aligned rectangle. X0,Y0 is the lower-left corner.
type Box struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// BoxAround returns the w×h box centred on c.
func BoxAround(c Point, w, h float64) Box {
	return Box{X0: c.X - w/2, Y0: c.Y - h/2, X1: c.X + w/2, Y1: c.Y + h/2}
}

func (b Box) Width() float64  { return b.X1 - b.X0 }
func (b Box) Height() float64 { return b.Y1 - b.Y0 }
func (b Box) Center() Point   { return Point{X: (b.X0 + b.X1) / 2, Y: (b.Y0 + b.Y1) / 2} }

// Edges returns the four sides as segments: bottom, right, top, left.
func (b Box) Edges() [4]Segment {
	return [4]Segment{
		{Pt(b.X0, b.Y0), Pt(b.X1, b.Y0)},
		{Pt(b.X1, b.Y0), Pt(b.X1, b.Y1)},
		{Pt(b.X1, b.Y1), Pt(b.X0, b.Y1)},
		{Pt(b.X0, b.Y1), Pt(b.X0, b.Y0)},
	}
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	return Box{
		X0: math.Min(b.X0, o.X0), Y0: math.Min(b.Y0, o.Y0),
		X1: math.Max(b.X1, o.X1), Y1: math.Max(b.Y1, o.Y1),
	}
}

// Extend returns the smallest box containing b and p.
func (b Box) Extend(p Point) Box {
	return b.Union(Box{X0: p.X, Y0: p.Y, X1: p.X, Y1: p.Y})
}
