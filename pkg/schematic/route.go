package schematic

// Wire is one routed connection.
type Wire struct {
	From     string    `json:"from"`
	To       string    `json:"to"`
	Segments []Segment `json:"segments"`
	Junction Point     `json:"junction"` // filled dot at the destination
}

// Route joins p1 and p2 with an L-shaped orthogonal path: a horizontal run
// to (p2.X, p1.Y) followed by a vertical run to p2. It always returns
// exactly two segments; either may have zero length.
func Route(p1, p2 Point) []Segment {
	corner := Pt(p2.X, p1.Y)
	return []Segment{
		{From: p1, To: corner},
		{From: corner, To: p2},
	}
}
