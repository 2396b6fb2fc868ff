package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

func encodeSVG(d *Drawing, v viewport) []byte {
	var buf bytes.Buffer
	w, h := max(v.width, 1), max(v.height, 1)
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")

	stroke := max(1, v.scale/20)
	fmt.Fprintf(&buf, `  <g stroke="black" stroke-width="%.1f" stroke-linecap="round" fill="none">`+"\n", stroke)
	for _, l := range d.Lines {
		x1, y1 := v.px(l.From)
		x2, y2 := v.px(l.To)
		fmt.Fprintf(&buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x1, y1, x2, y2)
	}
	for _, c := range d.Circles {
		x, y := v.px(c.Center)
		fill := "white"
		if c.Filled {
			fill = "black"
		}
		fmt.Fprintf(&buf, `    <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", x, y, c.Radius*v.scale, fill)
	}
	buf.WriteString("  </g>\n")

	size := TextHeight * v.scale * 0.8
	fmt.Fprintf(&buf, `  <g font-family="Go, Helvetica, Arial, sans-serif" font-size="%.1f" fill="black">`+"\n", size)
	for _, t := range d.Texts {
		x, y := v.px(t.At)
		fmt.Fprintf(&buf, `    <text x="%.1f" y="%.1f" text-anchor="%s" dominant-baseline="central">`, x, y, svgAnchor(t.Align))
		_ = xml.EscapeText(&buf, []byte(t.Value))
		buf.WriteString("</text>\n")
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func svgAnchor(a Align) string {
	switch a {
	case AlignLeft:
		return "start"
	case AlignRight:
		return "end"
	}
	return "middle"
}
