package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

func blink() *netlist.Netlist {
	return &netlist.Netlist{
		Components: []netlist.Component{
			{ID: "U1", Type: "microcontroller", Model: "Arduino Uno"},
			{ID: "R1", Type: "resistor", Value: "220Ω"},
			{ID: "D1", Type: "led"},
		},
		Connections: []netlist.Connection{
			netlist.Connect("U1:D13", "R1:1"),
			netlist.Connect("R1:2", "D1"),
			netlist.Connect("D1:-", "GND1:x"),
			netlist.Connect("U1:", "R1"),
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(blink(), Options{})

	for _, want := range []string{
		`graph G {`,
		`"U1" [label="U1", fillcolor=lightblue, penwidth=2];`,
		`"R1" [label="R1"];`,
		`"U1" -- "R1" [taillabel="D13", headlabel="1"];`,
		`"R1" -- "D1" [taillabel="2"];`,
		`"GND1" [label="GND1", style="rounded,filled,dashed", fillcolor=lightgrey];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Count(dot, " -- ") != 3 {
		t.Errorf("malformed connection should be dropped:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(blink(), Options{Detailed: true})
	if !strings.Contains(dot, `label="U1\nmicrocontroller\nArduino Uno"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `label="R1\nresistor\n220Ω"`) {
		t.Errorf("value missing from label:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(nil, Options{})
	if !strings.HasPrefix(dot, "graph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("unexpected DOT:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(blink(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)) {
		t.Errorf("root element not normalized:\n%s", svg[:min(len(svg), 300)])
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox:\n got %s\nwant %s", got, want)
	}
}
