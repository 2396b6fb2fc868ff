package schematic

import (
	"testing"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

func resolveLayout() *Layout {
	return Compute(&netlist.Netlist{
		Components: []netlist.Component{
			{ID: "U1", Type: "microcontroller", Model: "Arduino Uno"},
			{ID: "R1", Type: "resistor"},        // (14, 8)
			{ID: "V1", Type: "battery"},         // (14, 5)
			{ID: "CAM1", Type: "camera_module"}, // (14, 2)
			{ID: "G", Type: "gnd"},              // (14, -1)
			{ID: "M1", Type: "motor"},           // (14, -4)
		},
		Connections: []netlist.Connection{netlist.Connect("U1:D13", "R1:1")},
	})
}

func TestResolve(t *testing.T) {
	l := resolveLayout()
	tests := []struct {
		ref    string
		want   Point
		wantOK bool
	}{
		{"U1:D13", Pt(5+StubLength, 0), true},
		{"U1:D12", Point{}, false}, // in profile but not used
		{"U1:CAM_D0", Point{}, false},
		{"U1", Point{}, false},
		{"R1", Pt(14, 8), true},
		{"R1:1", Pt(14, 8), true},
		{"R1:+", Pt(14, 8), true},
		{"R1:in", Pt(14, 8), true},
		{"R1:a", Pt(14, 8), true},
		{"R1:2", Pt(16, 8), true},
		{"R1:-", Pt(16, 8), true},
		{"V1:+", Pt(14, 5), true},
		{"V1:pos", Pt(14, 5), true},
		{"V1", Pt(14, 5), true},
		{"V1:-", Pt(14, 3), true},
		{"V1:neg", Pt(14, 3), true},
		{"CAM1:D0", Pt(13.4, 2), true},
		{"CAM1", Pt(13.4, 2), true},
		{"G:anything", Pt(14, -1), true},
		{"M1:X", Pt(14, -4), true},
		{"NOPE:1", Point{}, false},
		{"NOPE", Point{}, false},
		{"", Point{}, false},
		{":1", Point{}, false},
		{"R1:", Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, ok := Resolve(tt.ref, l)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.ref, ok, tt.wantOK)
			}
			if ok && !got.Near(tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolveNilLayout(t *testing.T) {
	if _, ok := Resolve("R1:1", nil); ok {
		t.Error("nil layout should resolve nothing")
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 Point
	}{
		{"down right", Pt(0, 0), Pt(3, -2)},
		{"up left", Pt(5, 1), Pt(-1, 4)},
		{"horizontal", Pt(0, 2), Pt(4, 2)},
		{"same point", Pt(1, 1), Pt(1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Route(tt.p1, tt.p2)
			if len(segs) != 2 {
				t.Fatalf("got %d segments, want 2", len(segs))
			}
			if segs[0].From != tt.p1 || segs[1].To != tt.p2 || segs[0].To != segs[1].From {
				t.Errorf("segments not contiguous from p1 to p2: %+v", segs)
			}
			if !segs[0].Horizontal() || !segs[1].Vertical() {
				t.Errorf("want horizontal then vertical: %+v", segs)
			}
		})
	}
}
