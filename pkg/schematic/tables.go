package schematic

import (
	"strconv"
	"strings"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

// Controller geometry.
const (
	ControllerWidth  = 10.0
	ControllerHeight = 8.0
	TitleOffset      = 0.6 // controller title above the box
	StubLength       = 1.2 // pin stub from box edge to wire attachment point
	PinLabelOffset   = 1.4 // pin name offset from the box edge, outwards
)

// Generic column.
const (
	GridX   = 14.0
	GridY   = 8.0
	RowStep = 3.0
)

// Symbol extents.
const (
	TwoTerminalSpan  = 2.0 // resistor, LED and button run left to right
	SourceSpan       = 2.0 // voltage source runs top to bottom
	BlockWidth       = 3.0
	BlockHeight      = 2.0
	CameraLabelGap   = 0.3
	BlockLabelGap    = 0.4
	DefaultBlockText = "blk"
	DefaultCameraTag = "CAM"
)

// PinProfile lists the candidate pins of a controller family. Order matters:
// used pins are placed top to bottom in list order.
type PinProfile struct {
	Family string
	Left   []string
	Right  []string
}

func digitalPins(prefix string, n int) []string {
	pins := make([]string, n)
	for i := range pins {
		pins[i] = prefix + strconv.Itoa(i)
	}
	return pins
}

// pinProfiles is matched in order against the lowercased model string; the
// first family that is a substring wins.
var pinProfiles = []PinProfile{
	{
		Family: "esp32",
		Left:   []string{"GND", "5V"},
		Right: append([]string{"CAM_PWDN", "CAM_SIOD", "CAM_SIOC", "CAM_XCLK"},
			digitalPins("CAM_D", 8)...),
	},
}

// genericProfile applies to every model no family matches.
var genericProfile = PinProfile{
	Family: "generic",
	Left:   []string{"GND", "3.3V", "5V", "RESET"},
	Right:  digitalPins("D", 14),
}

// ProfileFor returns the pin profile for a controller model. Matching is
// case-insensitive.
func ProfileFor(model string) PinProfile {
	m := strings.ToLower(model)
	for _, p := range pinProfiles {
		if strings.Contains(m, p.Family) {
			return p
		}
	}
	return genericProfile
}

// terminalRule models a component with one primary terminal at its anchor
// and every other pin name at a fixed offset from it.
type terminalRule struct {
	primary map[string]bool
	second  Point
}

func pinSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var twoTerminal = terminalRule{
	primary: pinSet("1", "+", "in", "a"),
	second:  Pt(TwoTerminalSpan, 0),
}

var terminalRules = map[netlist.Kind]terminalRule{
	netlist.KindResistor: twoTerminal,
	netlist.KindLED:      twoTerminal,
	netlist.KindButton:   twoTerminal,
	netlist.KindVoltageSource: {
		primary: pinSet("+", "pos", "1"),
		second:  Pt(0, -SourceSpan),
	},
}

// fixedTaps lists kinds with a single connection point at a fixed offset
// from the anchor, whatever pin is named.
var fixedTaps = map[netlist.Kind]Point{
	netlist.KindCameraModule: Pt(-0.6, 0),
}
