package source

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

// Explanations attached by the rule builder.
const (
	ESP32Explanation = "Use ESP32-CAM (U1) powered by a stable 5V supply. " +
		"Connect OV2640 (CAM1) camera pins (SIOD/SIOC/XCLK/D0..D7) to ESP32 camera pins. " +
		"Tie grounds together. Flash camera streaming firmware and view the stream in a browser."
	RulesExplanation = "Fallback: wire power/ground and components as shown in the diagram. " +
		"Follow the connections list."
)

// DefaultVoltage is used when a request names no supply voltage.
const DefaultVoltage = 5.0

var (
	esp32Pattern   = regexp.MustCompile(`\besp32(?:[\s-]?cam)?\b`)
	voltagePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*v`)
	ledPattern     = regexp.MustCompile(`\bleds?\b`)
	buttonPattern  = regexp.MustCompile(`\b(?:button|switch)\b`)
	d13Pattern     = regexp.MustCompile(`\bd13\b`)
	d2Pattern      = regexp.MustCompile(`\bd2\b`)
)

// cameraLines are the ESP32-CAM camera bus signals, wired U1:CAM_<s> to CAM1:<s>.
var cameraLines = []string{
	"PWDN", "SIOD", "SIOC", "XCLK",
	"D0", "D1", "D2", "D3", "D4", "D5", "D6", "D7",
}

// Rules builds netlists from keywords in the request. It never fails and
// never calls out, which makes it the last resort behind [LLM].
type Rules struct{}

// Name returns "rules".
func (Rules) Name() string { return "rules" }

// Generate builds the netlist for request.
func (Rules) Generate(ctx context.Context, request string) (*netlist.Netlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return BuildRules(request), nil
}

// BuildRules is the keyword builder behind [Rules].
//
// A request mentioning an ESP32 yields the ESP32-CAM camera circuit.
// Otherwise the netlist starts with a supply V1 at the first "<n>v" voltage
// and adds an Arduino Uno, an LED with a 220Ω series resistor, and a push
// button as the words "arduino", "led" and "button"/"switch" appear. The LED
// is driven from D13 and the button read on D2 when those pins are named;
// otherwise both hang off the supply.
func BuildRules(request string) *netlist.Netlist {
	t := strings.ToLower(request)
	if esp32Pattern.MatchString(t) {
		return esp32Netlist()
	}

	nl := &netlist.Netlist{Explanation: RulesExplanation}
	add := func(c netlist.Component) { nl.Components = append(nl.Components, c) }
	wire := func(a, b string) { nl.Connections = append(nl.Connections, netlist.Connect(a, b)) }

	add(netlist.Component{ID: "V1", Type: string(netlist.KindVoltageSource), Value: formatVolts(voltage(t))})

	if strings.Contains(t, "arduino") {
		add(netlist.Component{ID: "U1", Type: string(netlist.KindMicrocontroller), Model: "Arduino Uno"})
		wire("V1:+", "U1:5V")
		wire("V1:-", "U1:GND")
	}

	if ledPattern.MatchString(t) {
		add(netlist.Component{ID: "D1", Type: string(netlist.KindLED)})
		add(netlist.Component{ID: "R1", Type: string(netlist.KindResistor), Value: "220Ω"})
		if d13Pattern.MatchString(t) {
			wire("U1:D13", "R1:1")
			wire("R1:2", "D1:+")
			wire("D1:-", "U1:GND")
		} else {
			wire("V1:+", "R1:1")
			wire("R1:2", "D1:+")
			wire("D1:-", "V1:-")
		}
	}

	if buttonPattern.MatchString(t) {
		add(netlist.Component{ID: "S1", Type: string(netlist.KindButton)})
		if d2Pattern.MatchString(t) {
			wire("S1:1", "U1:D2")
			wire("S1:2", "U1:GND")
		} else {
			wire("S1:1", "V1:+")
			wire("S1:2", "V1:-")
		}
	}
	return nl
}

func esp32Netlist() *netlist.Netlist {
	nl := &netlist.Netlist{
		Components: []netlist.Component{
			{ID: "U1", Type: string(netlist.KindMicrocontroller), Model: "ESP32-CAM"},
			{ID: "CAM1", Type: string(netlist.KindCameraModule), Model: "OV2640"},
			{ID: "V1", Type: string(netlist.KindVoltageSource), Value: "5V"},
			{ID: "GND", Type: string(netlist.KindGround)},
		},
		Connections: []netlist.Connection{
			netlist.Connect("V1:+", "U1:5V"),
			netlist.Connect("V1:-", "U1:GND"),
			netlist.Connect("V1:+", "CAM1:5V"),
			netlist.Connect("CAM1:GND", "U1:GND"),
		},
		Explanation: ESP32Explanation,
	}
	for _, s := range cameraLines {
		nl.Connections = append(nl.Connections, netlist.Connect("U1:CAM_"+s, "CAM1:"+s))
	}
	return nl
}

func voltage(t string) float64 {
	m := voltagePattern.FindStringSubmatch(t)
	if m == nil {
		return DefaultVoltage
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return DefaultVoltage
	}
	return v
}

func formatVolts(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64) + "V"
}

var _ Source = Rules{}
