package source

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/circuitdraw/pkg/errors"
	"github.com/matzehuels/circuitdraw/pkg/llm"
	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

// NetlistPrompt is the system instruction sent with every netlist request.
const NetlistPrompt = "You are a netlist generator. Return ONLY JSON with keys 'components' and 'connections', " +
	"and a short 'explanation'. Each component: {id, type, value?, model?}. For microcontrollers include " +
	"model exactly (e.g., 'ESP32-CAM' or 'Arduino Uno'). Connections are pairs like " +
	"['U1:5V','V1:+'] or ['U1:D13','R1:1']. The 'explanation' should be step-by-step (2-10 lines). " +
	"No extra prose outside JSON."

// SchemaExample shows the model the exact wire shape it must return.
var SchemaExample = &netlist.Netlist{
	Components: []netlist.Component{
		{ID: "U1", Type: "microcontroller", Model: "ESP32-CAM"},
		{ID: "CAM1", Type: "camera_module", Model: "OV2640"},
		{ID: "V1", Type: "voltage_source", Value: "5V"},
		{ID: "GND", Type: "gnd"},
	},
	Connections: []netlist.Connection{
		netlist.Connect("V1:+", "U1:5V"),
		netlist.Connect("V1:-", "U1:GND"),
		netlist.Connect("U1:CAM_PWDN", "CAM1:PWDN"),
		netlist.Connect("U1:CAM_SIOD", "CAM1:SIOD"),
		netlist.Connect("U1:CAM_SIOC", "CAM1:SIOC"),
		netlist.Connect("U1:CAM_XCLK", "CAM1:XCLK"),
		netlist.Connect("U1:CAM_D0", "CAM1:D0"),
		netlist.Connect("U1:CAM_D1", "CAM1:D1"),
		netlist.Connect("CAM1:GND", "U1:GND"),
	},
	Explanation: "Example only.",
}

// LLM asks a language model for a netlist.
type LLM struct {
	gen    llm.Generator
	logger *log.Logger
}

// NewLLM creates an LLM source. A nil logger discards output.
func NewLLM(gen llm.Generator, logger *log.Logger) *LLM {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &LLM{gen: gen, logger: logger}
}

// Name returns "llm".
func (s *LLM) Name() string { return "llm" }

// Generate prompts the model and decodes the first JSON object in its reply.
// It returns [ErrDeclined] when the model is not configured.
func (s *LLM) Generate(ctx context.Context, request string) (*netlist.Netlist, error) {
	if !llm.Available(s.gen) {
		return nil, ErrDeclined
	}

	example, err := json.Marshal(SchemaExample)
	if err != nil {
		return nil, fmt.Errorf("marshal schema example: %w", err)
	}
	user := fmt.Sprintf("User request: %s\n\nSchema example: %s", request, example)

	start := time.Now()
	reply, err := s.gen.Generate(ctx, NetlistPrompt, user)
	if err != nil {
		if stderrors.Is(err, llm.ErrNotConfigured) {
			return nil, ErrDeclined
		}
		return nil, err
	}
	s.logger.Debug("netlist reply", "chars", len(reply), "duration", time.Since(start))

	return ParseReply(reply)
}

// ParseReply extracts a netlist from a model reply. The reply must contain
// a JSON object with a "components" key.
func ParseReply(reply string) (*netlist.Netlist, error) {
	raw, ok := llm.ExtractJSON(reply)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidNetlist, "no JSON object in model reply")
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNetlist, err, "decode model reply")
	}
	if _, ok := keys["components"]; !ok {
		return nil, errors.New(errors.ErrCodeInvalidNetlist, "model reply has no components")
	}
	var nl netlist.Netlist
	if err := json.Unmarshal([]byte(raw), &nl); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNetlist, err, "decode model reply")
	}
	return nl.Normalize(), nil
}

var _ Source = (*LLM)(nil)
