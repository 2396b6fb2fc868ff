// Package explain writes step-by-step explanations of circuits.
//
// A [Writer] asks a language model when one is configured and falls back to
// [Template], which never fails, when the model is missing or errors.
package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/circuitdraw/pkg/llm"
	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

// Kind names explanations in cache keys and hooks.
const Kind = "explanation"

// Fixed explanations used by [Template].
const (
	ESP32Guide = "Step-by-step guide for ESP32-based circuit:\n" +
		"1) Connect a stable 5V supply to the 5V and GND pins of the ESP32 board.\n" +
		"2) If using a camera module (e.g., OV2640), connect SIOD, SIOC, XCLK, and D0–D7 lines to the ESP32 camera pins.\n" +
		"3) Ensure all devices share a common ground.\n" +
		"4) Upload firmware (e.g., Arduino IDE ESP32 Camera WebServer example).\n" +
		"5) After flashing, open the ESP32’s IP address in a browser to access the camera stream.\n" +
		"6) Use a reliable 5V source, as unstable USB power may cause random resets."
	Generic = "This circuit connects power, ground, and components as shown in the diagram. " +
		"Follow the wiring in the schematic to ensure correct connections between the modules."
)

// Writer produces explanations.
type Writer struct {
	gen    llm.Generator
	logger *log.Logger
}

// New creates a writer. gen may be nil, in which case only [Template] is used.
func New(gen llm.Generator, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Writer{gen: gen, logger: logger}
}

// Explain returns an explanation of nl for request. Model failures fall back
// to [Template]; the only error is a done context.
func (w *Writer) Explain(ctx context.Context, request string, nl *netlist.Netlist) (string, error) {
	if llm.Available(w.gen) {
		start := time.Now()
		text, err := w.generate(ctx, request, nl)
		if err == nil {
			w.logger.Debug("explanation", "chars", len(text), "duration", time.Since(start))
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		w.logger.Warn("explanation failed, using template", "err", err)
	}
	return Template(nl), nil
}

func (w *Writer) generate(ctx context.Context, request string, nl *netlist.Netlist) (string, error) {
	data, err := json.Marshal(nl)
	if err != nil {
		return "", err
	}
	system := fmt.Sprintf("You are an electronics instructor. Explain the given circuit netlist and %s step-by-step. "+
		"Write in clear, numbered steps (max 10). Avoid JSON, only natural language.", request)
	text, err := w.gen.Generate(ctx, system, "Netlist: "+string(data))
	if err != nil {
		return "", err
	}
	return llm.StripFences(text), nil
}

// Template explains nl without a model: the netlist's own explanation if it
// carries one, the ESP32 guide if any component is an ESP32 board, and a
// generic paragraph otherwise.
func Template(nl *netlist.Netlist) string {
	if nl == nil {
		return Generic
	}
	if e := strings.TrimSpace(nl.Explanation); e != "" {
		return e
	}
	for _, c := range nl.Components {
		if strings.Contains(strings.ToLower(c.Model), "esp32") {
			return ESP32Guide
		}
	}
	return Generic
}
