// Package firmware writes Arduino sketches for circuits.
//
// A [Writer] asks a language model when one is configured and falls back to
// [Template] otherwise. Template sketches cover the common cases: blinking an
// LED on D13, mirroring a D2 button onto that LED, and pointing ESP32-CAM
// users at the CameraWebServer example.
package firmware

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

// Kind names firmware in cache keys and hooks.
const Kind = "firmware"

// Template sketches.
const (
	ESP32CamSketch = "// ESP32-CAM sketch\n" +
		"// Flash the standard CameraWebServer example from Arduino IDE (ESP32 board package).\n" +
		"// Select AI Thinker ESP32-CAM, set correct pins in the example, and upload.\n\n" +
		"void setup() {\n" +
		"  // Use CameraWebServer example. This is a placeholder.\n" +
		"}\n\n" +
		"void loop() {\n" +
		"}\n"
	BlinkSketch = "// Arduino Uno: Blink LED on D13\n" +
		"void setup(){ pinMode(13, OUTPUT); }\n" +
		"void loop(){ digitalWrite(13, HIGH); delay(500); digitalWrite(13, LOW); delay(500); }\n"
	ButtonSketch = "// Arduino Uno: Button on D2 controls LED on D13\n" +
		"void setup(){ pinMode(2, INPUT_PULLUP); pinMode(13, OUTPUT); }\n" +
		"void loop(){ int p=digitalRead(2); digitalWrite(13, p==LOW ? HIGH : LOW); }\n"
	UnoSketch = "// Arduino Uno skeleton generated from netlist\n" +
		"void setup(){ /* set pinModes based on connections */ }\n" +
		"void loop(){ }\n"
	GenericSketch = "// Generic sketch skeleton\n" +
		"void setup(){ }\n" +
		"void loop(){ }\n"
)

const systemPrompt = "You are an Arduino code generator. Write a complete sketch (C++ for Arduino IDE) based on the netlist and %s. " +
	"Handle Arduino Uno, ESP32-CAM, sensors, actuators, LEDs, buttons, etc. " +
	"Return ONLY valid Arduino C++ code, no markdown formatting."

// Writer produces sketches.
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

// Sketch returns Arduino source for nl. Model replies are stripped of
// Markdown fences. Model failures fall back to [Template]; the only error
// is a done context.
func (w *Writer) Sketch(ctx context.Context, request string, nl *netlist.Netlist) (string, error) {
	if llm.Available(w.gen) {
		start := time.Now()
		code, err := w.generate(ctx, request, nl)
		if err == nil {
			w.logger.Debug("firmware", "chars", len(code), "duration", time.Since(start))
			return code, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		w.logger.Warn("firmware failed, using template", "err", err)
	}
	return Template(nl), nil
}

func (w *Writer) generate(ctx context.Context, request string, nl *netlist.Netlist) (string, error) {
	data, err := json.Marshal(nl)
	if err != nil {
		return "", err
	}
	text, err := w.gen.Generate(ctx, fmt.Sprintf(systemPrompt, request), "Netlist: "+string(data))
	if err != nil {
		return "", err
	}
	code := llm.StripFences(text)
	if code == "" {
		return "", llm.ErrEmptyResponse
	}
	return code + "\n", nil
}

// Template picks a sketch from the controller model and its wiring.
func Template(nl *netlist.Netlist) string {
	ctrl, ok := nl.Controller()
	if !ok {
		return GenericSketch
	}
	model := strings.ToLower(ctrl.Model)
	switch {
	case strings.Contains(model, "esp32-cam"):
		return ESP32CamSketch
	case strings.Contains(model, "arduino uno"):
		led := usesPin(nl, ctrl.ID, "D13")
		button := usesPin(nl, ctrl.ID, "D2")
		switch {
		case led && button:
			return ButtonSketch
		case led:
			return BlinkSketch
		}
		return UnoSketch
	}
	return GenericSketch
}

// usesPin reports whether any connection touches id:pin.
func usesPin(nl *netlist.Netlist, id, pin string) bool {
	for _, c := range nl.Connections {
		for _, end := range []string{c.A, c.B} {
			ref, ok := netlist.ParseRef(end)
			if ok && ref.HasPin && ref.Component == id && ref.Pin == pin {
				return true
			}
		}
	}
	return false
}
