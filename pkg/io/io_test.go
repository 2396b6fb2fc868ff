package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

func TestReadJSON(t *testing.T) {
	in := `{"components":[{"type":"resistor"},{"id":"D1","type":"led"}],"connections":[["C1:2","D1:+"]]}`
	nl, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if nl.Components[0].ID != "C1" {
		t.Errorf("synthesized id = %q, want C1", nl.Components[0].ID)
	}
}

func TestReadJSONMalformed(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader(`{"components":`)); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestRoundTrip(t *testing.T) {
	nl := &netlist.Netlist{
		Components: []netlist.Component{
			{ID: "V1", Type: "voltage_source", Value: "5V"},
			{ID: "R1", Type: "resistor", Value: "220Ω"},
		},
		Connections: []netlist.Connection{netlist.Connect("V1:+", "R1:1")},
		Explanation: "power the resistor",
	}

	var buf bytes.Buffer
	if err := WriteJSON(nl, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), "220Ω") {
		t.Error("output should keep unicode values unescaped")
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Explanation != nl.Explanation || got.Components[1] != nl.Components[1] || got.Connections[0] != nl.Connections[0] {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "blink.yml")
	yamlSrc := "components:\n  - {id: U1, type: microcontroller, model: Arduino Uno}\n  - {id: D1, type: led}\nconnections:\n  - [U1:D13, D1:+]\n"
	if err := os.WriteFile(yamlPath, []byte(yamlSrc), 0o644); err != nil {
		t.Fatal(err)
	}
	nl, err := ImportFile(yamlPath)
	if err != nil {
		t.Fatalf("ImportFile(yaml): %v", err)
	}
	if len(nl.Components) != 2 || nl.Connections[0].A != "U1:D13" {
		t.Errorf("unexpected netlist: %+v", nl)
	}

	jsonPath := filepath.Join(dir, "out.json")
	if err := ExportJSON(nl, jsonPath); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	again, err := ImportFile(jsonPath)
	if err != nil {
		t.Fatalf("ImportFile(json): %v", err)
	}
	if again.Components[0].Model != "Arduino Uno" {
		t.Errorf("model = %q", again.Components[0].Model)
	}

	if _, err := ImportFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
