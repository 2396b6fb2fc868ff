package netlist

import (
	"encoding/json"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

func TestComponentKind(t *testing.T) {
	tests := []struct {
		typ  string
		want Kind
	}{
		{"microcontroller", KindMicrocontroller},
		{"  LED ", KindLED},
		{"Battery", KindVoltageSource},
		{"voltage_source", KindVoltageSource},
		{"gnd", KindGround},
		{"Servo", Kind("servo")},
		{"", Kind("")},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			if got := (Component{Type: tt.typ}).Kind(); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestController(t *testing.T) {
	nl := &Netlist{Components: []Component{
		{ID: "V1", Type: "voltage_source"},
		{ID: "U1", Type: "microcontroller", Model: "Arduino Uno"},
		{ID: "U2", Type: "microcontroller", Model: "ESP32-CAM"},
	}}
	c, ok := nl.Controller()
	if !ok || c.ID != "U1" {
		t.Errorf("Controller() = %q, %v, want U1", c.ID, ok)
	}

	if _, ok := (&Netlist{}).Controller(); ok {
		t.Error("empty netlist should have no controller")
	}
	var nilNL *Netlist
	if _, ok := nilNL.Controller(); ok {
		t.Error("nil netlist should have no controller")
	}
}

func TestNormalize(t *testing.T) {
	nl := &Netlist{
		Components: []Component{
			{Type: "resistor"},
			{ID: "C1", Type: "led"},
			{ID: " R2 ", Type: "resistor"},
			{Type: "gnd"},
		},
		Connections: []Connection{Connect("C1", "R2")},
	}
	got := nl.Normalize()

	want := []string{"C1_2", "C1", "R2", "C4"}
	for i, id := range want {
		if got.Components[i].ID != id {
			t.Errorf("component %d id = %q, want %q", i, got.Components[i].ID, id)
		}
	}
	if nl.Components[0].ID != "" {
		t.Error("Normalize must not modify the receiver")
	}
	if len(got.Connections) != 1 {
		t.Errorf("connections = %d, want 1", len(got.Connections))
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in     string
		want   Ref
		wantOK bool
	}{
		{"U1:D13", Ref{Component: "U1", Pin: "D13", HasPin: true}, true},
		{"R1", Ref{Component: "R1"}, true},
		{"U1:CAM:X", Ref{Component: "U1", Pin: "CAM:X", HasPin: true}, true},
		{"", Ref{}, false},
		{":D13", Ref{}, false},
		{"U1:", Ref{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRef(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseRef(%q) = %+v, %v, want %+v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

const wireJSON = `{"components":[{"id":"V1","type":"voltage_source","value":"5V"},{"id":"R1","type":"resistor","value":"220Ω"},{"id":"D1","type":"led"}],"connections":[["V1:+","R1:1"],["R1:2","D1:+"],["D1:-","V1:-"]]}`

func TestJSONWireFormat(t *testing.T) {
	var nl Netlist
	if err := json.Unmarshal([]byte(wireJSON), &nl); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(nl.Components) != 3 || len(nl.Connections) != 3 {
		t.Fatalf("got %d components, %d connections", len(nl.Components), len(nl.Connections))
	}
	if nl.Connections[1] != Connect("R1:2", "D1:+") {
		t.Errorf("connection 1 = %+v", nl.Connections[1])
	}

	out, err := json.Marshal(nl)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != wireJSON {
		t.Errorf("Marshal changed the wire shape:\n got %s\nwant %s", out, wireJSON)
	}
}

func TestComponentScalarFields(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Component
	}{
		{"number value", `{"id":"R1","type":"resistor","value":220}`, Component{ID: "R1", Type: "resistor", Value: "220"}},
		{"float value", `{"id":"V1","type":"voltage_source","value":3.3}`, Component{ID: "V1", Type: "voltage_source", Value: "3.3"}},
		{"numeric id", `{"id":1,"type":"led"}`, Component{ID: "1", Type: "led"}},
		{"null model", `{"id":"U1","type":"microcontroller","model":null}`, Component{ID: "U1", Type: "microcontroller"}},
		{"bool value", `{"id":"S1","type":"button","value":true}`, Component{ID: "S1", Type: "button", Value: "true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Component
			if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if c != tt.want {
				t.Errorf("got %+v, want %+v", c, tt.want)
			}
		})
	}

	var c Component
	if err := json.Unmarshal([]byte(`{"id":"R1","value":{"ohms":220}}`), &c); err == nil {
		t.Error("expected error for object value")
	}
}

func TestConnectionRejectsBadArity(t *testing.T) {
	tests := []string{
		`{"connections":[["A"]]}`,
		`{"connections":[["A","B","C"]]}`,
		`{"connections":["A:B"]}`,
		`{"connections":[{"a":"A","b":"B"}]}`,
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			var nl Netlist
			if err := json.Unmarshal([]byte(in), &nl); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestYAMLConnections(t *testing.T) {
	in := "components:\n  - {id: U1, type: microcontroller, model: Arduino Uno}\nconnections:\n  - [U1:D13, R1:1]\n"
	var nl Netlist
	if err := yaml.Unmarshal([]byte(in), &nl); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if nl.Connections[0] != Connect("U1:D13", "R1:1") {
		t.Errorf("connection = %+v", nl.Connections[0])
	}

	if err := yaml.Unmarshal([]byte("connections:\n  - [A]\n"), &nl); err == nil {
		t.Error("expected error for single-endpoint connection")
	}
}

func TestBSONConnections(t *testing.T) {
	nl := Netlist{
		Components:  []Component{{ID: "R1", Type: "resistor"}},
		Connections: []Connection{Connect("R1:1", "V1:+")},
	}
	data, err := bson.Marshal(nl)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Netlist
	if err := bson.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Connections) != 1 || got.Connections[0] != nl.Connections[0] {
		t.Errorf("connections = %+v", got.Connections)
	}
}
