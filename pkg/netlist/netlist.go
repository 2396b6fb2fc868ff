// Package netlist defines the canonical in-memory circuit description shared by
// every stage of circuitdraw.
//
// A [Netlist] is a flat list of [Component] values and a list of [Connection]
// pairs between pin references. Pin references are either a bare component id
// ("R1"), meaning the component's default terminal, or "componentId:pinName"
// ("U1:D13"). The JSON shape is the wire format exchanged with the
// text-generation service and must stay stable:
//
//	{
//	  "components": [{"id": "U1", "type": "microcontroller", "model": "Arduino Uno"}],
//	  "connections": [["U1:D13", "R1:1"]],
//	  "explanation": "optional"
//	}
//
// Netlists are treated as immutable once produced. [Netlist.Normalize] returns
// a copy rather than editing in place.
package netlist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the normalized component type.
type Kind string

// Known component kinds. Any other type string is kept verbatim and
// rendered as a generic block.
const (
	KindMicrocontroller Kind = "microcontroller"
	KindResistor        Kind = "resistor"
	KindLED             Kind = "led"
	KindButton          Kind = "button"
	KindVoltageSource   Kind = "voltage_source"
	KindCameraModule    Kind = "camera_module"
	KindGround          Kind = "gnd"
)

// typeAliases maps alternative wire spellings onto a canonical kind.
var typeAliases = map[string]Kind{
	"battery": KindVoltageSource,
}

// Component is one part in the circuit.
type Component struct {
	ID    string `json:"id" yaml:"id" bson:"id"`
	Type  string `json:"type" yaml:"type" bson:"type"`
	Model string `json:"model,omitempty" yaml:"model,omitempty" bson:"model,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty" bson:"value,omitempty"`
}

// UnmarshalJSON accepts any JSON scalar for the text fields. Models often
// send `"value": 220`; numbers and booleans keep their literal text.
func (c *Component) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Type  json.RawMessage `json:"type"`
		Model json.RawMessage `json:"model"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := []struct {
		name string
		src  json.RawMessage
		dst  *string
	}{
		{"id", raw.ID, &c.ID},
		{"type", raw.Type, &c.Type},
		{"model", raw.Model, &c.Model},
		{"value", raw.Value, &c.Value},
	}
	for _, f := range fields {
		s, err := scalarText(f.src)
		if err != nil {
			return fmt.Errorf("component %s: %w", f.name, err)
		}
		*f.dst = s
	}
	return nil
}

// scalarText renders a JSON scalar as text. Absent and null give "".
func scalarText(data json.RawMessage) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	switch data[0] {
	case '"':
		var s string
		err := json.Unmarshal(data, &s)
		return s, err
	case '{', '[':
		return "", fmt.Errorf("expected a string, got %s", data)
	}
	return string(data), nil
}

// Kind returns the normalized type: lowercased, trimmed and with aliases
// such as "battery" folded onto their canonical kind.
func (c Component) Kind() Kind {
	t := strings.ToLower(strings.TrimSpace(c.Type))
	if k, ok := typeAliases[t]; ok {
		return k
	}
	return Kind(t)
}

// Netlist is a circuit: components plus pin-to-pin connections.
type Netlist struct {
	Components  []Component  `json:"components" yaml:"components" bson:"components"`
	Connections []Connection `json:"connections" yaml:"connections" bson:"connections"`
	Explanation string       `json:"explanation,omitempty" yaml:"explanation,omitempty" bson:"explanation,omitempty"`
}

// Controller returns the first microcontroller in declaration order.
// Later microcontrollers are ordinary components as far as layout is concerned.
func (n *Netlist) Controller() (Component, bool) {
	if n == nil {
		return Component{}, false
	}
	for _, c := range n.Components {
		if c.Kind() == KindMicrocontroller {
			return c, true
		}
	}
	return Component{}, false
}

// IsEmpty reports whether the netlist has neither components nor connections.
func (n *Netlist) IsEmpty() bool {
	return n == nil || (len(n.Components) == 0 && len(n.Connections) == 0)
}

// Normalize returns a copy of n in which every component has an id.
// Missing ids get the positional fallback "C<n>" (1-based); a fallback that
// collides with an existing id gets a numeric suffix.
func (n *Netlist) Normalize() *Netlist {
	out := &Netlist{}
	if n == nil {
		return out
	}
	out.Explanation = n.Explanation
	out.Components = make([]Component, len(n.Components))
	copy(out.Components, n.Components)
	out.Connections = make([]Connection, len(n.Connections))
	copy(out.Connections, n.Connections)

	taken := make(map[string]bool, len(out.Components))
	for _, c := range out.Components {
		if id := strings.TrimSpace(c.ID); id != "" {
			taken[id] = true
		}
	}
	for i := range out.Components {
		c := &out.Components[i]
		c.ID = strings.TrimSpace(c.ID)
		if c.ID != "" {
			continue
		}
		id := "C" + strconv.Itoa(i+1)
		for suffix := 2; taken[id]; suffix++ {
			id = fmt.Sprintf("C%d_%d", i+1, suffix)
		}
		c.ID = id
		taken[id] = true
	}
	return out
}
