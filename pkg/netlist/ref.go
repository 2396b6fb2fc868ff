package netlist

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"gopkg.in/yaml.v3"
)

// Ref is a parsed pin reference.
type Ref struct {
	Component string // component id
	Pin       string // pin name; empty for a bare reference
	HasPin    bool   // true when the reference carried a ":pin" suffix
}

// ParseRef splits "id:pin" on the first colon. A bare "id" yields a Ref
// without a pin. It returns false for malformed references: an empty
// string, an empty component id, or an empty pin after the colon.
func ParseRef(s string) (Ref, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, false
	}
	id, pin, found := strings.Cut(s, ":")
	if id == "" {
		return Ref{}, false
	}
	if !found {
		return Ref{Component: id}, true
	}
	if pin == "" {
		return Ref{}, false
	}
	return Ref{Component: id, Pin: pin, HasPin: true}, true
}

// Connection joins two pin references. A and B carry no polarity; the order
// only decides which end the router starts from.
type Connection struct {
	A string
	B string
}

// Connect builds a connection from two references.
func Connect(a, b string) Connection { return Connection{A: a, B: b} }

// MarshalJSON encodes the connection as a two-element array.
func (c Connection) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{c.A, c.B})
}

// UnmarshalJSON decodes a two-element string array.
func (c *Connection) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("connection must be an array of two pin references: %w", err)
	}
	return c.setPair(pair)
}

// MarshalYAML encodes the connection as a two-element sequence.
func (c Connection) MarshalYAML() (any, error) {
	return []string{c.A, c.B}, nil
}

// UnmarshalYAML decodes a two-element sequence.
func (c *Connection) UnmarshalYAML(value *yaml.Node) error {
	var pair []string
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("connection must be a sequence of two pin references: %w", err)
	}
	return c.setPair(pair)
}

// MarshalBSONValue stores the connection as a two-element BSON array so
// stored records keep the wire shape.
func (c Connection) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue([]string{c.A, c.B})
}

// UnmarshalBSONValue decodes a two-element BSON array.
func (c *Connection) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var pair []string
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&pair); err != nil {
		return fmt.Errorf("connection must be an array of two pin references: %w", err)
	}
	return c.setPair(pair)
}

func (c *Connection) setPair(pair []string) error {
	if len(pair) != 2 {
		return fmt.Errorf("connection must have exactly two endpoints, got %d", len(pair))
	}
	c.A, c.B = pair[0], pair[1]
	return nil
}
