package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

// ReadJSON decodes a JSON netlist from r.
//
// The input must be a JSON object with a "components" array; "connections"
// and "explanation" are optional. Each connection must be a two-element array
// of pin references.
//
// ReadJSON returns an error if the JSON is malformed or a connection does not
// have exactly two endpoints. The returned netlist is normalized. ReadJSON
// does not close r.
func ReadJSON(r io.Reader) (*netlist.Netlist, error) {
	var nl netlist.Netlist
	if err := json.NewDecoder(r).Decode(&nl); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return nl.Normalize(), nil
}

// ReadYAML decodes a YAML netlist from r with the same rules as [ReadJSON].
func ReadYAML(r io.Reader) (*netlist.Netlist, error) {
	var nl netlist.Netlist
	if err := yaml.NewDecoder(r).Decode(&nl); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return nl.Normalize(), nil
}

// ImportFile reads a netlist file at path. Files ending in .yaml or .yml are
// decoded as YAML; everything else as JSON. Errors are wrapped with the path.
func ImportFile(path string) (*netlist.Netlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var nl *netlist.Netlist
	if isYAML(path) {
		nl, err = ReadYAML(f)
	} else {
		nl, err = ReadJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nl, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
