package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

// WriteJSON encodes a netlist as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(nl *netlist.Netlist, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(nl); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a netlist to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(nl *netlist.Netlist, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(nl, f)
}

// Marshal returns the compact JSON encoding used for hashing and caching.
func Marshal(nl *netlist.Netlist) ([]byte, error) {
	return json.Marshal(nl)
}
