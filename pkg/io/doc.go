// Package io provides file import and export for netlists.
//
// # Overview
//
// Netlists normally arrive from the text-generation service or the keyword
// builder, but the CLI also accepts hand-written netlist files so that a
// schematic can be re-rendered or tweaked without another generation round.
//
// # Formats
//
// JSON is the wire format and the default:
//
//	{
//	  "components": [
//	    {"id": "V1", "type": "voltage_source", "value": "5V"},
//	    {"id": "R1", "type": "resistor", "value": "220Ω"},
//	    {"id": "D1", "type": "led"}
//	  ],
//	  "connections": [["V1:+", "R1:1"], ["R1:2", "D1:+"], ["D1:-", "V1:-"]]
//	}
//
// YAML with the same keys is accepted for files ending in .yaml or .yml:
//
//	components:
//	  - {id: U1, type: microcontroller, model: Arduino Uno}
//	connections:
//	  - [U1:D13, R1:1]
//
// # Import
//
// Use [ImportFile] to read a netlist from a path (format chosen by extension),
// or [ReadJSON] / [ReadYAML] for any io.Reader. Imported netlists are
// normalized (missing ids are synthesized) but not validated; call
// [netlist.Netlist.Validate] for strict checking.
//
// # Export
//
// Use [ExportJSON] to write a netlist to a file, or [WriteJSON] to write to
// any io.Writer. Output is indented and round-trips through [ReadJSON].
package io
