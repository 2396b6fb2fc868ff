package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	cdio "github.com/matzehuels/circuitdraw/pkg/io"
	"github.com/matzehuels/circuitdraw/pkg/schematic"
)

// layoutCommand creates the layout command, which prints the geometry the
// renderer would draw.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "layout <netlist.json|netlist.yaml>",
		Short: "Print the resolved schematic geometry of a netlist as JSON",
		Long: `Print the resolved schematic geometry of a netlist as JSON.

The output lists every placement (controller box and pins, component anchors),
every routed wire with its segments and junctions, and the connections that
were skipped because an endpoint could not be resolved. Coordinates are in
schematic units with y pointing up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nl, err := cdio.ImportFile(args[0])
			if err != nil {
				return fmt.Errorf("load netlist: %w", err)
			}
			scene := schematic.Build(nl)
			for _, s := range scene.Skipped {
				c.Logger.Warn("skipped connection", "a", s.Connection.A, "b", s.Connection.B, "reason", s.Reason)
			}

			if output == "" {
				return writeScene(cmd.OutOrStdout(), scene)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := writeScene(f, scene); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printSuccess("Layout computed")
			printStats(circuitStats{
				components:  len(nl.Components),
				connections: len(nl.Connections),
				wires:       len(scene.Wires),
				skipped:     len(scene.Skipped),
			})
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func writeScene(w io.Writer, scene *schematic.Scene) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(scene)
}
