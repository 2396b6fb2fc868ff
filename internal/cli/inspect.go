package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	cdio "github.com/matzehuels/circuitdraw/pkg/io"
	"github.com/matzehuels/circuitdraw/pkg/render/nodelink"
)

// inspectFormats are the outputs of the inspect command.
var inspectFormats = map[string]bool{"dot": true, "svg": true, "png": true, "pdf": true}

// inspectCommand creates the inspect command, which draws a netlist's
// connectivity graph with Graphviz instead of as a schematic.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <netlist.json|netlist.yaml>",
		Short: "Draw the connectivity graph of a netlist",
		Long: `Draw the connectivity graph of a netlist.

Components become nodes and connections become edges labelled with their pin
names. References to components that are not declared are drawn dashed, which
makes dangling connections easy to spot before rendering a schematic.

With -f dot (the default) the Graphviz source is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !inspectFormats[format] {
				return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', 'png', or 'pdf')", format)
			}
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), args[0], output, format, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg, png, pdf")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show type, model and value in node labels")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, out io.Writer, input, output, format string, detailed bool) error {
	nl, err := cdio.ImportFile(input)
	if err != nil {
		return fmt.Errorf("load netlist: %w", err)
	}

	dot := nodelink.ToDOT(nl, nodelink.Options{Detailed: detailed})
	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = nodelink.RenderSVG(ctx, dot)
	case "png":
		data, err = nodelink.RenderPNG(ctx, dot)
	case "pdf":
		data, err = nodelink.RenderPDF(ctx, dot)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	if output == "" {
		_, err := out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("wrote connectivity graph", "path", output, "bytes", len(data))
	printSuccess("Connectivity graph written")
	printFile(output)
	return nil
}
