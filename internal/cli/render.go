package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	cdio "github.com/matzehuels/circuitdraw/pkg/io"
	"github.com/matzehuels/circuitdraw/pkg/pipeline"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output  string
	format  string
	scale   float64
	text    bool // also write the explanation and sketch
	noCache bool
}

// renderCommand creates the render command for drawing an existing netlist.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <netlist.json|netlist.yaml>",
		Short: "Draw a netlist file as a schematic image",
		Long: `Draw a netlist file as a schematic image.

The netlist uses the wire format produced by 'generate --netlist-out':

  {"components": [{"id": "U1", "type": "microcontroller", "model": "Arduino Uno"}],
   "connections": [["U1:D13", "R1:1"]]}

YAML files with the same keys are accepted too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "image file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "image format: png (default), svg, pdf")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "pixels per schematic unit")
	cmd.Flags().BoolVar(&opts.text, "text", false, "also write the explanation and sketch")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	nl, err := cdio.ImportFile(input)
	if err != nil {
		return fmt.Errorf("load netlist: %w", err)
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	format := firstNonEmpty(opts.format, cfg.Render.Format)
	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	scale := opts.scale
	if scale == 0 {
		scale = cfg.Render.UnitScale
	}

	runner, err := c.newRunner(ctx, runnerOpts{noCache: opts.noCache, noHistory: true})
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, pipeline.Options{
		Netlist:    nl,
		SkipText:   !opts.text,
		Format:     format,
		UnitScale:  scale,
		OutputPath: output,
		Logger:     c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done("Rendered " + filepath.Base(res.ImagePath))

	printSuccess("Rendered %s", input)
	printStats(circuitStats{
		components:  res.Stats.Components,
		connections: res.Stats.Connections,
		wires:       res.Stats.Wires,
		skipped:     res.Stats.Skipped,
		cached:      res.CacheInfo.RenderHit,
	})
	printFile(res.ImagePath)

	if opts.text {
		sketch := strings.TrimSuffix(res.ImagePath, filepath.Ext(res.ImagePath)) + ".ino"
		if err := os.WriteFile(sketch, []byte(res.Firmware), 0644); err != nil {
			return fmt.Errorf("write sketch: %w", err)
		}
		printFile(sketch)
		printNewline()
		fmt.Println(StyleTitle.Render("Explanation"))
		fmt.Println(res.Explanation)
	}
	return nil
}
