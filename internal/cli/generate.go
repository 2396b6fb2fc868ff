package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	cdio "github.com/matzehuels/circuitdraw/pkg/io"
	"github.com/matzehuels/circuitdraw/pkg/netlist"
	"github.com/matzehuels/circuitdraw/pkg/pipeline"
	"github.com/matzehuels/circuitdraw/pkg/storage"
)

// generateOpts holds the flags of the generate command.
type generateOpts struct {
	output     string // image path; a fresh name under the output dir when empty
	format     string
	fallback   bool // skip the language model
	refresh    bool
	noCache    bool
	noText     bool
	publish    bool   // copy the image into the public dir and print a signed link
	netlistOut string // also write the netlist JSON here
	sketchOut  string // write the sketch here instead of next to the image
	asJSON     bool
}

// generateResult is the --json output of generate.
type generateResult struct {
	ImagePath   string           `json:"image_path"`
	ImageURL    string           `json:"image_url"`
	Explanation string           `json:"explanation"`
	ArduinoCode string           `json:"arduino_code"`
	Source      string           `json:"source"`
	RecordID    string           `json:"record_id,omitempty"`
	Netlist     *netlist.Netlist `json:"netlist"`
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate <request>",
		Short: "Generate a schematic, explanation and sketch from a circuit request",
		Long: `Generate a schematic, explanation and sketch from a circuit request.

The request is sent to the language model when GEMINI_API_KEY is set; the
keyword rule builder answers otherwise, or when --fallback is given.

The image is written to --output (or a fresh name under the configured output
directory) and the Arduino sketch next to it with an .ino extension.

Examples:
  circuitdraw generate "Arduino blink an LED on D13"
  circuitdraw generate "ESP32-CAM with OV2640" -f svg -o cam.svg
  circuitdraw generate "9V battery, LED and resistor" --fallback --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "image file (format taken from the extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "image format: png (default), svg, pdf")
	cmd.Flags().BoolVar(&opts.fallback, "fallback", false, "use the rule builder instead of the language model")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.noText, "no-text", false, "skip the explanation and sketch")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "publish the image and print a signed link")
	cmd.Flags().StringVar(&opts.netlistOut, "netlist-out", "", "also write the netlist JSON to this file")
	cmd.Flags().StringVar(&opts.sketchOut, "sketch-out", "", "write the sketch to this file (default: <image>.ino)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")

	return cmd
}

// runGenerate executes the pipeline for one request and reports the result.
func (c *CLI) runGenerate(ctx context.Context, out io.Writer, request string, opts generateOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	var uploader storage.Uploader
	if opts.publish {
		local, err := storage.NewLocal(cfg.LocalOptions())
		if err != nil {
			return fmt.Errorf("publisher: %w", err)
		}
		uploader = local
	}

	showSpinner := !opts.asJSON
	runnerLogger := c.Logger
	if showSpinner {
		runnerLogger = c.quietLogger()
	}
	runner, err := c.newRunner(ctx, runnerOpts{noCache: opts.noCache, uploader: uploader, logger: runnerLogger})
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := pipeline.Options{
		Request:       request,
		ForceFallback: opts.fallback,
		Refresh:       opts.refresh,
		SkipText:      opts.noText,
		Format:        firstNonEmpty(opts.format, cfg.Render.Format),
		UnitScale:     cfg.Render.UnitScale,
		OutputDir:     cfg.Render.OutputDir,
		OutputPath:    opts.output,
		Logger:        runnerLogger,
	}

	var spinner *Spinner
	if showSpinner {
		spinner = newSpinnerWithContext(ctx, "Generating circuit...")
		spinner.Start()
	}
	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, popts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done("Generated circuit")

	sketchPath := ""
	if !opts.noText {
		sketchPath = opts.sketchOut
		if sketchPath == "" {
			sketchPath = strings.TrimSuffix(res.ImagePath, filepath.Ext(res.ImagePath)) + ".ino"
		}
		if err := os.WriteFile(sketchPath, []byte(res.Firmware), 0644); err != nil {
			return fmt.Errorf("write sketch: %w", err)
		}
	}
	if opts.netlistOut != "" {
		if err := cdio.ExportJSON(res.Netlist, opts.netlistOut); err != nil {
			return fmt.Errorf("write netlist: %w", err)
		}
	}

	if opts.asJSON {
		gr := generateResult{
			ImagePath:   res.ImagePath,
			ImageURL:    res.ImageURL,
			Explanation: res.Explanation,
			ArduinoCode: res.Firmware,
			Source:      res.Source,
			Netlist:     res.Netlist,
		}
		if res.Record != nil {
			gr.RecordID = res.Record.ID
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(gr)
	}

	printResult(res, sketchPath, opts.netlistOut)
	return nil
}

// printResult shows the outputs of a run.
func printResult(res *pipeline.Result, sketchPath, netlistPath string) {
	printSuccess("Generated circuit")
	printStats(circuitStats{
		components:  res.Stats.Components,
		connections: res.Stats.Connections,
		wires:       res.Stats.Wires,
		skipped:     res.Stats.Skipped,
		source:      res.Source,
		cached:      res.CacheInfo.RenderHit,
	})
	printFile(res.ImagePath)
	if sketchPath != "" {
		printFile(sketchPath)
	}
	if netlistPath != "" {
		printFile(netlistPath)
	}
	if res.ImageURL != "" {
		printLink(res.ImageURL)
	}

	if res.Explanation != "" && res.Explanation != pipeline.NoExplanation {
		printNewline()
		fmt.Println(StyleTitle.Render("Explanation"))
		fmt.Println(res.Explanation)
	}
	if res.Record != nil {
		printNewline()
		printNextStep("Show this run again", "circuitdraw history show "+res.Record.ID)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
