package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// Example is a sample circuit request.
type Example struct {
	Name    string
	Request string
}

// examples are requests the rule builder answers without a language model.
var examples = []Example{
	{Name: "blink", Request: "Arduino Uno blink an LED on D13"},
	{Name: "button", Request: "Arduino with a push button on D2 and an LED on D13"},
	{Name: "camera", Request: "ESP32-CAM with OV2640 camera module"},
	{Name: "battery", Request: "9V battery powering an LED through a resistor"},
	{Name: "minimal", Request: "Arduino Uno"},
}

// findExample looks an example up by name.
func findExample(name string) (Example, bool) {
	for _, ex := range examples {
		if ex.Name == name {
			return ex, true
		}
	}
	return Example{}, false
}

// examplesCommand creates the examples command, which lists sample requests
// and generates the one picked.
func (c *CLI) examplesCommand() *cobra.Command {
	var (
		list     bool
		fallback bool
	)

	cmd := &cobra.Command{
		Use:   "examples [name]",
		Short: "Pick a sample request and generate it",
		Long: `Pick a sample request and generate it.

Without arguments an interactive picker is shown. With a name the example is
generated directly; --list prints the table of examples and exits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				rows := make([][]string, len(examples))
				for i, ex := range examples {
					rows[i] = []string{fmt.Sprintf("%d", i+1), ex.Name, ex.Request}
				}
				fmt.Fprintln(cmd.OutOrStdout(), examplesTable(rows, nil).Render())
				return nil
			}

			var picked Example
			if len(args) == 1 {
				ex, ok := findExample(args[0])
				if !ok {
					return fmt.Errorf("unknown example: %s (see 'circuitdraw examples --list')", args[0])
				}
				picked = ex
			} else {
				p := tea.NewProgram(NewExampleListModel(examples), tea.WithOutput(os.Stderr))
				final, err := p.Run()
				if err != nil {
					return fmt.Errorf("example picker: %w", err)
				}
				m := final.(ExampleListModel)
				if m.Selected == nil {
					return nil
				}
				picked = *m.Selected
			}

			printInfo("Generating %q", picked.Request)
			return c.runGenerate(cmd.Context(), cmd.OutOrStdout(), picked.Request, generateOpts{fallback: fallback})
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "print the examples and exit")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "use the rule builder instead of the language model")

	return cmd
}
