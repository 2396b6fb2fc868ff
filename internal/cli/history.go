package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/circuitdraw/pkg/history"
)

// historyCommand creates the history command for browsing past generations.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past generations",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyDeleteCommand())
	cmd.AddCommand(c.historyCleanupCommand())

	return cmd
}

// openHistory opens the configured store; a disabled store is an error here.
func (c *CLI) openHistory(ctx context.Context) (history.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := newHistory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("history is disabled (history.backend = %q)", cfg.History.Backend)
	}
	return store, nil
}

func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent generations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printInfo("No generations recorded yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), historyTable(records).Render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of records (0 for all)")

	return cmd
}

func historyTable(records []*history.Record) *table.Table {
	rows := make([][]string, len(records))
	for i, r := range records {
		components := 0
		if r.Netlist != nil {
			components = len(r.Netlist.Components)
		}
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			strconv.Itoa(components),
			truncate(r.Request, 48),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Created", "Source", "Parts", "Request").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})
}

func (c *CLI) historyShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("no record %s", args[0])
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}

			printKeyValue("ID", rec.ID)
			printKeyValue("Request", rec.Request)
			printKeyValue("Source", rec.Source)
			printKeyValue("Created", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			if rec.ImagePath != "" {
				printKeyValue("Image", rec.ImagePath)
			}
			if rec.ImageURL != "" {
				printKeyValue("Link", StyleLink.Render(rec.ImageURL))
			}
			if rec.Netlist != nil {
				printKeyValue("Netlist", fmt.Sprintf("%s, %s",
					plural(len(rec.Netlist.Components), "component"),
					plural(len(rec.Netlist.Connections), "connection")))
			}
			if rec.Explanation != "" {
				printNewline()
				fmt.Println(StyleTitle.Render("Explanation"))
				fmt.Println(rec.Explanation)
			}
			if rec.Firmware != "" {
				printNewline()
				fmt.Println(StyleTitle.Render("Arduino sketch"))
				fmt.Println(StyleCode.Render(rec.Firmware))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")

	return cmd
}

func (c *CLI) historyDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}

func (c *CLI) historyCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired generations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Cleanup(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("Nothing expired")
				return nil
			}
			printSuccess("Removed %s", plural(n, "expired record"))
			return nil
		},
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
