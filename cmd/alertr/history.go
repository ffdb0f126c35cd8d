package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark3labs/alertr/internal/alerts"
	"github.com/mark3labs/alertr/internal/preview"
)

var historyFlags struct {
	raw bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List sent alerts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeHistory, err := openHistory(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeHistory()

		items, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		printAlertTable(os.Stdout, items)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a sent alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeHistory, err := openHistory(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeHistory()

		a, err := store.Get(cmd.Context(), args[0])
		if errors.Is(err, alerts.ErrNotFound) {
			return fmt.Errorf("alert %s not found", args[0])
		}
		if err != nil {
			return err
		}

		// Names come from the current catalog; ids removed since are shown as is.
		pc := preview.Config{TemplatePath: cfg.PreviewTemplate}
		if cat, err := loadCatalog(cfg.Catalog); err == nil {
			pc.Lookup = cat.Store()
			pc.Order = cat.Keys()
		}
		md, err := preview.Build(a.Payload, pc)
		if err != nil {
			return err
		}

		fmt.Printf("%s  enviado em %s\n", a.ID, a.SentAt.Local().Format("02/01/2006 15:04"))
		if historyFlags.raw {
			fmt.Println(md)
			return nil
		}
		fmt.Print(preview.RenderTerminal(md, 100, glamourStyle(outputProfile(os.Stdout))))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a sent alert from the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeHistory, err := openHistory(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeHistory()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, alerts.ErrNotFound) {
				return fmt.Errorf("alert %s not found", args[0])
			}
			return err
		}
		fmt.Printf("Alerta %s removido.\n", args[0])
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyShowCmd)
	historyShowCmd.Flags().BoolVar(&historyFlags.raw, "raw", false, "Print markdown instead of rendering it")
}

// printAlertTable prints alerts in a table format.
func printAlertTable(out io.Writer, items []alerts.TableItem) {
	if len(items) == 0 {
		fmt.Fprintln(out, "Nenhum alerta enviado.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tENVIADO\tAGENDADO\tDEST.\tTÍTULO")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			it.ID,
			it.SentAt.In(time.Local).Format("02/01/2006 15:04"),
			it.ScheduledFor,
			it.Recipients,
			truncate(it.Title, 50),
		)
	}
	_ = w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
