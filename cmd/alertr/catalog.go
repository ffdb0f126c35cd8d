package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mark3labs/alertr/internal/catalog"
	"github.com/mark3labs/alertr/internal/recipients"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect recipient catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a catalog for unknown parents, cycles and duplicate ids",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Catalog
		if len(args) == 1 {
			path = args[0]
		}
		cat, err := loadCatalog(path)
		if err != nil {
			return err
		}

		defs := make([]recipients.Category, 0, len(cat.Categories))
		for _, d := range cat.Categories {
			defs = append(defs, recipients.Category{Key: d.Key, DependsOn: d.DependsOn})
		}
		fmt.Printf("%s: %d categorias OK\n", path, len(cat.Categories))
		for _, key := range recipients.TopoOrder(defs) {
			for _, d := range cat.Categories {
				if d.Key != key {
					continue
				}
				parent := "-"
				if len(d.DependsOn) > 0 {
					parent = d.DependsOn[0]
				}
				fmt.Printf("  %-12s %-20s depende de %-10s %d itens\n", d.Key, d.Label, parent, len(d.Items))
			}
		}
		return nil
	},
}

var catalogExampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print the example school catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print(highlight(string(catalog.Example), "yaml", outputProfile(os.Stdout)))
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogExampleCmd)
}
