package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mark3labs/alertr/internal/catalog"
	"github.com/mark3labs/alertr/internal/config"
)

var initFlags struct {
	global bool
	force  bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an alertr configuration file",
	Long: `Create an alertr configuration file with sensible defaults.

By default, creates alertr.yml in the current directory together with an example
catalog.yml. Use --global to write ~/.config/alertr/alertr.yml instead.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initFlags.global, "global", "g", false, "Write the global config instead of the project one")
	initCmd.Flags().BoolVarP(&initFlags.force, "force", "f", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetPath := config.ProjectPath()
	if initFlags.global {
		targetPath = config.GlobalPath()
	}
	if !initFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	before, _ := os.ReadFile(targetPath)

	c := *cfg
	c.LogFile = ""
	var err error
	if initFlags.global {
		err = config.WriteGlobal(&c)
	} else {
		err = config.WriteProject(&c)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("Config written to: %s\n", targetPath)
	if after, err := os.ReadFile(targetPath); err == nil && len(before) > 0 {
		if d := configDiff(targetPath, string(before), string(after)); d != "" {
			fmt.Println(highlight(d, "diff", outputProfile(os.Stdout)))
		}
	}

	if !initFlags.global && (initFlags.force || !fileExists(c.Catalog)) {
		if err := os.WriteFile(c.Catalog, catalog.Example, 0644); err != nil {
			return fmt.Errorf("failed to write example catalog: %w", err)
		}
		fmt.Printf("Example catalog written to: %s\n", c.Catalog)
	}

	fmt.Println("\nRun 'alertr send' to compose an alert.")
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
