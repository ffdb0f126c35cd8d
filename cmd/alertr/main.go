package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/mark3labs/alertr/internal/config"
	"github.com/mark3labs/alertr/internal/logger"
	"github.com/mark3labs/alertr/internal/tui/theme"
)

const (
	logoText1 = "▄▀█ █   █▀▀ █▀█ ▀█▀ █▀█"
	logoText2 = "█▀█ █▄▄ ██▄ █▀▄  █  █▀▄"
)

// Version set via ldflags during build
var version = "dev"

// cfg is loaded before every command runs.
var cfg *config.Config

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "alertr",
	Short:             "Compose and send recipient-targeted alerts from the terminal",
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.Current()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

alertr walks you through composing an alert: the message, the recipients
(picked from dependent categories such as school, grade, class and student),
the schedule and a final review. Sent alerts are kept in an embedded NATS
JetStream log and can be listed, inspected and deleted from the CLI or over MCP.`

	pf := rootCmd.PersistentFlags()
	pf.String("data-dir", "", "Data directory for the alert history (default .alertr)")
	pf.String("catalog", "", "Recipient catalog file (default catalog.yml)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Write logs to this file")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(initCmd)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(config.WithFlags(cmd.Flags()))
	if err != nil {
		return err
	}
	if err := logger.Configure(c.LogLevel, c.LogFile); err != nil {
		return err
	}
	cfg = c
	logger.Debug("config loaded: data_dir=%s catalog=%s", c.DataDir, c.Catalog)
	return nil
}
