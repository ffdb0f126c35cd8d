package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark3labs/alertr/internal/mcpserver"
	"github.com/mark3labs/alertr/internal/preview"
)

var mcpFlags struct {
	port int
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the alert history as MCP tools over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	mcpCmd.Flags().IntVarP(&mcpFlags.port, "port", "p", 0, "Port to listen on (0 picks a free port)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeHistory, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	pc := preview.Config{TemplatePath: cfg.PreviewTemplate}
	if cat, err := loadCatalog(cfg.Catalog); err == nil {
		pc.Lookup = cat.Store()
		pc.Order = cat.Keys()
	}

	srv := mcpserver.New(store, pc)
	if _, err := srv.Start(ctx, mcpFlags.port); err != nil {
		return err
	}
	defer func() { _ = srv.Stop() }()

	fmt.Printf("MCP server listening on %s (ctrl+c to stop)\n", srv.URL())
	<-ctx.Done()
	return nil
}
