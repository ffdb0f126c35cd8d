package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mark3labs/alertr/internal/alerts"
	"github.com/mark3labs/alertr/internal/logger"
	"github.com/mark3labs/alertr/internal/state"
	"github.com/mark3labs/alertr/internal/tui/alertwizard"
	"github.com/mark3labs/alertr/internal/wizard"
)

var sendFlags struct {
	headless bool
	draft    string
	json     bool
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Compose and send an alert",
	Long: `Open the alert wizard. With --draft the wizard starts pre-filled from a YAML
draft; with --headless the draft is sent without opening the wizard.`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().BoolVar(&sendFlags.headless, "headless", false, "Send the draft without the TUI")
	sendCmd.Flags().StringVarP(&sendFlags.draft, "draft", "d", "", "YAML draft to pre-fill the wizard")
	sendCmd.Flags().BoolVar(&sendFlags.json, "json", false, "Print the sent alert as JSON")
}

func runSend(cmd *cobra.Command, args []string) error {
	if sendFlags.headless && sendFlags.draft == "" {
		return fmt.Errorf("--headless requires --draft")
	}
	ctx := cmd.Context()

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}

	store, closeHistory, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	// Printed once the TUI has released the terminal.
	hookOut := &hookOutput{}
	defer hookOut.Flush(os.Stderr)
	if err := attachHooks(store, wd, hookOut); err != nil {
		return err
	}
	var sent alerts.Alert
	store.OnSent(func(_ context.Context, a alerts.Alert) { sent = a })

	s, err := newSession(cfg, cat)
	if err != nil {
		return err
	}
	defer s.Close()

	if sendFlags.draft != "" {
		d, err := loadDraft(sendFlags.draft)
		if err != nil {
			return err
		}
		if err := s.replay(ctx, d, sendFlags.headless); err != nil {
			return err
		}
	}

	timeout, _ := cfg.SubmitTimeoutDuration()
	var p wizard.Payload
	if sendFlags.headless {
		sendCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			sendCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		p, err = s.ctrl.Finish(sendCtx, store)
		if err != nil {
			return errors.New(wizard.UserMessage(err))
		}
	} else {
		ui := state.Load(cfg.DataDir)
		p, err = alertwizard.Run(alertwizard.Options{
			Controller:   s.ctrl,
			Resolver:     s.resolver,
			Cascade:      s.cascade,
			Sender:       store,
			Preview:      s.preview,
			GlamourStyle: glamourStyle(outputProfile(os.Stdout)),
			RawPreview:   ui.Preview.Raw,
			OnRawPreviewChange: func(raw bool) {
				ui.Preview.Raw = raw
				if err := state.Save(cfg.DataDir, ui); err != nil {
					logger.Warn("saving UI state: %v", err)
				}
			},
			SubmitTimeout: timeout,
		})
		if errors.Is(err, alertwizard.ErrCancelled) {
			fmt.Println("Envio cancelado.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	if sendFlags.json {
		out, err := json.MarshalIndent(sent, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Printf("Alerta %s enviado para %d destinatário(s) (%s).\n", sent.ID, p.RecipientCount(), p.Schedule())
	return nil
}
