package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mark3labs/alertr/internal/alerts"
	"github.com/mark3labs/alertr/internal/catalog"
	"github.com/mark3labs/alertr/internal/config"
	"github.com/mark3labs/alertr/internal/hooks"
	"github.com/mark3labs/alertr/internal/logger"
	"github.com/mark3labs/alertr/internal/nats"
	"github.com/mark3labs/alertr/internal/preview"
	"github.com/mark3labs/alertr/internal/recipients"
	"github.com/mark3labs/alertr/internal/wizard"
)

// openHistory opens the alert history under the configured data directory. The
// returned function shuts the embedded server down.
func openHistory(ctx context.Context, c *config.Config) (*alerts.Store, func(), error) {
	bus, err := nats.Open(ctx, c.DataDir, c.Retention())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open alert history: %w", err)
	}
	store := alerts.NewStore(bus.JS, bus.Stream)
	return store, func() { _ = bus.Close() }, nil
}

// hookOutput collects post_send hook output while the TUI owns the terminal.
// Hooks run from the send command's goroutine, so writes are serialized.
type hookOutput struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (h *hookOutput) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.Write(p)
}

// Flush copies what was collected so far to w.
func (h *hookOutput) Flush(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.buf.Len() > 0 {
		_, _ = h.buf.WriteTo(w)
	}
}

// attachHooks runs the post_send hooks of the working directory after every
// recorded alert, writing their output to out.
func attachHooks(store *alerts.Store, workDir string, out io.Writer) error {
	hc, err := hooks.LoadConfig(workDir)
	if err != nil {
		return err
	}
	if hc == nil || len(hc.Hooks.PostSend) == 0 {
		return nil
	}

	store.OnSent(func(ctx context.Context, a alerts.Alert) {
		res, err := hooks.ExecuteAll(ctx, hc.Hooks.PostSend, workDir, hooks.Variables{
			AlertID:    a.ID,
			Title:      a.Payload.Title,
			Recipients: a.Payload.RecipientCount(),
		})
		if err != nil {
			logger.Warn("post_send hooks interrupted: %v", err)
		}
		if res != "" {
			fmt.Fprintln(out, res)
		}
	})
	return nil
}

// loadCatalog reads and validates a catalog file.
func loadCatalog(path string) (*catalog.Catalog, error) {
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return cat, nil
}

// session is one wizard run wired to a catalog.
type session struct {
	ctrl     *wizard.Controller
	form     *wizard.FormData
	resolver *recipients.Resolver
	cascade  *recipients.Cascade
	preview  preview.Config
}

func newSession(c *config.Config, cat *catalog.Catalog) (*session, error) {
	reg, err := wizard.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	form := wizard.NewFormData(cat.Definitions())

	order := recipients.GroupOrderFirstSeen
	if c.GroupOrder == config.GroupOrderParent {
		order = recipients.GroupOrderParent
	}
	resolver := recipients.NewResolver(form.Categories, recipients.WithGroupOrder(order))
	cascade := recipients.NewCascade(resolver, recipients.WithPruneHidden(c.PruneHidden))
	if err := cat.Register(cascade); err != nil {
		return nil, err
	}

	return &session{
		ctrl:     wizard.NewController(reg, form),
		form:     form,
		resolver: resolver,
		cascade:  cascade,
		preview: preview.Config{
			Lookup:       form.Categories,
			Order:        form.CategoryOrder(),
			TemplatePath: c.PreviewTemplate,
		},
	}, nil
}

func (s *session) Close() {
	s.ctrl.Close()
}
