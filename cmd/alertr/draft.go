package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/alertr/internal/recipients"
	"github.com/mark3labs/alertr/internal/wizard"
)

// Draft is a wizard session written as YAML. `send --draft` replays it through
// the controller.
type Draft struct {
	Title       string                    `yaml:"title"`
	Message     string                    `yaml:"message"`
	Image       *wizard.ImageHandle       `yaml:"image,omitempty"`
	Date        string                    `yaml:"date,omitempty"`
	Time        string                    `yaml:"time,omitempty"`
	SendToday   bool                      `yaml:"send_today,omitempty"`
	CopyByEmail bool                      `yaml:"copy_by_email,omitempty"`
	Extra       map[string]string         `yaml:"extra,omitempty"`
	Recipients  map[string]DraftSelection `yaml:"recipients"`
}

// DraftSelection is either the word "all" or a list of item ids.
type DraftSelection struct {
	All bool
	IDs []string
}

// UnmarshalYAML accepts `all`, `todos`, a single id or a list of ids.
func (d *DraftSelection) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var s string
		if err := n.Decode(&s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "all", "todos":
			d.All = true
		default:
			d.IDs = []string{s}
		}
		return nil
	case yaml.SequenceNode:
		return n.Decode(&d.IDs)
	}
	return fmt.Errorf("line %d: a selection is \"all\" or a list of ids", n.Line)
}

func loadDraft(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}
	return parseDraft(data)
}

func parseDraft(data []byte) (*Draft, error) {
	var d Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse draft: %w", err)
	}
	return &d, nil
}

// replay fills the session from d. Categories are applied in wizard order, each
// dependent category loaded once its parent selection is in place. The wizard
// then advances as far as the steps validate; with strict set, a step that does
// not validate is an error.
func (s *session) replay(ctx context.Context, d *Draft, strict bool) error {
	for key := range d.Recipients {
		if !s.form.Categories.Has(key) {
			return fmt.Errorf("draft selects unknown category %q", key)
		}
	}

	s.ctrl.Edit(func(f *wizard.FormData) {
		f.Title = d.Title
		f.Message = d.Message
		f.Image = d.Image
		f.Date = d.Date
		f.Time = d.Time
		f.SendToday = d.SendToday
		f.SendCopyByEmail = d.CopyByEmail
		for k, v := range d.Extra {
			f.Extra[k] = v
		}
	})

	agg := recipients.NewAggregator(s.resolver)
	for _, key := range s.form.CategoryOrder() {
		if s.cascade.HasLoader(key) {
			if err := s.cascade.Load(ctx, key); err != nil {
				return err
			}
		}

		sel, ok := d.Recipients[key]
		if !ok {
			continue
		}
		visible := s.resolver.FilteredIDs(key)
		if sel.All {
			agg.SetItems(key, visible)
			continue
		}
		for _, id := range sel.IDs {
			if !slices.Contains(visible, id) {
				return fmt.Errorf("category %s: item %q is not available for the selected parents", key, id)
			}
		}
		agg.SetItems(key, sel.IDs)
	}

	for !s.ctrl.IsLast() {
		if err := s.ctrl.Advance(); err != nil {
			if strict {
				return fmt.Errorf("draft incomplete: %w", err)
			}
			return nil
		}
	}
	return nil
}
