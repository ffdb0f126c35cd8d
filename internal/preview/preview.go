// Package preview renders a finished alert as markdown, for the wizard's
// review step and for `alertr history show`.
package preview

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"charm.land/glamour/v2"

	"github.com/mark3labs/alertr/internal/logger"
	"github.com/mark3labs/alertr/internal/recipients"
	"github.com/mark3labs/alertr/internal/wizard"
)

// DefaultTemplate is the built-in preview template.
// It uses {{variable}} placeholders for dynamic content injection.
const DefaultTemplate = `# {{title}}

{{message}}

## Agendamento

{{schedule}}{{copy}}

## Destinatários

{{recipients}}
{{image}}`

const (
	noSchedule   = "Sem data"
	noRecipients = "_Nenhum destinatário_"
	allMarker    = " (todos)"
)

// Variables holds the data to be injected into template placeholders.
type Variables struct {
	Title      string
	Message    string
	Schedule   string
	Recipients string
	Image      string
	Copy       string
}

// Render replaces {{variable}} placeholders in template with actual values.
// Supports {{title}}, {{message}}, {{schedule}}, {{recipients}}, {{image}} and {{copy}}.
func Render(template string, vars Variables) string {
	replacements := map[string]string{
		"{{title}}":      vars.Title,
		"{{message}}":    vars.Message,
		"{{schedule}}":   vars.Schedule,
		"{{recipients}}": vars.Recipients,
		"{{image}}":      vars.Image,
		"{{copy}}":       vars.Copy,
	}

	result := template
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// GetTemplate returns the custom template at customPath, or DefaultTemplate
// when customPath is empty.
func GetTemplate(customPath string) (string, error) {
	if customPath == "" {
		return DefaultTemplate, nil
	}
	data, err := os.ReadFile(customPath)
	if err != nil {
		return "", fmt.Errorf("failed to read preview template %s: %w", customPath, err)
	}
	return string(data), nil
}

// Lookup resolves category keys to their definitions. *recipients.Store
// satisfies it.
type Lookup interface {
	Category(key string) (recipients.Category, bool)
}

// Config holds what Build needs besides the payload.
type Config struct {
	// Lookup resolves ids to names. Without it ids are shown as is.
	Lookup Lookup
	// Order lists category keys in display order. Keys of the payload missing
	// from Order follow in sorted order.
	Order []string
	// TemplatePath is an optional custom template.
	TemplatePath string
}

// Build renders the payload to markdown.
func Build(p wizard.Payload, cfg Config) (string, error) {
	tmpl, err := GetTemplate(cfg.TemplatePath)
	if err != nil {
		return "", err
	}
	return Render(tmpl, VariablesFor(p, cfg)), nil
}

// VariablesFor formats every placeholder value of a payload.
func VariablesFor(p wizard.Payload, cfg Config) Variables {
	vars := Variables{
		Title:      p.Title,
		Message:    p.Message,
		Schedule:   p.Schedule(),
		Recipients: formatRecipients(p, cfg),
	}
	if vars.Schedule == "" {
		vars.Schedule = noSchedule
	}
	if p.SendCopyByEmail {
		vars.Copy = "\n\nCópia por e-mail: sim"
	}
	if p.Image != nil {
		vars.Image = "\n## Imagem\n\n" + p.Image.Name + "\n"
	}
	return vars
}

func formatRecipients(p wizard.Payload, cfg Config) string {
	var lines []string
	for _, key := range displayOrder(p, cfg.Order) {
		sel := p.RecipientCategories[key]
		if len(sel.SelectedIDs) == 0 {
			continue
		}

		label := key
		var cat recipients.Category
		found := false
		if cfg.Lookup != nil {
			cat, found = cfg.Lookup.Category(key)
			if found && cat.Label != "" {
				label = cat.Label
			}
		}

		names := make([]string, len(sel.SelectedIDs))
		for i, id := range sel.SelectedIDs {
			names[i] = id
			if found {
				if it, ok := cat.Item(id); ok && it.Name != "" {
					names[i] = it.Name
				}
			}
		}

		marker := ""
		if sel.AllSelected {
			marker = allMarker
		}
		lines = append(lines, fmt.Sprintf("- **%s**%s: %s", label, marker, strings.Join(names, ", ")))
	}
	if len(lines) == 0 {
		return noRecipients
	}
	return strings.Join(lines, "\n")
}

func displayOrder(p wizard.Payload, order []string) []string {
	out := make([]string, 0, len(p.RecipientCategories))
	seen := make(map[string]bool, len(order))
	for _, key := range order {
		if _, ok := p.RecipientCategories[key]; ok && !seen[key] {
			out = append(out, key)
			seen[key] = true
		}
	}
	var rest []string
	for key := range p.RecipientCategories {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

// RenderTerminal renders markdown for the terminal with glamour using the named
// standard style ("dark", "light", "notty"...). Falls back to the raw markdown
// if rendering fails.
func RenderTerminal(markdown string, width int, style string) string {
	if width <= 0 || width > 120 {
		width = 120
	}
	if style == "" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logger.Warn("glamour renderer unavailable: %v", err)
		return markdown
	}

	rendered, err := r.Render(markdown)
	if err != nil {
		logger.Warn("glamour render failed: %v", err)
		return markdown
	}
	return strings.TrimSuffix(rendered, "\n")
}
