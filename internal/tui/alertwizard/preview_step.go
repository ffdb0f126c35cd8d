package alertwizard

import (
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/mark3labs/alertr/internal/logger"
	"github.com/mark3labs/alertr/internal/preview"
	"github.com/mark3labs/alertr/internal/wizard"
)

// PreviewStep shows the assembled alert as rendered markdown.
type PreviewStep struct {
	ctrl     *wizard.Controller
	cfg      preview.Config
	style    string
	viewport viewport.Model
	markdown string
	width    int
	raw      bool
	onToggle func(raw bool)
}

// NewPreviewStep creates the step. style is the glamour style name.
func NewPreviewStep(ctrl *wizard.Controller, cfg preview.Config, style string) *PreviewStep {
	return &PreviewStep{
		ctrl:     ctrl,
		cfg:      cfg,
		style:    style,
		viewport: viewport.New(viewport.WithWidth(60), viewport.WithHeight(12)),
		width:    60,
	}
}

// SetSize resizes the viewport and re-renders.
func (s *PreviewStep) SetSize(width, height int) {
	s.width = width
	s.viewport.SetWidth(width)
	s.viewport.SetHeight(max(5, height-4))
	if s.markdown != "" {
		s.render()
	}
}

// SetRaw switches between the rendered alert and its markdown source.
func (s *PreviewStep) SetRaw(raw bool) {
	s.raw = raw
	if s.markdown != "" {
		s.render()
	}
}

// Raw reports whether the markdown source is shown.
func (s *PreviewStep) Raw() bool {
	return s.raw
}

func (s *PreviewStep) render() {
	if s.raw {
		s.viewport.SetContent(s.markdown)
		return
	}
	s.viewport.SetContent(preview.RenderTerminal(s.markdown, s.width, s.style))
}

// Refresh rebuilds the preview from the form.
func (s *PreviewStep) Refresh() {
	md, err := preview.Build(wizard.Assemble(s.ctrl.Form()), s.cfg)
	if err != nil {
		logger.Warn("preview template failed: %v", err)
		md = "**Erro no modelo de pré-visualização:** " + err.Error()
	}
	s.markdown = md
	s.render()
	s.viewport.GotoTop()
}

// Markdown returns the last rendered markdown.
func (s *PreviewStep) Markdown() string {
	return s.markdown
}

// Focus refreshes the preview; the viewport scrolls without focus.
func (s *PreviewStep) Focus() tea.Cmd {
	s.Refresh()
	return nil
}

// FocusLast is the same as Focus.
func (s *PreviewStep) FocusLast() tea.Cmd {
	return s.Focus()
}

// Blur is a no-op.
func (s *PreviewStep) Blur() {}

// FocusNext leaves the step.
func (s *PreviewStep) FocusNext() (bool, tea.Cmd) {
	return false, nil
}

// FocusPrev leaves the step.
func (s *PreviewStep) FocusPrev() (bool, tea.Cmd) {
	return false, nil
}

// CapturesEnter is always false; enter sends.
func (s *PreviewStep) CapturesEnter() bool {
	return false
}

// Update scrolls the viewport; r toggles the markdown source.
func (s *PreviewStep) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyPressMsg); ok && key.String() == "r" {
		s.SetRaw(!s.raw)
		if s.onToggle != nil {
			s.onToggle(s.raw)
		}
		return nil
	}
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}

// View renders the viewport.
func (s *PreviewStep) View() string {
	return strings.TrimRight(s.viewport.View(), "\n")
}

// Hints returns the key hints for this step.
func (s *PreviewStep) Hints() []string {
	return []string{
		"↑↓", "rolar",
		"r", "markdown",
		"ctrl+s", "enviar",
		"esc", "voltar",
	}
}
