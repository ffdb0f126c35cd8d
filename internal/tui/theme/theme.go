package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string

	// Background hierarchy (dark→light)
	BgBase     string
	BgMantle   string
	BgSurface0 string
	BgSurface1 string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string

	// Status colors
	Success string
	Warning string
	Error   string

	BorderDefault string
	BorderFocused string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

var current = NewCatppuccinMocha()

// Current returns the active theme.
func Current() *Theme {
	return current
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

func (t *Theme) color(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	button := lipgloss.NewStyle().Padding(0, 2).MarginLeft(1).MarginRight(1)

	return &Styles{
		Title:       t.color(t.Primary).Bold(true),
		Text:        t.color(t.FgBase),
		Muted:       t.color(t.FgMuted),
		Error:       t.color(t.Error).Bold(true),
		Success:     t.color(t.Success).Bold(true),
		GroupHeader: t.color(t.Secondary).Bold(true).MarginTop(1),

		StepCompleted: t.color(t.Success),
		StepCurrent:   t.color(t.Primary).Bold(true).Underline(true),
		StepPending:   t.color(t.FgMuted),

		Cursor:   t.color(t.Primary).Bold(true),
		Checked:  t.color(t.Success),
		Disabled: t.color(t.FgMuted).Faint(true),

		TabActive:   t.color(t.BgBase).Background(lipgloss.Color(t.Primary)).Bold(true).Padding(0, 1),
		TabInactive: t.color(t.FgSubtle).Background(lipgloss.Color(t.BgSurface0)).Padding(0, 1),
		TabDisabled: t.color(t.FgMuted).Background(lipgloss.Color(t.BgMantle)).Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderDefault)).
			Padding(1, 2),
		PanelFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderFocused)).
			Padding(1, 2),

		ButtonNormal:   button.Foreground(lipgloss.Color(t.FgBase)).Background(lipgloss.Color(t.BgSurface1)),
		ButtonDisabled: button.Foreground(lipgloss.Color(t.FgMuted)).Background(lipgloss.Color(t.BgMantle)),
		ButtonFocused:  button.Foreground(lipgloss.Color(t.BgBase)).Background(lipgloss.Color(t.Secondary)).Bold(true),

		HintKey:       t.color(t.FgSubtle).Bold(true),
		HintDesc:      t.color(t.FgMuted),
		HintSeparator: t.color(t.BgSurface1),
	}
}
