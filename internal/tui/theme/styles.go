package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	Title       lipgloss.Style
	Text        lipgloss.Style
	Muted       lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	GroupHeader lipgloss.Style

	// Step indicator
	StepCompleted lipgloss.Style
	StepCurrent   lipgloss.Style
	StepPending   lipgloss.Style

	// Selection lists
	Cursor   lipgloss.Style
	Checked  lipgloss.Style
	Disabled lipgloss.Style

	// Category tabs
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabDisabled lipgloss.Style

	Panel        lipgloss.Style
	PanelFocused lipgloss.Style

	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style
}
