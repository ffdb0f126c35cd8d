package alertwizard

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/mark3labs/alertr/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
)

// ButtonID identifies what a button does.
type ButtonID int

const (
	ButtonBack ButtonID = iota
	ButtonCancel
	ButtonNext
	ButtonSend
)

// Button represents a single button in the button bar.
type Button struct {
	ID    ButtonID
	Label string
	State ButtonState
}

// ButtonBar manages a row of buttons and which one has focus.
type ButtonBar struct {
	buttons []Button
	focus   int // -1 when the bar is not focused
	width   int
}

// NewButtonBar creates a button bar without focus.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{buttons: buttons, focus: -1, width: 60}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// SetButtons swaps the buttons, keeping focus on the same position if possible.
func (b *ButtonBar) SetButtons(buttons []Button) {
	b.buttons = buttons
	if b.focus >= len(buttons) {
		b.focus = len(buttons) - 1
	}
}

// Focused reports whether any button has focus.
func (b *ButtonBar) Focused() bool {
	return b.focus >= 0
}

// FocusFirst focuses the first enabled button.
func (b *ButtonBar) FocusFirst() bool {
	b.focus = -1
	return b.FocusNext()
}

// FocusLast focuses the last enabled button.
func (b *ButtonBar) FocusLast() bool {
	b.focus = len(b.buttons)
	return b.FocusPrev()
}

// FocusNext moves focus to the next enabled button. Returns false when it runs
// off the end, leaving the bar unfocused.
func (b *ButtonBar) FocusNext() bool {
	for i := b.focus + 1; i < len(b.buttons); i++ {
		if b.buttons[i].State != ButtonDisabled {
			b.focus = i
			return true
		}
	}
	b.focus = -1
	return false
}

// FocusPrev moves focus to the previous enabled button. Returns false when it
// runs off the start, leaving the bar unfocused.
func (b *ButtonBar) FocusPrev() bool {
	for i := b.focus - 1; i >= 0; i-- {
		if b.buttons[i].State != ButtonDisabled {
			b.focus = i
			return true
		}
	}
	b.focus = -1
	return false
}

// Blur removes focus from the bar.
func (b *ButtonBar) Blur() {
	b.focus = -1
}

// FocusedButton returns the focused button.
func (b *ButtonBar) FocusedButton() (Button, bool) {
	if b.focus < 0 || b.focus >= len(b.buttons) {
		return Button{}, false
	}
	return b.buttons[b.focus], true
}

// Render renders the button bar centered in its width.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}
	s := theme.Current().S()

	rendered := make([]string, 0, len(b.buttons))
	for i, btn := range b.buttons {
		switch {
		case btn.State == ButtonDisabled:
			rendered = append(rendered, s.ButtonDisabled.Render(btn.Label))
		case i == b.focus:
			rendered = append(rendered, s.ButtonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, s.ButtonNormal.Render(btn.Label))
		}
	}

	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, strings.Join(rendered, ""))
}

// navigationButtons builds the bar for a step: Cancel or Back on the left,
// Next or Send on the right.
func navigationButtons(first, last, forwardEnabled bool) []Button {
	left := Button{ID: ButtonBack, Label: "← Voltar"}
	if first {
		left = Button{ID: ButtonCancel, Label: "Cancelar"}
	}

	right := Button{ID: ButtonNext, Label: "Avançar →"}
	if last {
		right = Button{ID: ButtonSend, Label: "Enviar"}
	}
	if !forwardEnabled {
		right.State = ButtonDisabled
	}
	return []Button{left, right}
}
