package alertwizard

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/mark3labs/alertr/internal/tui/theme"
	"github.com/mark3labs/alertr/internal/wizard"
)

// Scheduling fields in focus order.
const (
	fieldSendToday = iota
	fieldCopy
	fieldDate
	fieldTime
	fieldCount
)

// SchedulingStep edits when the alert goes out and whether a copy is e-mailed.
type SchedulingStep struct {
	ctrl       *wizard.Controller
	date       textinput.Model
	time       textinput.Model
	focusIndex int // -1 when blurred
}

// NewSchedulingStep creates the step with the form's current values.
func NewSchedulingStep(ctrl *wizard.Controller) *SchedulingStep {
	form := ctrl.Form()

	date := textinput.New()
	date.Placeholder = "dd/mm/aaaa"
	date.Prompt = ""
	date.SetStyles(inputStyles())
	date.SetWidth(12)
	date.CharLimit = 10
	date.SetValue(form.Date)

	tm := textinput.New()
	tm.Placeholder = "hh:mm"
	tm.Prompt = ""
	tm.SetStyles(inputStyles())
	tm.SetWidth(6)
	tm.CharLimit = 5
	tm.SetValue(form.Time)

	return &SchedulingStep{ctrl: ctrl, date: date, time: tm, focusIndex: -1}
}

// SetSize is a no-op; the fields have fixed widths.
func (s *SchedulingStep) SetSize(width, height int) {}

// Focus focuses the first field.
func (s *SchedulingStep) Focus() tea.Cmd {
	return s.focus(fieldSendToday)
}

// FocusLast focuses the last reachable field.
func (s *SchedulingStep) FocusLast() tea.Cmd {
	if s.ctrl.Form().SendToday {
		return s.focus(fieldCopy)
	}
	return s.focus(fieldTime)
}

func (s *SchedulingStep) focus(i int) tea.Cmd {
	s.Blur()
	s.focusIndex = i
	switch i {
	case fieldDate:
		return s.date.Focus()
	case fieldTime:
		return s.time.Focus()
	}
	return nil
}

// Blur removes focus from every field.
func (s *SchedulingStep) Blur() {
	s.date.Blur()
	s.time.Blur()
	s.focusIndex = -1
}

// reachable reports whether a field can take focus. Date and time are skipped
// while sending today.
func (s *SchedulingStep) reachable(i int) bool {
	if i == fieldDate || i == fieldTime {
		return !s.ctrl.Form().SendToday
	}
	return true
}

// FocusNext moves to the next reachable field.
func (s *SchedulingStep) FocusNext() (bool, tea.Cmd) {
	for i := s.focusIndex + 1; i < fieldCount; i++ {
		if s.reachable(i) {
			return true, s.focus(i)
		}
	}
	s.Blur()
	return false, nil
}

// FocusPrev moves to the previous reachable field.
func (s *SchedulingStep) FocusPrev() (bool, tea.Cmd) {
	for i := s.focusIndex - 1; i >= 0; i-- {
		if s.reachable(i) {
			return true, s.focus(i)
		}
	}
	s.Blur()
	return false, nil
}

// CapturesEnter is always false.
func (s *SchedulingStep) CapturesEnter() bool {
	return false
}

// Update toggles the checkboxes and forwards typing to the date and time inputs.
func (s *SchedulingStep) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "space", " ":
			switch s.focusIndex {
			case fieldSendToday:
				s.ctrl.Edit(func(f *wizard.FormData) { f.SendToday = !f.SendToday })
				return nil
			case fieldCopy:
				s.ctrl.Edit(func(f *wizard.FormData) { f.SendCopyByEmail = !f.SendCopyByEmail })
				return nil
			}
		case "up", "down":
			if s.focusIndex == fieldSendToday || s.focusIndex == fieldCopy {
				return nil
			}
		}
	}

	var cmd tea.Cmd
	switch s.focusIndex {
	case fieldDate:
		s.date, cmd = s.date.Update(msg)
		if v := s.date.Value(); v != s.ctrl.Form().Date {
			s.ctrl.Edit(func(f *wizard.FormData) { f.Date = v })
		}
	case fieldTime:
		s.time, cmd = s.time.Update(msg)
		if v := s.time.Value(); v != s.ctrl.Form().Time {
			s.ctrl.Edit(func(f *wizard.FormData) { f.Time = v })
		}
	}
	return cmd
}

// View renders the checkboxes and, unless sending today, the date and time.
func (s *SchedulingStep) View() string {
	st := theme.Current().S()
	form := s.ctrl.Form()

	checkbox := func(i int, on bool, label string) string {
		box := "[ ]"
		if on {
			box = st.Checked.Render("[x]")
		}
		prefix := "  "
		if s.focusIndex == i {
			prefix = st.Cursor.Render("› ")
		}
		return prefix + box + " " + label
	}

	var b strings.Builder
	b.WriteString(checkbox(fieldSendToday, form.SendToday, "Enviar hoje"))
	b.WriteString("\n")
	b.WriteString(checkbox(fieldCopy, form.SendCopyByEmail, "Enviar cópia por e-mail"))
	b.WriteString("\n\n")

	if form.SendToday {
		b.WriteString(st.Disabled.Render("O alerta será enviado hoje."))
		return b.String()
	}
	b.WriteString(st.Text.Bold(true).Render("Data"))
	b.WriteString("  ")
	b.WriteString(s.date.View())
	b.WriteString("\n")
	b.WriteString(st.Text.Bold(true).Render("Hora"))
	b.WriteString("  ")
	b.WriteString(s.time.View())
	return b.String()
}

// Hints returns the key hints for this step.
func (s *SchedulingStep) Hints() []string {
	return []string{
		"tab", "próximo campo",
		"espaço", "marcar",
		"ctrl+n", "avançar",
		"esc", "voltar",
	}
}
