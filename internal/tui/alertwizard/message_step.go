package alertwizard

import (
	"os"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/editor"

	"github.com/mark3labs/alertr/internal/tui/theme"
	"github.com/mark3labs/alertr/internal/wizard"
)

// MessageStep edits the alert title and body.
type MessageStep struct {
	ctrl       *wizard.Controller
	title      textinput.Model
	body       textarea.Model
	focusIndex int // 0=title, 1=body, -1=blurred
	tmpFile    string
	width      int
}

// inputStyles are the textinput styles shared by every single-line field.
func inputStyles() textinput.Styles {
	t := theme.Current()
	return textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	}
}

// NewMessageStep creates the step with the form's current values.
func NewMessageStep(ctrl *wizard.Controller) *MessageStep {
	form := ctrl.Form()

	title := textinput.New()
	title.Placeholder = "Título do alerta"
	title.Prompt = ""
	title.SetStyles(inputStyles())
	title.SetWidth(50)
	title.SetValue(form.Title)

	body := textarea.New()
	body.Placeholder = "Escreva a mensagem..."
	body.ShowLineNumbers = false
	body.SetWidth(50)
	body.SetHeight(6)
	body.SetValue(form.Message)

	return &MessageStep{
		ctrl:  ctrl,
		title: title,
		body:  body,
		width: 60,
	}
}

// SetSize updates the field widths.
func (s *MessageStep) SetSize(width, height int) {
	s.width = width
	s.title.SetWidth(width - 2)
	s.body.SetWidth(width - 2)
	s.body.SetHeight(max(3, min(10, height-8)))
}

// Focus focuses the title field.
func (s *MessageStep) Focus() tea.Cmd {
	return s.focus(0)
}

// FocusLast focuses the message body.
func (s *MessageStep) FocusLast() tea.Cmd {
	return s.focus(1)
}

func (s *MessageStep) focus(i int) tea.Cmd {
	s.Blur()
	s.focusIndex = i
	if i == 0 {
		return s.title.Focus()
	}
	return s.body.Focus()
}

// Blur removes focus from both fields.
func (s *MessageStep) Blur() {
	s.title.Blur()
	s.body.Blur()
	s.focusIndex = -1
}

// FocusNext moves from title to body. Returns false from the body.
func (s *MessageStep) FocusNext() (bool, tea.Cmd) {
	if s.focusIndex == 0 {
		return true, s.focus(1)
	}
	s.Blur()
	return false, nil
}

// FocusPrev moves from body to title. Returns false from the title.
func (s *MessageStep) FocusPrev() (bool, tea.Cmd) {
	if s.focusIndex == 1 {
		return true, s.focus(0)
	}
	s.Blur()
	return false, nil
}

// CapturesEnter reports whether enter belongs to the focused field.
func (s *MessageStep) CapturesEnter() bool {
	return s.focusIndex == 1
}

// Update forwards input to the focused field and writes it back to the form.
func (s *MessageStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+e" && os.Getenv("EDITOR") != "" {
			return s.openEditor()
		}
	case MessageEditedMsg:
		if s.tmpFile != "" {
			_ = os.Remove(s.tmpFile)
			s.tmpFile = ""
		}
		if msg.Err != nil {
			return nil
		}
		content := strings.TrimRight(msg.Content, "\n")
		s.body.SetValue(content)
		s.ctrl.Edit(func(f *wizard.FormData) { f.Message = content })
		return nil
	}

	var cmd tea.Cmd
	switch s.focusIndex {
	case 0:
		s.title, cmd = s.title.Update(msg)
		if v := s.title.Value(); v != s.ctrl.Form().Title {
			s.ctrl.Edit(func(f *wizard.FormData) { f.Title = v })
		}
	case 1:
		s.body, cmd = s.body.Update(msg)
		if v := s.body.Value(); v != s.ctrl.Form().Message {
			s.ctrl.Edit(func(f *wizard.FormData) { f.Message = v })
		}
	}
	return cmd
}

// openEditor launches $EDITOR on the current message.
func (s *MessageStep) openEditor() tea.Cmd {
	tmpfile, err := os.CreateTemp("", "alertr_message_*.md")
	if err != nil {
		return nil
	}
	if _, err := tmpfile.WriteString(s.body.Value()); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()
	s.tmpFile = tmpfile.Name()

	cmd, err := editor.Command("alertr", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		s.tmpFile = ""
		return nil
	}

	path := tmpfile.Name()
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			return MessageEditedMsg{Err: err}
		}
		content, err := os.ReadFile(path)
		return MessageEditedMsg{Content: string(content), Err: err}
	})
}

// View renders both fields.
func (s *MessageStep) View() string {
	st := theme.Current().S()
	var b strings.Builder

	b.WriteString(st.Text.Bold(true).Render("Título"))
	b.WriteString("\n")
	b.WriteString(s.title.View())
	b.WriteString("\n\n")
	b.WriteString(st.Text.Bold(true).Render("Mensagem"))
	b.WriteString("\n")
	b.WriteString(s.body.View())
	return b.String()
}

// Hints returns the key hints for this step.
func (s *MessageStep) Hints() []string {
	hints := []string{"tab", "próximo campo"}
	if os.Getenv("EDITOR") != "" {
		hints = append(hints, "ctrl+e", "editor")
	}
	return append(hints, "ctrl+n", "avançar", "esc", "cancelar")
}
