package alertwizard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/mark3labs/alertr/internal/recipients"
	"github.com/mark3labs/alertr/internal/tui/theme"
)

// RecipientsStep shows one tab per category with a checklist of the items the
// parent selection lets through.
type RecipientsStep struct {
	resolver *recipients.Resolver
	agg      *recipients.Aggregator
	order    []string
	loading  func(key string) bool

	tab     int
	cursor  int
	focused bool
	width   int
	height  int
}

// NewRecipientsStep creates the step over the ordered categories. loading reports
// whether a category has a load in flight.
func NewRecipientsStep(r *recipients.Resolver, order []string, loading func(string) bool) *RecipientsStep {
	if loading == nil {
		loading = func(string) bool { return false }
	}
	return &RecipientsStep{
		resolver: r,
		agg:      recipients.NewAggregator(r),
		order:    order,
		loading:  loading,
		width:    60,
		height:   12,
	}
}

// SetSize updates the available area.
func (s *RecipientsStep) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Focus focuses the checklist.
func (s *RecipientsStep) Focus() tea.Cmd {
	s.focused = true
	return nil
}

// FocusLast is the same as Focus, the checklist is the only field.
func (s *RecipientsStep) FocusLast() tea.Cmd {
	return s.Focus()
}

// Blur removes focus.
func (s *RecipientsStep) Blur() {
	s.focused = false
}

// FocusNext leaves the checklist.
func (s *RecipientsStep) FocusNext() (bool, tea.Cmd) {
	s.Blur()
	return false, nil
}

// FocusPrev leaves the checklist.
func (s *RecipientsStep) FocusPrev() (bool, tea.Cmd) {
	s.Blur()
	return false, nil
}

// CapturesEnter is always false; space toggles.
func (s *RecipientsStep) CapturesEnter() bool {
	return false
}

// ActiveKey returns the key of the selected tab.
func (s *RecipientsStep) ActiveKey() string {
	if len(s.order) == 0 {
		return ""
	}
	return s.order[s.tab]
}

// Cursor returns the cursor position in the active tab.
func (s *RecipientsStep) Cursor() int {
	return s.cursor
}

// visible returns the items of the active tab in display order.
func (s *RecipientsStep) visible() []recipients.Item {
	var out []recipients.Item
	for _, g := range s.resolver.GroupedView(s.ActiveKey()) {
		out = append(out, g.Items...)
	}
	return out
}

func (s *RecipientsStep) clampCursor() {
	n := len(s.visible())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// Update handles tab switching, cursor movement and toggling.
func (s *RecipientsStep) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || !s.focused || len(s.order) == 0 {
		return nil
	}

	switch key.String() {
	case "left", "h":
		if s.tab > 0 {
			s.tab--
			s.cursor = 0
		}
	case "right", "l":
		if s.tab < len(s.order)-1 {
			s.tab++
			s.cursor = 0
		}
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.visible())-1 {
			s.cursor++
		}
	case "space", " ":
		items := s.visible()
		if s.cursor < len(items) && s.editable() {
			s.agg.ToggleItem(s.ActiveKey(), items[s.cursor].ID)
		}
	case "a":
		if s.editable() {
			s.agg.ToggleAll(s.ActiveKey())
		}
	}
	s.clampCursor()
	return nil
}

// editable reports whether the active category accepts toggles: it must be
// enabled and its items must not be mid-reload.
func (s *RecipientsStep) editable() bool {
	key := s.ActiveKey()
	return s.resolver.IsEnabled(key) && !s.loading(key)
}

// View renders the tabs and the checklist of the active category.
func (s *RecipientsStep) View() string {
	st := theme.Current().S()
	if len(s.order) == 0 {
		return st.Muted.Render("Nenhuma categoria configurada")
	}
	store := s.resolver.Store()

	tabs := make([]string, 0, len(s.order))
	for i, key := range s.order {
		cat, _ := store.Category(key)
		label := fmt.Sprintf("%s (%d)", cat.Label, len(cat.Selected))
		switch {
		case i == s.tab:
			tabs = append(tabs, st.TabActive.Render(label))
		case !s.resolver.IsEnabled(key):
			tabs = append(tabs, st.TabDisabled.Render(label))
		default:
			tabs = append(tabs, st.TabInactive.Render(label))
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	key := s.ActiveKey()
	cat, _ := store.Category(key)
	switch {
	case !s.resolver.IsEnabled(key):
		parentKey, _ := cat.Parent()
		parentLabel := parentKey
		if p, ok := store.Category(parentKey); ok && p.Label != "" {
			parentLabel = p.Label
		}
		b.WriteString(st.Disabled.Render("Selecione primeiro: " + parentLabel))
	case s.loading(key):
		b.WriteString(st.Muted.Render("Carregando..."))
	default:
		b.WriteString(s.renderList(key))
	}
	return b.String()
}

func (s *RecipientsStep) renderList(key string) string {
	st := theme.Current().S()
	groups := s.resolver.GroupedView(key)
	total := 0
	for _, g := range groups {
		total += len(g.Items)
	}
	if total == 0 {
		return st.Muted.Render("Nenhum item disponível")
	}

	store := s.resolver.Store()
	check := "[ ]"
	if store.AllSelected(key) {
		check = "[x]"
	}

	var lines []string
	lines = append(lines, st.Muted.Render(fmt.Sprintf("%s Todos (%d/%d)", check, len(store.Selected(key)), total)))

	idx := 0
	for _, g := range groups {
		if g.Label != "" {
			lines = append(lines, st.GroupHeader.Render(g.Label))
		}
		for _, it := range g.Items {
			box := "[ ]"
			if store.IsSelected(key, it.ID) {
				box = st.Checked.Render("[x]")
			}
			line := box + " " + it.Name
			if idx == s.cursor && s.focused {
				line = st.Cursor.Render("› ") + line
			} else {
				line = "  " + line
			}
			lines = append(lines, line)
			idx++
		}
	}
	return strings.Join(lines, "\n")
}

// Hints returns the key hints for this step.
func (s *RecipientsStep) Hints() []string {
	return []string{
		"←→", "categoria",
		"↑↓", "navegar",
		"espaço", "marcar",
		"a", "todos",
		"esc", "voltar",
	}
}
