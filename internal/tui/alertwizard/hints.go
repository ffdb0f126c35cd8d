package alertwizard

import (
	"strings"

	"github.com/mark3labs/alertr/internal/tui/theme"
)

// renderHintBar renders key-description pairs.
// Example: renderHintBar("↑↓", "navegar", "esc", "voltar")
// Returns: "↑↓ navegar • esc voltar"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}
	s := theme.Current().S()

	var b strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(" " + s.HintSeparator.Render("•") + " ")
		}
		b.WriteString(s.HintKey.Render(pairs[i]) + " " + s.HintDesc.Render(pairs[i+1]))
	}
	return b.String()
}
