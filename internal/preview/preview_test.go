package preview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/alertr/internal/recipients"
	"github.com/mark3labs/alertr/internal/wizard"
)

func lookupStore() *recipients.Store {
	s := recipients.NewStore()
	s.Initialize(recipients.Category{
		Key:   "school",
		Label: "Escola",
		Items: []recipients.Item{{ID: "s1", Name: "Escola Aurora"}},
	})
	s.Initialize(recipients.Category{
		Key:   "class",
		Label: "Turma",
		Items: []recipients.Item{{ID: "c1", Name: "1º A"}, {ID: "c2", Name: "1º B"}},
	})
	return s
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestBuild_Golden(t *testing.T) {
	tests := []struct {
		name    string
		payload wizard.Payload
	}{
		{
			name: "scheduled_with_image",
			payload: wizard.Payload{
				Title:           "Reunião de pais",
				Message:         "Quinta às 19h no auditório.",
				Date:            "2026-11-05",
				Time:            "19:00",
				SendCopyByEmail: true,
				Image:           &wizard.ImageHandle{Name: "convite.png", Path: "/tmp/convite.png"},
				RecipientCategories: map[string]recipients.Selection{
					"class":  {SelectedIDs: []string{"c1", "c2"}, AllSelected: true},
					"school": {SelectedIDs: []string{"s1"}},
				},
			},
		},
		{
			name: "today_without_recipients",
			payload: wizard.Payload{
				Title:     "Aviso",
				Message:   "Sem aula amanhã.",
				SendToday: true,
				RecipientCategories: map[string]recipients.Selection{
					"class": {SelectedIDs: []string{}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := Build(tt.payload, Config{Lookup: lookupStore(), Order: []string{"school", "class"}})
			require.NoError(t, err)
			newGoldie(t).Assert(t, tt.name, []byte(md))
		})
	}
}

func TestFormatRecipients(t *testing.T) {
	p := wizard.Payload{RecipientCategories: map[string]recipients.Selection{
		"zeta":  {SelectedIDs: []string{"z1"}},
		"class": {SelectedIDs: []string{"c1", "ghost"}},
		"alpha": {SelectedIDs: []string{"a1"}},
	}}

	t.Run("names resolved and unknown keys sorted last", func(t *testing.T) {
		got := formatRecipients(p, Config{Lookup: lookupStore(), Order: []string{"class"}})
		assert.Equal(t, "- **Turma**: 1º A, ghost\n- **alpha**: a1\n- **zeta**: z1", got)
	})

	t.Run("without lookup", func(t *testing.T) {
		got := formatRecipients(p, Config{})
		assert.Equal(t, "- **alpha**: a1\n- **class**: c1, ghost\n- **zeta**: z1", got)
	})
}

func TestRender(t *testing.T) {
	got := Render("{{title}}|{{message}}|{{schedule}}|{{recipients}}|{{image}}|{{copy}}|{{unknown}}", Variables{
		Title: "t", Message: "m", Schedule: "s", Recipients: "r", Image: "i", Copy: "c",
	})
	assert.Equal(t, "t|m|s|r|i|c|{{unknown}}", got)
}

func TestGetTemplate(t *testing.T) {
	tmpl, err := GetTemplate("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplate, tmpl)

	path := filepath.Join(t.TempDir(), "preview.md")
	require.NoError(t, os.WriteFile(path, []byte("ALERTA: {{title}}"), 0o644))

	md, err := Build(wizard.Payload{Title: "x"}, Config{TemplatePath: path})
	require.NoError(t, err)
	assert.Equal(t, "ALERTA: x", md)

	_, err = Build(wizard.Payload{}, Config{TemplatePath: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorContains(t, err, "failed to read preview template")
}

func TestVariablesFor_NoSchedule(t *testing.T) {
	vars := VariablesFor(wizard.Payload{}, Config{})
	assert.Equal(t, noSchedule, vars.Schedule)
	assert.Equal(t, noRecipients, vars.Recipients)
	assert.Empty(t, vars.Copy)
	assert.Empty(t, vars.Image)
}

func TestRenderTerminal(t *testing.T) {
	out := RenderTerminal("# Reunião de pais\n\nQuinta", 60, "notty")
	assert.Contains(t, out, "Reunião de pais")
	assert.Contains(t, out, "Quinta")
}
