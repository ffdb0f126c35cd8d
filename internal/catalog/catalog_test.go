package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/alertr/internal/recipients"
)

func TestParseExample(t *testing.T) {
	c, err := Parse(Example)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, []string{"school", "grade", "class", "student"}, c.Keys())

	defs := c.Definitions()
	assert.Len(t, defs[0].Items, 2, "root categories carry their items")
	assert.Empty(t, defs[1].Items, "dependent categories start empty")
	assert.Equal(t, "schoolId", defs[1].ParentField)
}

func TestParse_KeysFromLabels(t *testing.T) {
	c, err := Parse([]byte("categories:\n  - label: Série Escolar\n  - key: only-key\n"))
	require.NoError(t, err)
	assert.Equal(t, "serie-escolar", c.Categories[0].Key)
	assert.Equal(t, "only-key", c.Categories[1].Label)

	_, err = Parse([]byte("categories:\n  - items: []\n"))
	assert.ErrorContains(t, err, "neither key nor label")

	_, err = Parse([]byte("categories: {"))
	assert.ErrorContains(t, err, "failed to parse catalog")
}

func TestParse_ItemAttributes(t *testing.T) {
	c, err := Parse([]byte(`
categories:
  - key: class
    items:
      - id: c1
        name: 1A
        parentId: s1
        room: "12"
`))
	require.NoError(t, err)
	it := c.Categories[0].Items[0]
	assert.Equal(t, "c1", it.ID)
	assert.Equal(t, map[string]string{"parentId": "s1", "room": "12"}, it.Attrs)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "categories: []", "no categories"},
		{"cycle", "categories:\n  - {key: a, depends_on: [b]}\n  - {key: b, depends_on: [a]}\n", "dependency cycle"},
		{"unknown parent", "categories:\n  - {key: a, depends_on: [ghost]}\n", "unknown ghost"},
		{"duplicate item", "categories:\n  - key: a\n    items: [{id: x}, {id: x}]\n", `repeats item "x"`},
		{"missing id", "categories:\n  - key: a\n    items: [{name: y}]\n", "without id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, Example, 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Categories, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorContains(t, err, "failed to read catalog")
}

func TestLoader(t *testing.T) {
	c, err := Parse(Example)
	require.NoError(t, err)

	l, err := c.Loader("grade")
	require.NoError(t, err)

	items, err := l.Load(context.Background(), []string{"s2"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "g3", items[0].ID)

	items, err = l.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = c.Loader("nope")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Load(ctx, []string{"s1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegisterDrivesCascade(t *testing.T) {
	c, err := Parse(Example)
	require.NoError(t, err)

	store := recipients.NewStore()
	for _, def := range c.Definitions() {
		store.Initialize(def)
	}
	r := recipients.NewResolver(store)
	cascade := recipients.NewCascade(r)
	require.NoError(t, c.Register(cascade))

	assert.False(t, cascade.HasLoader("school"))
	assert.True(t, cascade.HasLoader("student"))

	ctx := context.Background()
	store.ReplaceSelection("school", []string{"s1"}, false)
	require.NoError(t, cascade.Load(ctx, "grade"))
	assert.Equal(t, 2, len(r.FilteredItems("grade")))

	store.ReplaceSelection("grade", []string{"g1"}, false)
	require.NoError(t, cascade.Load(ctx, "class"))
	var names []string
	for _, it := range r.FilteredItems("class") {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"1º A", "1º B"}, names)
}

func TestStoreHoldsFullItemSets(t *testing.T) {
	c, err := Parse(Example)
	require.NoError(t, err)

	s := c.Store()
	assert.Equal(t, c.Keys(), s.Keys())
	student, ok := s.Category("student")
	require.True(t, ok)
	assert.Len(t, student.Items, 5)
	assert.Empty(t, s.Selected("student"))
}
