package recipients

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classLoader returns one class per selected school and records its calls.
type classLoader struct {
	calls [][]string
	err   error
}

func (l *classLoader) Load(_ context.Context, parentIDs []string) ([]Item, error) {
	l.calls = append(l.calls, parentIDs)
	if l.err != nil {
		return nil, l.err
	}
	items := make([]Item, 0, len(parentIDs))
	for _, p := range parentIDs {
		items = append(items, link("class-of-"+p, p))
	}
	return items, nil
}

func cascadeFixture() (*Store, *Cascade, *classLoader) {
	s := NewStore()
	s.Initialize(Category{Key: "school", Items: []Item{{ID: "s1"}, {ID: "s2"}}})
	s.Initialize(Category{Key: "class", DependsOn: []string{"school"}})
	l := &classLoader{}
	c := NewCascade(NewResolver(s))
	c.Register("class", l)
	return s, c, l
}

func TestCascade_Load(t *testing.T) {
	s, c, l := cascadeFixture()
	ctx := context.Background()

	s.ReplaceSelection("school", []string{"s1"}, false)
	require.NoError(t, c.Load(ctx, "class"))

	assert.Equal(t, [][]string{{"s1"}}, l.calls)
	cat, _ := s.Category("class")
	assert.Equal(t, []string{"class-of-s1"}, ids(cat.Items))
	assert.Equal(t, []string{"school"}, cat.DependsOn, "dependency survives item refresh")
}

func TestCascade_StaleResponseDiscarded(t *testing.T) {
	s, c, _ := cascadeFixture()

	s.ReplaceSelection("school", []string{"s1"}, false)
	older := c.Request("class")
	s.ReplaceSelection("school", []string{"s2"}, false)
	newer := c.Request("class")

	require.NoError(t, c.Apply(newer, []Item{link("c2", "s2")}))

	err := c.Apply(older, []Item{link("c1", "s1")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStaleLoad))

	cat, _ := s.Category("class")
	assert.Equal(t, []string{"c2"}, ids(cat.Items), "late response must not overwrite newer items")
}

func TestCascade_FetchErrors(t *testing.T) {
	s, c, l := cascadeFixture()
	s.ReplaceSelection("school", []string{"s1"}, false)

	l.err = errors.New("network down")
	err := c.Load(context.Background(), "class")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")

	_, err = c.Fetch(context.Background(), Ticket{Key: "school"})
	assert.Error(t, err, "no loader for school")
}

func TestCascade_AttachRequestsDependents(t *testing.T) {
	s, c, _ := cascadeFixture()

	var tickets []Ticket
	detach := c.Attach(func(tk Ticket) { tickets = append(tickets, tk) })

	s.ReplaceItems("school", []Item{{ID: "s1"}})
	assert.Empty(t, tickets, "item changes do not trigger loads")

	s.ReplaceSelection("school", []string{"s1"}, false)
	require.Len(t, tickets, 1)
	assert.Equal(t, Ticket{Key: "class", Generation: 1, ParentIDs: []string{"s1"}}, tickets[0])

	s.ReplaceSelection("class", []string{"x"}, false)
	assert.Len(t, tickets, 1, "class has no dependents")

	detach()
	s.ClearSelection("school")
	assert.Len(t, tickets, 1)
}

func TestCascade_PruneHidden(t *testing.T) {
	s := NewStore()
	s.Initialize(Category{Key: "school", Items: []Item{{ID: "s1"}, {ID: "s2"}}})
	s.Initialize(Category{Key: "class", DependsOn: []string{"school"}})
	c := NewCascade(NewResolver(s), WithPruneHidden(true))
	c.Register("class", &classLoader{})
	ctx := context.Background()

	s.ReplaceSelection("school", []string{"s1", "s2"}, true)
	require.NoError(t, c.Load(ctx, "class"))
	s.ReplaceSelection("class", []string{"class-of-s1", "class-of-s2"}, true)

	s.ReplaceSelection("school", []string{"s2"}, false)
	require.NoError(t, c.Load(ctx, "class"))

	assert.Equal(t, []string{"class-of-s2"}, s.Selected("class"))
	assert.True(t, s.AllSelected("class"))
}

func TestCascade_Dependents(t *testing.T) {
	s, c, _ := cascadeFixture()
	s.Initialize(Category{Key: "grade", DependsOn: []string{"school"}})

	assert.Equal(t, []string{"class"}, c.Dependents("school"), "only categories with loaders")
	assert.Empty(t, c.Dependents("class"))
}

func TestLoaderFunc(t *testing.T) {
	var got []string
	var l Loader = LoaderFunc(func(_ context.Context, parentIDs []string) ([]Item, error) {
		got = parentIDs
		return nil, nil
	})
	_, err := l.Load(context.Background(), []string{"p"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p"}, got)
}

func TestCascade_ApplyReconcilesAllSelected(t *testing.T) {
	for _, prune := range []bool{false, true} {
		t.Run(fmt.Sprintf("prune=%v", prune), func(t *testing.T) {
			s := NewStore()
			s.Initialize(Category{Key: "school", Items: []Item{{ID: "s1"}, {ID: "s2"}}})
			s.Initialize(Category{Key: "class", DependsOn: []string{"school"}})
			r := NewResolver(s)
			c := NewCascade(r, WithPruneHidden(prune))
			c.Register("class", &classLoader{})
			agg := NewAggregator(r)
			ctx := context.Background()

			s.ReplaceSelection("school", []string{"s1"}, false)
			require.NoError(t, c.Load(ctx, "class"))
			require.True(t, agg.ToggleAll("class"))

			s.ReplaceSelection("school", []string{"s1", "s2"}, true)
			require.NoError(t, c.Load(ctx, "class"))

			assert.Equal(t, []string{"class-of-s1"}, s.Selected("class"))
			assert.False(t, s.AllSelected("class"), "class-of-s2 is visible but not selected")
		})
	}
}
