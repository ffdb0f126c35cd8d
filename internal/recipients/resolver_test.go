package recipients

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func link(id, parent string) Item {
	return Item{ID: id, Name: "Item " + id, Attrs: map[string]string{DefaultParentField: parent}}
}

// schoolClassStore builds the two-level fixture: school [s1,s2], class depends on school.
func schoolClassStore() *Store {
	s := NewStore()
	s.Initialize(Category{
		Key:   "school",
		Label: "Escola",
		Items: []Item{{ID: "s1", Name: "Escola Um"}, {ID: "s2", Name: "Escola Dois"}},
	})
	s.Initialize(Category{
		Key:       "class",
		Label:     "Turma",
		DependsOn: []string{"school"},
		Items:     []Item{link("c1", "s1"), link("c2", "s2")},
	})
	return s
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestResolver_IsEnabled(t *testing.T) {
	s := schoolClassStore()
	r := NewResolver(s)

	assert.True(t, r.IsEnabled("school"), "root categories are always enabled")
	assert.True(t, r.IsEnabled("unknown"), "unknown keys behave as empty roots")
	assert.False(t, r.IsEnabled("class"))

	s.ReplaceSelection("school", []string{"s1"}, false)
	assert.True(t, r.IsEnabled("class"))

	s.ClearSelection("school")
	assert.False(t, r.IsEnabled("class"))
}

func TestResolver_IsEnabledTracksParentSelection(t *testing.T) {
	s := schoolClassStore()
	r := NewResolver(s)

	for _, sel := range [][]string{nil, {"s1"}, {"s1", "s2"}, {}, {"ghost"}} {
		s.ReplaceSelection("school", sel, false)
		assert.Equal(t, len(sel) > 0, r.IsEnabled("class"), "selection %v", sel)
	}
}

func TestResolver_OnlyFirstDependencyConsulted(t *testing.T) {
	s := schoolClassStore()
	s.Initialize(Category{Key: "grade", Items: []Item{{ID: "g1"}}})
	s.Initialize(Category{
		Key:       "student",
		DependsOn: []string{"class", "grade"},
		Items:     []Item{link("st1", "c1")},
	})
	r := NewResolver(s)

	s.ReplaceSelection("grade", []string{"g1"}, true)
	assert.False(t, r.IsEnabled("student"), "second dependency does not enable")

	s.ReplaceSelection("class", []string{"c1"}, false)
	s.ClearSelection("grade")
	assert.True(t, r.IsEnabled("student"), "second dependency does not disable")
	assert.Equal(t, []string{"st1"}, r.FilteredIDs("student"))
}

func TestResolver_FilteredItems(t *testing.T) {
	s := schoolClassStore()
	r := NewResolver(s)

	assert.Equal(t, []string{"s1", "s2"}, ids(r.FilteredItems("school")))
	assert.Empty(t, r.FilteredItems("class"), "nothing eligible before a parent is chosen")

	s.ReplaceSelection("school", []string{"s1"}, false)
	assert.Equal(t, []string{"c1"}, ids(r.FilteredItems("class")))

	s.ReplaceSelection("school", []string{"s2", "s1"}, true)
	assert.Equal(t, []string{"c1", "c2"}, ids(r.FilteredItems("class")), "item order is preserved")
}

func TestResolver_FilteredItemsCustomParentField(t *testing.T) {
	s := NewStore()
	s.Initialize(Category{Key: "school", Items: []Item{{ID: "s1"}}})
	s.Initialize(Category{
		Key:         "class",
		DependsOn:   []string{"school"},
		ParentField: "schoolId",
		Items: []Item{
			{ID: "c1", Attrs: map[string]string{"schoolId": "s1"}},
			{ID: "c2", Attrs: map[string]string{DefaultParentField: "s1"}},
			{ID: "c3"},
		},
	})
	s.ReplaceSelection("school", []string{"s1"}, true)

	assert.Equal(t, []string{"c1"}, NewResolver(s).FilteredIDs("class"))
}

func TestResolver_FilteredItemsRecomputedOnRead(t *testing.T) {
	s := schoolClassStore()
	r := NewResolver(s)
	s.ReplaceSelection("school", []string{"s1"}, false)
	require.Equal(t, []string{"c1"}, r.FilteredIDs("class"))

	s.ReplaceItems("class", []Item{link("c1", "s1"), link("c3", "s1")})
	assert.Equal(t, []string{"c1", "c3"}, r.FilteredIDs("class"))
}

func TestResolver_GroupedView(t *testing.T) {
	s := schoolClassStore()
	r := NewResolver(s)

	t.Run("root category is one unlabeled group", func(t *testing.T) {
		groups := r.GroupedView("school")
		require.Len(t, groups, 1)
		assert.Empty(t, groups[0].Label)
		assert.Equal(t, []string{"s1", "s2"}, ids(groups[0].Items))
	})

	t.Run("single parent is one unlabeled group", func(t *testing.T) {
		s.ReplaceSelection("school", []string{"s1"}, false)
		groups := r.GroupedView("class")
		require.Len(t, groups, 1)
		assert.Empty(t, groups[0].Label)
		assert.Equal(t, []string{"c1"}, ids(groups[0].Items))
	})

	t.Run("several parents give one group each", func(t *testing.T) {
		s.ReplaceSelection("school", []string{"s1", "s2"}, true)
		groups := r.GroupedView("class")
		require.Len(t, groups, 2)
		assert.Equal(t, Group{Label: "Escola Um", ParentID: "s1", Items: []Item{link("c1", "s1")}}, groups[0])
		assert.Equal(t, Group{Label: "Escola Dois", ParentID: "s2", Items: []Item{link("c2", "s2")}}, groups[1])
	})
}

func TestResolver_GroupOrder(t *testing.T) {
	s := schoolClassStore()
	s.ReplaceItems("class", []Item{link("c2", "s2"), link("c1", "s1"), link("c3", "s2")})
	s.ReplaceSelection("school", []string{"s1", "s2"}, true)

	firstSeen := NewResolver(s).GroupedView("class")
	require.Len(t, firstSeen, 2)
	assert.Equal(t, "s2", firstSeen[0].ParentID, "default order follows the filtered items")
	assert.Equal(t, []string{"c2", "c3"}, ids(firstSeen[0].Items))

	byParent := NewResolver(s, WithGroupOrder(GroupOrderParent)).GroupedView("class")
	require.Len(t, byParent, 2)
	assert.Equal(t, "s1", byParent[0].ParentID, "parent order follows the parent's items")
	assert.Equal(t, "s2", byParent[1].ParentID)
}

func TestResolver_GroupLabels(t *testing.T) {
	s := schoolClassStore()
	s.ReplaceItems("class", []Item{link("c1", "s1"), link("c2", "s2"), link("cx", "ghost")})
	s.ReplaceSelection("school", []string{"s1", "s2", "ghost"}, false)

	var inputs []GroupLabelInput
	r := NewResolver(s, WithGroupLabel(func(in GroupLabelInput) string {
		inputs = append(inputs, in)
		if in.ParentItem.ID == "s2" {
			return ""
		}
		return fmt.Sprintf("%s (%d)", in.ParentItem.Name, len(in.AllParentItems))
	}))

	groups := r.GroupedView("class")
	require.Len(t, groups, 3)
	assert.Equal(t, "Escola Um (2)", groups[0].Label)
	assert.Equal(t, "Escola Dois", groups[1].Label, "empty formatter result falls back to parent name")
	assert.Equal(t, NoGroupLabel, groups[2].Label, "unresolvable parent")

	require.Len(t, inputs, 2, "formatter is not called for unresolvable parents")
	assert.Equal(t, "class", inputs[0].CategoryKey)
}
