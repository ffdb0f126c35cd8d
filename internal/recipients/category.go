// Package recipients holds the recipient category engine used by the alert wizard:
// a store of categories (items plus selection), a resolver that filters and groups
// a category's items by its parent's selection, and an aggregator that toggles
// selections while keeping the "all selected" flag consistent with the filtered view.
//
// All types in this package are meant to be driven from a single goroutine.
package recipients

import "slices"

// DefaultParentField is the item attribute that links a child item to its parent
// when a category does not name one explicitly.
const DefaultParentField = "parentId"

// Item is a single selectable recipient (a school, a class, a student...).
// Attrs is an open bag of extra attributes; the parent-link attribute lives here.
type Item struct {
	ID    string            `json:"id" yaml:"id"`
	Name  string            `json:"name" yaml:"name"`
	Attrs map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Attr returns the named attribute.
func (i Item) Attr(name string) (string, bool) {
	if i.Attrs == nil {
		return "", false
	}
	v, ok := i.Attrs[name]
	return v, ok
}

func (i Item) clone() Item {
	out := Item{ID: i.ID, Name: i.Name}
	if i.Attrs != nil {
		out.Attrs = make(map[string]string, len(i.Attrs))
		for k, v := range i.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.clone()
	}
	return out
}

// Category is a named, independently tracked set of selectable recipients.
//
// Selected has set semantics: order is kept for stable output but carries no
// meaning, and duplicates are dropped on write.
type Category struct {
	Key         string   `json:"key" yaml:"key"`
	Label       string   `json:"label" yaml:"label"`
	Items       []Item   `json:"items" yaml:"items"`
	Selected    []string `json:"selected" yaml:"selected"`
	AllSelected bool     `json:"allSelected" yaml:"all_selected"`
	DependsOn   []string `json:"dependsOn,omitempty" yaml:"depends_on,omitempty"`
	ParentField string   `json:"parentField,omitempty" yaml:"parent_field,omitempty"`
}

// Parent returns the only dependency consulted for enablement and filtering:
// the first entry of DependsOn. Further entries are kept but not evaluated.
func (c Category) Parent() (string, bool) {
	if len(c.DependsOn) == 0 {
		return "", false
	}
	return c.DependsOn[0], true
}

// LinkField returns the attribute name holding the parent id on this category's items.
func (c Category) LinkField() string {
	if c.ParentField == "" {
		return DefaultParentField
	}
	return c.ParentField
}

// Item looks up an item by id.
func (c Category) Item(id string) (Item, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

func (c Category) clone() Category {
	out := c
	out.Items = cloneItems(c.Items)
	out.Selected = slices.Clone(c.Selected)
	if out.Selected == nil {
		out.Selected = []string{}
	}
	out.DependsOn = slices.Clone(c.DependsOn)
	return out
}

// Selection is the submission-facing view of a category: just what was picked.
type Selection struct {
	SelectedIDs []string `json:"selectedIds"`
	AllSelected bool     `json:"allSelected"`
}

// dedupe returns ids without duplicates, keeping first occurrences.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// sameSet reports whether a and b contain the same ids, ignoring order.
func sameSet(a, b []string) bool {
	sa := make(map[string]struct{}, len(a))
	for _, id := range a {
		sa[id] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, id := range b {
		sb[id] = struct{}{}
	}
	if len(sa) != len(sb) {
		return false
	}
	for id := range sa {
		if _, ok := sb[id]; !ok {
			return false
		}
	}
	return true
}
