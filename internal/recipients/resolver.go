package recipients

import "slices"

// NoGroupLabel labels a group whose parent item cannot be found.
const NoGroupLabel = "Sem grupo"

// GroupLabelInput is handed to a GroupLabelFunc for every group of a grouped view.
type GroupLabelInput struct {
	ParentItem     Item
	AllParentItems []Item
	CategoryKey    string
}

// GroupLabelFunc formats the header of a group. Returning "" falls back to the
// parent item's name.
type GroupLabelFunc func(GroupLabelInput) string

// GroupOrder controls the order of groups in a grouped view.
type GroupOrder int

const (
	// GroupOrderFirstSeen orders groups by the first filtered item that belongs to them.
	GroupOrderFirstSeen GroupOrder = iota
	// GroupOrderParent orders groups by the parent category's item order.
	GroupOrderParent
)

// Group is one cluster of a grouped view. Label and ParentID are empty for the
// single unlabeled group.
type Group struct {
	Label    string `json:"label,omitempty"`
	ParentID string `json:"parentId,omitempty"`
	Items    []Item `json:"items"`
}

// Resolver answers dependency questions about categories in a Store. Nothing is
// cached: every call reads the store as it is now.
type Resolver struct {
	store      *Store
	groupLabel GroupLabelFunc
	groupOrder GroupOrder
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithGroupLabel sets the group header formatter.
func WithGroupLabel(fn GroupLabelFunc) ResolverOption {
	return func(r *Resolver) {
		r.groupLabel = fn
	}
}

// WithGroupOrder sets how groups are ordered.
func WithGroupOrder(order GroupOrder) ResolverOption {
	return func(r *Resolver) {
		r.groupOrder = order
	}
}

// NewResolver creates a resolver over the given store.
func NewResolver(store *Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the store the resolver reads from.
func (r *Resolver) Store() *Store {
	return r.store
}

// IsEnabled reports whether a category can be interacted with: always for a
// root category, otherwise only once its parent has at least one selected id.
func (r *Resolver) IsEnabled(key string) bool {
	parent, ok := r.store.lookup(key).Parent()
	if !ok {
		return true
	}
	return len(r.store.lookup(parent).Selected) > 0
}

// FilteredItems returns the items of a category that are consistent with the
// parent's current selection. Root categories return all their items.
func (r *Resolver) FilteredItems(key string) []Item {
	cat := r.store.lookup(key)
	parent, ok := cat.Parent()
	if !ok {
		return cloneItems(cat.Items)
	}

	parentSel := r.store.lookup(parent).Selected
	if len(parentSel) == 0 {
		return []Item{}
	}

	allowed := make(map[string]struct{}, len(parentSel))
	for _, id := range parentSel {
		allowed[id] = struct{}{}
	}

	field := cat.LinkField()
	out := make([]Item, 0, len(cat.Items))
	for _, it := range cat.Items {
		link, ok := it.Attr(field)
		if !ok {
			continue
		}
		if _, ok := allowed[link]; ok {
			out = append(out, it.clone())
		}
	}
	return out
}

// FilteredIDs returns the ids of FilteredItems in order.
func (r *Resolver) FilteredIDs(key string) []string {
	items := r.FilteredItems(key)
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// IsAllSelected reports whether the selection equals the non-empty filtered id
// set. Unlike Category.AllSelected it is always computed from the current view.
func (r *Resolver) IsAllSelected(key string) bool {
	filtered := r.FilteredIDs(key)
	return len(filtered) > 0 && sameSet(r.store.lookup(key).Selected, filtered)
}

// Selections is Store.Selections with AllSelected derived from the current
// filtered view of every category.
func (r *Resolver) Selections() map[string]Selection {
	out := r.store.Selections()
	for key, sel := range out {
		sel.AllSelected = r.IsAllSelected(key)
		out[key] = sel
	}
	return out
}

// GroupedView partitions FilteredItems by parent when more than one parent value
// is selected. Otherwise it returns a single unlabeled group.
func (r *Resolver) GroupedView(key string) []Group {
	items := r.FilteredItems(key)
	cat := r.store.lookup(key)
	parentKey, ok := cat.Parent()
	if !ok {
		return []Group{{Items: items}}
	}

	parent := r.store.lookup(parentKey)
	if len(parent.Selected) <= 1 {
		return []Group{{Items: items}}
	}

	field := cat.LinkField()
	var order []string
	byParent := make(map[string][]Item)
	for _, it := range items {
		link, _ := it.Attr(field)
		if _, seen := byParent[link]; !seen {
			order = append(order, link)
		}
		byParent[link] = append(byParent[link], it)
	}

	if r.groupOrder == GroupOrderParent {
		order = r.parentOrder(parent, order)
	}

	groups := make([]Group, 0, len(order))
	for _, pid := range order {
		groups = append(groups, Group{
			Label:    r.label(key, parent, pid),
			ParentID: pid,
			Items:    byParent[pid],
		})
	}
	return groups
}

// parentOrder sorts parent ids by their position in the parent category; ids the
// parent does not know keep their relative order at the end.
func (r *Resolver) parentOrder(parent *Category, ids []string) []string {
	pos := make(map[string]int, len(parent.Items))
	for i, it := range parent.Items {
		pos[it.ID] = i
	}
	out := slices.Clone(ids)
	slices.SortStableFunc(out, func(a, b string) int {
		pa, okA := pos[a]
		pb, okB := pos[b]
		switch {
		case okA && okB:
			return pa - pb
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})
	return out
}

func (r *Resolver) label(key string, parent *Category, parentID string) string {
	item, ok := parent.Item(parentID)
	if !ok {
		return NoGroupLabel
	}
	if r.groupLabel != nil {
		if l := r.groupLabel(GroupLabelInput{
			ParentItem:     item.clone(),
			AllParentItems: cloneItems(parent.Items),
			CategoryKey:    key,
		}); l != "" {
			return l
		}
	}
	return item.Name
}
