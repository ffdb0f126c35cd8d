package recipients

import "slices"

// Aggregator applies selection toggles and keeps AllSelected true exactly when
// the selection equals the non-empty filtered id set of the category.
type Aggregator struct {
	resolver *Resolver
}

// NewAggregator creates an aggregator over the resolver's store.
func NewAggregator(r *Resolver) *Aggregator {
	return &Aggregator{resolver: r}
}

// ToggleAll selects every filtered item, or clears the selection when it already
// equals the filtered set. Items hidden by the parent filter are never selected.
// Returns the new AllSelected value.
func (a *Aggregator) ToggleAll(key string) bool {
	store := a.resolver.store
	filtered := a.resolver.FilteredIDs(key)

	if sameSet(store.lookup(key).Selected, filtered) {
		store.ReplaceSelection(key, nil, false)
		return false
	}

	all := len(filtered) > 0
	store.ReplaceSelection(key, filtered, all)
	return all
}

// ToggleItem flips membership of id in the selection and recomputes AllSelected.
// Returns whether id is selected afterwards.
func (a *Aggregator) ToggleItem(key, id string) bool {
	store := a.resolver.store
	current := store.lookup(key).Selected

	var next []string
	selected := false
	if i := slices.Index(current, id); i >= 0 {
		next = slices.Delete(slices.Clone(current), i, i+1)
	} else {
		next = append(slices.Clone(current), id)
		selected = true
	}

	// Set equality, not size: hidden ids may still be selected.
	filtered := a.resolver.FilteredIDs(key)
	all := len(filtered) > 0 && sameSet(next, filtered)
	store.ReplaceSelection(key, next, all)
	return selected
}

// SetItems replaces the selection with ids and derives AllSelected from the
// filtered view. Used when a selection is restored from outside (drafts).
func (a *Aggregator) SetItems(key string, ids []string) {
	ids = dedupe(ids)
	filtered := a.resolver.FilteredIDs(key)
	all := len(filtered) > 0 && sameSet(ids, filtered)
	a.resolver.store.ReplaceSelection(key, ids, all)
}

// Reconcile recomputes AllSelected against the current filtered view, which
// moves whenever the parent selection or the item set changes. Returns true if
// the flag was rewritten.
func (a *Aggregator) Reconcile(key string) bool {
	store := a.resolver.store
	cat := store.lookup(key)
	all := a.resolver.IsAllSelected(key)
	if all == cat.AllSelected {
		return false
	}
	store.ReplaceSelection(key, cat.Selected, all)
	return true
}

// PruneHidden drops selected ids that are no longer in the filtered view, for
// instance after the parent selection shrank, and reconciles AllSelected.
// Returns true if anything changed.
func (a *Aggregator) PruneHidden(key string) bool {
	store := a.resolver.store
	current := store.lookup(key).Selected

	filtered := a.resolver.FilteredIDs(key)
	visible := make(map[string]struct{}, len(filtered))
	for _, id := range filtered {
		visible[id] = struct{}{}
	}

	kept := make([]string, 0, len(current))
	for _, id := range current {
		if _, ok := visible[id]; ok {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(current) {
		return a.Reconcile(key)
	}

	all := len(filtered) > 0 && sameSet(kept, filtered)
	store.ReplaceSelection(key, kept, all)
	return true
}
