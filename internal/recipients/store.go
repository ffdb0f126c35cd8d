package recipients

import "slices"

// ChangeKind identifies which store operation produced a Change.
type ChangeKind int

const (
	ChangeInitialized ChangeKind = iota
	ChangeItems
	ChangeSelection
	ChangeReset
)

// String returns the string representation of a change kind
func (k ChangeKind) String() string {
	switch k {
	case ChangeInitialized:
		return "initialized"
	case ChangeItems:
		return "items"
	case ChangeSelection:
		return "selection"
	case ChangeReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Change describes one store mutation. Key is empty for ChangeReset.
type Change struct {
	Key  string
	Kind ChangeKind
}

// Observer is notified synchronously after every store mutation.
type Observer func(Change)

// Store holds every recipient category of one wizard session, keyed by category key.
// It knows nothing about dependencies; see Resolver for that.
type Store struct {
	categories map[string]*Category
	order      []string

	observers map[int]Observer
	nextObs   int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		categories: make(map[string]*Category),
		observers:  make(map[int]Observer),
	}
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) func() {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		delete(s.observers, id)
	}
}

func (s *Store) notify(c Change) {
	// Registration order is not tracked by the map; sort ids for determinism.
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := s.observers[id]; ok {
			fn(c)
		}
	}
}

// Initialize inserts a category if its key is not present yet. Calling it for an
// existing key is a no-op; use ReplaceItems to refresh items.
func (s *Store) Initialize(c Category) {
	if _, ok := s.categories[c.Key]; ok {
		return
	}
	cat := c.clone()
	cat.Selected = dedupe(cat.Selected)
	s.insert(&cat)
	s.notify(Change{Key: c.Key, Kind: ChangeInitialized})
}

func (s *Store) insert(c *Category) {
	s.categories[c.Key] = c
	s.order = append(s.order, c.Key)
}

// getOrCreate is the create-on-demand policy: an unknown key yields a default
// category labeled with its key, with no items and no selection.
func (s *Store) getOrCreate(key string) *Category {
	if c, ok := s.categories[key]; ok {
		return c
	}
	c := &Category{
		Key:      key,
		Label:    key,
		Items:    []Item{},
		Selected: []string{},
	}
	s.insert(c)
	return c
}

// GetOrCreate returns a snapshot of the category, creating the default one first
// when the key is unknown.
func (s *Store) GetOrCreate(key string) Category {
	_, existed := s.categories[key]
	c := s.getOrCreate(key)
	if !existed {
		s.notify(Change{Key: key, Kind: ChangeInitialized})
	}
	return c.clone()
}

// Category returns a deep copy of the category.
func (s *Store) Category(key string) (Category, bool) {
	c, ok := s.categories[key]
	if !ok {
		return Category{}, false
	}
	return c.clone(), true
}

// Has reports whether the key has been created.
func (s *Store) Has(key string) bool {
	_, ok := s.categories[key]
	return ok
}

// Keys returns category keys in creation order.
func (s *Store) Keys() []string {
	return slices.Clone(s.order)
}

// Len returns the number of categories.
func (s *Store) Len() int {
	return len(s.order)
}

// ReplaceItems swaps the item set of a category, keeping every other field.
func (s *Store) ReplaceItems(key string, items []Item) {
	c := s.getOrCreate(key)
	c.Items = cloneItems(items)
	s.notify(Change{Key: key, Kind: ChangeItems})
}

// ReplaceSelection overwrites the selection verbatim. Keeping AllSelected
// consistent with the filtered view is the caller's job (see Aggregator).
func (s *Store) ReplaceSelection(key string, ids []string, allSelected bool) {
	c := s.getOrCreate(key)
	c.Selected = dedupe(ids)
	c.AllSelected = allSelected
	s.notify(Change{Key: key, Kind: ChangeSelection})
}

// ClearSelection empties the selection and resets AllSelected.
func (s *Store) ClearSelection(key string) {
	s.ReplaceSelection(key, nil, false)
}

// Selected returns the selected ids of a category. Unknown keys read as empty
// without being created.
func (s *Store) Selected(key string) []string {
	c, ok := s.categories[key]
	if !ok {
		return []string{}
	}
	return slices.Clone(c.Selected)
}

// IsSelected reports whether id is selected in the category.
func (s *Store) IsSelected(key, id string) bool {
	c, ok := s.categories[key]
	if !ok {
		return false
	}
	return slices.Contains(c.Selected, id)
}

// AllSelected returns the stored aggregate flag.
func (s *Store) AllSelected(key string) bool {
	c, ok := s.categories[key]
	return ok && c.AllSelected
}

// Selections returns the selection of every category, keyed by category key.
func (s *Store) Selections() map[string]Selection {
	out := make(map[string]Selection, len(s.categories))
	for key, c := range s.categories {
		ids := slices.Clone(c.Selected)
		if ids == nil {
			ids = []string{}
		}
		out[key] = Selection{SelectedIDs: ids, AllSelected: c.AllSelected}
	}
	return out
}

// Reset drops every category. This is the only way categories are destroyed.
func (s *Store) Reset() {
	s.categories = make(map[string]*Category)
	s.order = nil
	s.notify(Change{Kind: ChangeReset})
}

// lookup returns the live category or a zero default without creating it.
func (s *Store) lookup(key string) *Category {
	if c, ok := s.categories[key]; ok {
		return c
	}
	return &Category{Key: key, Label: key}
}
