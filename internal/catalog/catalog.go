// Package catalog reads recipient category definitions from YAML and serves
// their items to the wizard, standing in for the platform's category endpoints.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/alertr/internal/recipients"
)

// Example is a four-level school catalog written by `alertr init`.
//
//go:embed example.yml
var Example []byte

// Catalog is a parsed catalog file.
type Catalog struct {
	Categories []CategoryDef `yaml:"categories"`
}

// CategoryDef declares one category and its full item set.
type CategoryDef struct {
	Key         string    `yaml:"key"`
	Label       string    `yaml:"label"`
	DependsOn   []string  `yaml:"depends_on,omitempty"`
	ParentField string    `yaml:"parent_field,omitempty"`
	Items       []ItemDef `yaml:"items"`
}

// ItemDef is one item. Keys other than id and name become attributes.
type ItemDef struct {
	ID    string            `yaml:"id"`
	Name  string            `yaml:"name"`
	Attrs map[string]string `yaml:",inline"`
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog. Categories without a key get one from their label.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i := range c.Categories {
		def := &c.Categories[i]
		if def.Key == "" {
			def.Key = slug.Make(def.Label)
		}
		if def.Key == "" {
			return nil, fmt.Errorf("category %d has neither key nor label", i+1)
		}
		if def.Label == "" {
			def.Label = def.Key
		}
	}
	return &c, nil
}

// Validate checks the dependency graph and item ids.
func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return errors.New("catalog declares no categories")
	}
	var errs []error
	if err := recipients.ValidateGraph(c.full()); err != nil {
		errs = append(errs, err)
	}
	for _, def := range c.Categories {
		seen := make(map[string]bool, len(def.Items))
		for _, it := range def.Items {
			if it.ID == "" {
				errs = append(errs, fmt.Errorf("category %q has an item without id", def.Key))
				continue
			}
			if seen[it.ID] {
				errs = append(errs, fmt.Errorf("category %q repeats item %q", def.Key, it.ID))
			}
			seen[it.ID] = true
		}
	}
	return errors.Join(errs...)
}

// Keys returns the category keys in declaration order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.Categories))
	for i, def := range c.Categories {
		keys[i] = def.Key
	}
	return keys
}

func (c *Catalog) def(key string) (CategoryDef, bool) {
	for _, def := range c.Categories {
		if def.Key == key {
			return def, true
		}
	}
	return CategoryDef{}, false
}

func (d CategoryDef) items() []recipients.Item {
	out := make([]recipients.Item, len(d.Items))
	for i, it := range d.Items {
		out[i] = recipients.Item{ID: it.ID, Name: it.Name, Attrs: it.Attrs}
		if out[i].Name == "" {
			out[i].Name = it.ID
		}
	}
	return out
}

func (d CategoryDef) category(withItems bool) recipients.Category {
	cat := recipients.Category{
		Key:         d.Key,
		Label:       d.Label,
		DependsOn:   slices.Clone(d.DependsOn),
		ParentField: d.ParentField,
	}
	if withItems {
		cat.Items = d.items()
	}
	return cat
}

func (c *Catalog) full() []recipients.Category {
	out := make([]recipients.Category, len(c.Categories))
	for i, def := range c.Categories {
		out[i] = def.category(true)
	}
	return out
}

// Store returns a store holding every category with its full item set. It
// resolves ids to names outside the wizard, e.g. for stored alerts.
func (c *Catalog) Store() *recipients.Store {
	s := recipients.NewStore()
	for _, cat := range c.full() {
		s.Initialize(cat)
	}
	return s
}

// Definitions returns the categories in declaration order, ready for
// wizard.NewFormData. Categories with a dependency start empty; their items
// arrive through Loader once a parent is selected.
func (c *Catalog) Definitions() []recipients.Category {
	out := make([]recipients.Category, len(c.Categories))
	for i, def := range c.Categories {
		out[i] = def.category(len(def.DependsOn) == 0)
	}
	return out
}

// Loader returns a loader yielding the items of key whose parent link is one of
// the requested parent ids.
func (c *Catalog) Loader(key string) (recipients.Loader, error) {
	def, ok := c.def(key)
	if !ok {
		return nil, fmt.Errorf("unknown category %q", key)
	}
	field := def.category(false).LinkField()
	all := def.items()

	return recipients.LoaderFunc(func(ctx context.Context, parentIDs []string) ([]recipients.Item, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var out []recipients.Item
		for _, it := range all {
			if p, ok := it.Attr(field); ok && slices.Contains(parentIDs, p) {
				out = append(out, it)
			}
		}
		return out, nil
	}), nil
}

// Register attaches a loader to the cascade for every dependent category.
func (c *Catalog) Register(cascade *recipients.Cascade) error {
	for _, def := range c.Categories {
		if len(def.DependsOn) == 0 {
			continue
		}
		l, err := c.Loader(def.Key)
		if err != nil {
			return err
		}
		cascade.Register(def.Key, l)
	}
	return nil
}
