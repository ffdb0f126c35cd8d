package recipients

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/mark3labs/alertr/internal/logger"
)

// ErrStaleLoad is returned by Cascade.Apply when a newer load for the same
// category was requested after the ticket was issued.
var ErrStaleLoad = errors.New("stale load discarded")

// Loader fetches the items of one category given the parent's selected ids.
type Loader interface {
	Load(ctx context.Context, parentIDs []string) ([]Item, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, parentIDs []string) ([]Item, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, parentIDs []string) ([]Item, error) {
	return f(ctx, parentIDs)
}

// Ticket identifies one load request. Only the latest ticket per category is
// accepted by Apply.
type Ticket struct {
	Key        string
	Generation uint64
	ParentIDs  []string
}

// Cascade reloads dependent categories when a parent selection changes. Each
// request is tagged with a per-category generation so that a slow response can
// not overwrite the items of a newer selection.
type Cascade struct {
	resolver    *Resolver
	agg         *Aggregator
	loaders     map[string]Loader
	generations map[string]uint64
	pruneHidden bool
	log         *logger.Component
}

// CascadeOption configures a Cascade.
type CascadeOption func(*Cascade)

// WithPruneHidden makes the cascade drop selections that the refreshed filter hides.
func WithPruneHidden(enabled bool) CascadeOption {
	return func(c *Cascade) {
		c.pruneHidden = enabled
	}
}

// NewCascade creates a cascade over the resolver's store.
func NewCascade(r *Resolver, opts ...CascadeOption) *Cascade {
	c := &Cascade{
		resolver:    r,
		agg:         NewAggregator(r),
		loaders:     make(map[string]Loader),
		generations: make(map[string]uint64),
		log:         logger.Named("cascade"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register attaches a loader to a category.
func (c *Cascade) Register(key string, l Loader) {
	c.loaders[key] = l
}

// HasLoader reports whether the category has a loader.
func (c *Cascade) HasLoader(key string) bool {
	_, ok := c.loaders[key]
	return ok
}

// Dependents returns the categories with a loader whose first dependency is parentKey.
func (c *Cascade) Dependents(parentKey string) []string {
	var out []string
	store := c.resolver.store
	for _, key := range store.Keys() {
		if !c.HasLoader(key) {
			continue
		}
		if p, ok := store.lookup(key).Parent(); ok && p == parentKey {
			out = append(out, key)
		}
	}
	return out
}

// Request issues a new ticket for the category, invalidating older ones.
func (c *Cascade) Request(key string) Ticket {
	c.generations[key]++
	var parentIDs []string
	if p, ok := c.resolver.store.lookup(key).Parent(); ok {
		parentIDs = c.resolver.store.Selected(p)
	}
	t := Ticket{Key: key, Generation: c.generations[key], ParentIDs: parentIDs}
	c.log.Debug("load requested: key=%s gen=%d parents=%v", key, t.Generation, parentIDs)
	return t
}

// Apply stores the items of a completed load unless the ticket is stale.
func (c *Cascade) Apply(t Ticket, items []Item) error {
	if latest := c.generations[t.Key]; t.Generation != latest {
		c.log.Debug("discarding stale load: key=%s gen=%d latest=%d", t.Key, t.Generation, latest)
		return fmt.Errorf("%w: %s generation %d (latest %d)", ErrStaleLoad, t.Key, t.Generation, latest)
	}

	c.resolver.store.ReplaceItems(t.Key, items)
	if c.pruneHidden {
		c.agg.PruneHidden(t.Key)
	} else {
		c.agg.Reconcile(t.Key)
	}
	return nil
}

// Fetch runs the category's loader for a ticket. It does not touch the store and
// is safe to call off the owning goroutine; hand the result to Apply.
func (c *Cascade) Fetch(ctx context.Context, t Ticket) ([]Item, error) {
	l, ok := c.loaders[t.Key]
	if !ok {
		return nil, fmt.Errorf("no loader registered for category %q", t.Key)
	}
	items, err := l.Load(ctx, slices.Clone(t.ParentIDs))
	if err != nil {
		c.log.Warn("load failed: key=%s: %v", t.Key, err)
		return nil, fmt.Errorf("loading %s: %w", t.Key, err)
	}
	return items, nil
}

// Load requests, fetches and applies in one synchronous call.
func (c *Cascade) Load(ctx context.Context, key string) error {
	t := c.Request(key)
	items, err := c.Fetch(ctx, t)
	if err != nil {
		return err
	}
	return c.Apply(t, items)
}

// Attach subscribes to the store and calls onRequest with a fresh ticket for every
// dependent category whenever a parent's selection changes. The returned function
// detaches the cascade.
func (c *Cascade) Attach(onRequest func(Ticket)) func() {
	return c.resolver.store.Subscribe(func(ch Change) {
		if ch.Kind != ChangeSelection {
			return
		}
		for _, key := range c.Dependents(ch.Key) {
			onRequest(c.Request(key))
		}
	})
}
