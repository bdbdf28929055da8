package domain

import (
	"fmt"
	"slices"
)

// Identifiable is an item with a stable identity and structural equality.
type Identifiable[T any] interface {
	Identity() string
	Equal(other T) bool
}

// TrackedCollection is an ordered list that remembers what was added, updated
// and removed relative to the snapshot it was built from. Repositories read the
// pending sets to apply a diff instead of rewriting every row.
type TrackedCollection[T Identifiable[T]] struct {
	items    []T
	baseline map[string]T
	order    []string

	added   map[string]struct{}
	updated map[string]struct{}
	removed map[string]struct{}
}

// NewTrackedCollection snapshots initial as the persisted baseline.
func NewTrackedCollection[T Identifiable[T]](initial []T) (*TrackedCollection[T], error) {
	c := &TrackedCollection[T]{
		items:    make([]T, 0, len(initial)),
		baseline: make(map[string]T, len(initial)),
		order:    make([]string, 0, len(initial)),
		added:    make(map[string]struct{}),
		updated:  make(map[string]struct{}),
		removed:  make(map[string]struct{}),
	}

	for _, item := range initial {
		id := item.Identity()
		if _, ok := c.baseline[id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, id)
		}
		c.baseline[id] = item
		c.order = append(c.order, id)
		c.items = append(c.items, item)
	}

	return c, nil
}

// Add appends a new item. Its identity must be unused, including by baseline
// items that were removed since identities are never recycled.
func (c *TrackedCollection[T]) Add(item T) error {
	id := item.Identity()

	if c.indexOf(id) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateItem, id)
	}
	if _, ok := c.baseline[id]; ok {
		return fmt.Errorf("%w: identity %s was already persisted", ErrDuplicateItem, id)
	}

	c.items = append(c.items, item)
	c.added[id] = struct{}{}

	return nil
}

// Update replaces the item sharing item's identity.
func (c *TrackedCollection[T]) Update(item T) error {
	id := item.Identity()

	idx := c.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	c.items[idx] = item

	if _, ok := c.added[id]; ok {
		return nil
	}

	if item.Equal(c.baseline[id]) {
		delete(c.updated, id)
	} else {
		c.updated[id] = struct{}{}
	}

	return nil
}

// Remove deletes the item with the given identity. Removing an item added in
// this lifetime cancels the addition.
func (c *TrackedCollection[T]) Remove(id string) error {
	idx := c.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	c.items = slices.Delete(c.items, idx, idx+1)

	if _, ok := c.added[id]; ok {
		delete(c.added, id)
		return nil
	}

	delete(c.updated, id)
	c.removed[id] = struct{}{}

	return nil
}

// Get returns the current item with the given identity.
func (c *TrackedCollection[T]) Get(id string) (T, bool) {
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], true
	}
	var zero T
	return zero, false
}

// Items returns the current ordered view.
func (c *TrackedCollection[T]) Items() []T {
	return slices.Clone(c.items)
}

// Len returns the number of current items.
func (c *TrackedCollection[T]) Len() int {
	return len(c.items)
}

// AddedItems returns items created since the snapshot, in insertion order.
func (c *TrackedCollection[T]) AddedItems() []T {
	return c.filterItems(c.added)
}

// UpdatedItems returns baseline items whose content changed.
func (c *TrackedCollection[T]) UpdatedItems() []T {
	return c.filterItems(c.updated)
}

// RemovedItems returns the baseline versions of removed items, in baseline order.
func (c *TrackedCollection[T]) RemovedItems() []T {
	out := make([]T, 0, len(c.removed))
	for _, id := range c.order {
		if _, ok := c.removed[id]; ok {
			out = append(out, c.baseline[id])
		}
	}
	return out
}

// RemovedIDs returns the identities of removed baseline items.
func (c *TrackedCollection[T]) RemovedIDs() []string {
	removed := c.RemovedItems()
	ids := make([]string, len(removed))
	for i, item := range removed {
		ids[i] = item.Identity()
	}
	return ids
}

// HasChanges reports whether anything is pending.
func (c *TrackedCollection[T]) HasChanges() bool {
	return len(c.added) > 0 || len(c.updated) > 0 || len(c.removed) > 0
}

func (c *TrackedCollection[T]) filterItems(set map[string]struct{}) []T {
	out := make([]T, 0, len(set))
	for _, item := range c.items {
		if _, ok := set[item.Identity()]; ok {
			out = append(out, item)
		}
	}
	return out
}

func (c *TrackedCollection[T]) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(item T) bool {
		return item.Identity() == id
	})
}
